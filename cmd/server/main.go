package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linksnip/linksnip/pkg/adapters/handler"
	"github.com/linksnip/linksnip/pkg/adapters/repository/mongo"
	"github.com/linksnip/linksnip/pkg/config"
	"github.com/linksnip/linksnip/pkg/core/services"
	"github.com/linksnip/linksnip/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New("linksnip", cfg.LogFile, cfg.LogLevel)

	ctx := context.Background()
	repo, err := mongo.NewRepository(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close(ctx)

	identity := services.NewIdentityService(repo, []byte(cfg.JWTSecret))
	links := services.NewLinkService(repo)

	mux := handler.NewRouter(cfg, identity, links, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("ServerStarting", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
