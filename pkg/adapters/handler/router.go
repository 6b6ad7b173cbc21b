package handler

import (
	"encoding/json"
	"net/http"

	"github.com/linksnip/linksnip/pkg/config"
	"github.com/linksnip/linksnip/pkg/logger"
	"github.com/linksnip/linksnip/pkg/metrics"
	"github.com/linksnip/linksnip/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, identity ports.IdentityService, links ports.LinkService, log *logger.Logger) http.Handler {
	h := NewHTTPHandler(identity, links, log)
	authHandler := NewAuthHandler(cfg, identity, log)

	m := metrics.New()
	mw := NewMiddleware(log, m)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{
			"message": "ok",
		}
		_ = json.NewEncoder(w).Encode(&res)
	})
	mux.Handle("GET /metrics", m.Handler())

	mux.HandleFunc("POST /auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)

	// Token checks happen inside the handlers: each one calls the identity
	// service's capability check and threads the typed result into the core
	// operation, so nothing is smuggled through the request context.
	mux.HandleFunc("POST /url", h.Create)
	mux.HandleFunc("GET /url/user", h.UserLinks)
	mux.HandleFunc("GET /url/{id}", h.GetOne)
	mux.HandleFunc("PATCH /url/{id}", h.Update)

	// Public redirect path; matches any single-segment short id.
	mux.HandleFunc("GET /{shortId}", h.Redirect)

	return mw.CORS(mw.Metrics(mw.RequestLogger(mux)))
}
