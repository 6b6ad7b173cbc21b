package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/linksnip/linksnip/pkg/logger"
	"github.com/linksnip/linksnip/pkg/metrics"
)

type Middleware struct {
	log              *logger.Logger
	metrics          *metrics.Metrics
	requestPerSecond *prometheus.CounterVec
	twoXXStatusCode  *prometheus.GaugeVec
	fourXXStatusCode *prometheus.GaugeVec
	fiveXXStatusCode *prometheus.GaugeVec
}

func NewMiddleware(log *logger.Logger, m *metrics.Metrics) *Middleware {
	return &Middleware{
		log:              log,
		metrics:          m,
		requestPerSecond: m.RegisterCounter("request_per_second", "Request per second", []string{"method", "path"}),
		twoXXStatusCode:  m.RegisterGauge("status_code_2xx", "2xx status code", []string{"method", "path", "code"}),
		fourXXStatusCode: m.RegisterGauge("status_code_4xx", "4xx status code", []string{"method", "path", "code"}),
		fiveXXStatusCode: m.RegisterGauge("status_code_5xx", "5xx status code", []string{"method", "path", "code"}),
	}
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with a short id and logs method, path,
// status and duration.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := shortuuid.New()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		m.log.Info("Request",
			zap.String("id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("code", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Metrics counts requests and buckets response status codes by class.
func (m *Middleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.metrics.IncCounter(m.requestPerSecond, r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		code := strconv.Itoa(rec.status)
		switch {
		case rec.status >= 200 && rec.status < 300:
			m.metrics.IncGauge(m.twoXXStatusCode, r.Method, r.URL.Path, code)
		case rec.status >= 400 && rec.status < 500:
			m.metrics.IncGauge(m.fourXXStatusCode, r.Method, r.URL.Path, code)
		case rec.status >= 500:
			m.metrics.IncGauge(m.fiveXXStatusCode, r.Method, r.URL.Path, code)
		}
	})
}

// CORS allows the browser frontend to call the API from another origin.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
