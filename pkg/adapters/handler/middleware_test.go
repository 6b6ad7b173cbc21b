package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linksnip/linksnip/pkg/logger"
	"github.com/linksnip/linksnip/pkg/metrics"
)

func newTestMiddleware() *Middleware {
	return NewMiddleware(logger.New("linksnip-test", "", "error"), metrics.New())
}

func TestCORS(t *testing.T) {
	mw := newTestMiddleware()
	handler := mw.CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/url", nil))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, downstream handler not reached", w.Code)
	}

	// Preflight is answered directly without reaching the handler.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/url", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
}

func TestStatusRecorder(t *testing.T) {
	mw := newTestMiddleware()

	// The metrics wrapper must pass the downstream status through untouched.
	handler := mw.Metrics(mw.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}
