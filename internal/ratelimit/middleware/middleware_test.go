package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"bookify/internal/platform/metrics"
	"bookify/internal/ratelimit"
	"bookify/internal/ratelimit/middleware"
)

func newHandler(limit int) http.Handler {
	m := middleware.New(
		ratelimit.NewLimiter(limit, time.Minute),
		[]string{"/api/v1/auth/login"},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(prometheus.NewRegistry()),
	)
	return m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = ip + ":54321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GuardedPathLimit(t *testing.T) {
	handler := newHandler(20)

	for i := 0; i < 20; i++ {
		rec := doRequest(handler, "/api/v1/auth/login", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d must pass", i+1)
	}

	rec := doRequest(handler, "/api/v1/auth/login", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"),
		"denials must carry Retry-After")
	assert.Contains(t, rec.Body.String(), "too_many_requests",
		"denial body must be a problem document")
}

func TestHandler_UnguardedPathBypasses(t *testing.T) {
	handler := newHandler(1)

	doRequest(handler, "/api/v1/auth/login", "10.0.0.1")
	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "/api/v1/admin/bookings", "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "unguarded paths are never limited")
	}
}

func TestHandler_PerClientIsolation(t *testing.T) {
	handler := newHandler(1)

	doRequest(handler, "/api/v1/auth/login", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests,
		doRequest(handler, "/api/v1/auth/login", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK,
		doRequest(handler, "/api/v1/auth/login", "10.0.0.2").Code)
}

func TestHandler_ForwardedForIdentifiesClient(t *testing.T) {
	handler := newHandler(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "172.16.0.9:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 172.16.0.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The same forwarded client through a different proxy hop is still the
	// same bucket.
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req2.RemoteAddr = "172.16.0.10:9999"
	req2.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}
