package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookify/internal/tenant/middleware"
	"bookify/pkg/requestcontext"
)

type stubResolver struct {
	hosts map[string]string
}

func (s *stubResolver) ResolveHost(_ context.Context, host, forwardedHost string) (string, bool) {
	effective := host
	if forwardedHost != "" {
		effective = forwardedHost
	}
	id, ok := s.hosts[effective]
	return id, ok
}

func TestResolveTenant_BindsPerRequest(t *testing.T) {
	resolver := &stubResolver{hosts: map[string]string{
		"clinic1.minapp.se": "tenant-1",
		"clinic2.minapp.se": "tenant-2",
	}}

	var got []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := requestcontext.TenantID(r.Context())
		if !ok {
			id = "<none>"
		}
		got = append(got, id)
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.ResolveTenant(resolver)(next)

	// Interleave resolved and unresolved requests through the same handler:
	// the binding must reflect each request's own host, never a previous one.
	for _, host := range []string{
		"clinic1.minapp.se",
		"unknown.minapp.se",
		"clinic2.minapp.se",
		"unknown.minapp.se",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []string{"tenant-1", "<none>", "tenant-2", "<none>"}, got)
}

func TestResolveTenant_ForwardedHostWins(t *testing.T) {
	resolver := &stubResolver{hosts: map[string]string{
		"clinic2.minapp.se": "tenant-2",
	}}

	var bound string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bound, _ = requestcontext.TenantID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "edge-proxy.internal"
	req.Header.Set("X-Forwarded-Host", "clinic2.minapp.se")
	middleware.ResolveTenant(resolver)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "tenant-2", bound)
}

func TestResolveTenant_NoLeakAcrossPanic(t *testing.T) {
	resolver := &stubResolver{hosts: map[string]string{
		"clinic1.minapp.se": "tenant-1",
	}}

	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	})
	handler := middleware.ResolveTenant(resolver)(panicky)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "clinic1.minapp.se"
	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})

	// The next request with an unknown host sees no tenant: the binding
	// lived only in the previous request's context.
	var ok bool
	checker := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = requestcontext.TenantID(r.Context())
	})
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Host = "unknown.minapp.se"
	middleware.ResolveTenant(resolver)(checker).ServeHTTP(httptest.NewRecorder(), req2)
	assert.False(t, ok)
}
