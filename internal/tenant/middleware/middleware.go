package middleware

import (
	"context"
	"net/http"

	"bookify/pkg/requestcontext"
)

// HostResolver maps host headers to a tenant id. Unknown hosts resolve to
// ("", false) without error.
type HostResolver interface {
	ResolveHost(ctx context.Context, host, forwardedHost string) (string, bool)
}

// ResolveTenant binds the tenant resolved from the Host (or X-Forwarded-Host)
// header into the request context. Resolution is intentionally silent: routes
// that require tenancy surface their own error, routes like health checks run
// tenant-agnostic. The binding lives only in the request's context, so it is
// gone on every exit path (success, domain error, or panic) and can never
// bleed into the next request handled by the same worker.
func ResolveTenant(resolver HostResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if tenantID, ok := resolver.ResolveHost(ctx, r.Host, r.Header.Get("X-Forwarded-Host")); ok {
				ctx = requestcontext.WithTenantID(ctx, tenantID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
