// Package requestcontext provides HTTP-independent accessors for request-scoped values.
//
// Middleware sets these values, services and handlers read them. Keeping the package
// free of net/http lets services import only what they need. Because every value is
// bound to the request's own context.Context, nothing here can leak across requests
// on a reused worker: the values die with the request on every exit path.
//
// Usage in services (read values):
//
//	corrID := requestcontext.CorrelationID(ctx)
//	tenantID, ok := requestcontext.TenantID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCorrelationID(ctx, corrID)
//	ctx = requestcontext.WithTenantID(ctx, tenantID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	correlationIDKey struct{}
	tenantIDKey      struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	requestTimeKey   struct{}
)

// CorrelationID retrieves the per-request correlation id from the context.
// Returns the empty string if not set.
func CorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCorrelationID injects a correlation id into the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// TenantID retrieves the resolved tenant id from the context. The second
// return reports whether a tenant was bound for this request; handlers that
// require tenancy decide for themselves whether absence is an error.
func TenantID(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(tenantIDKey{}).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTenantID injects a tenant id into the context.
func WithTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantIDKey{}, id)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// Now retrieves the request-scoped time from the context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for batch operations that need a consistent timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
