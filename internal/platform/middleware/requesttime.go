package middleware

import (
	"net/http"
	"time"

	"bookify/pkg/requestcontext"
)

// RequestTime pins a single timestamp to the request context so every
// time-dependent check within one request (token expiry, window eviction)
// observes the same clock reading.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
