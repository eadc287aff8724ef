package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// Recovery converts panics into sanitized 500 problem responses. The panic
// value and stack go to server logs keyed by correlation id; the client sees
// only the generic body.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"correlation_id", requestcontext.CorrelationID(ctx),
						"stack", string(debug.Stack()),
					)
					shared.WriteError(w, r, dErrors.New(dErrors.CodeInternal, "an unexpected error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
