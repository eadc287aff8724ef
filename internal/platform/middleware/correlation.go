package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bookify/pkg/requestcontext"
)

// CorrelationIDHeader is echoed back on every response so external callers can
// correlate logs.
const CorrelationIDHeader = "X-Correlation-Id"

var tracer = otel.Tracer("bookify/http")

// CorrelationID tags every request with a correlation id: the caller-supplied
// X-Correlation-Id when present, a fresh UUID otherwise. The id lives in the
// request context only, so it cannot leak across requests on a reused worker.
// A span is opened per request carrying the id for trace backends.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		ctx := requestcontext.WithCorrelationID(r.Context(), correlationID)
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("correlation_id", correlationID)),
		)
		defer span.End()

		w.Header().Set(CorrelationIDHeader, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
