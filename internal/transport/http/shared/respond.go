// Package shared holds the transport-level response helpers used by every
// handler: JSON writing and the single domain-error-to-response translation
// point.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// Problem is the uniform error body (RFC 7807 shape) returned on every
// non-2xx response.
type Problem struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Status        int    `json:"status"`
	Detail        string `json:"detail"`
	Instance      string `json:"instance"`
	CorrelationID string `json:"correlationID"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError is the single translation point from domain errors to HTTP
// responses. It maps the error's code to status, title, and type URI, and
// attaches the request path and correlation id. Errors without a domain code
// become sanitized 500s; their detail goes to server logs only, keyed by the
// correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	WriteJSON(w, status, Problem{
		Type:          "https://bookify.dev/errors/" + typeSlug(code),
		Title:         titleFor(code),
		Status:        status,
		Detail:        dErrors.MessageOf(err),
		Instance:      r.URL.Path,
		CorrelationID: requestcontext.CorrelationID(r.Context()),
	})
}

// LogError records the full error server-side with the correlation id so 500
// responses stay sanitized while logs keep the detail.
func LogError(logger *slog.Logger, r *http.Request, err error, msg string) {
	ctx := r.Context()
	logger.ErrorContext(ctx, msg,
		"error", err,
		"path", r.URL.Path,
		"correlation_id", requestcontext.CorrelationID(ctx),
	)
}

func titleFor(code dErrors.Code) string {
	switch code {
	case dErrors.CodeBadRequest:
		return "Bad Request"
	case dErrors.CodeUnauthorized:
		return "Unauthorized"
	case dErrors.CodeForbidden:
		return "Forbidden"
	case dErrors.CodeNotFound:
		return "Not Found"
	case dErrors.CodeTenantUnresolved:
		return "Clinic Not Found"
	case dErrors.CodeConflict:
		return "Conflict"
	case dErrors.CodeTooManyRequests:
		return "Too Many Requests"
	default:
		return "Internal Server Error"
	}
}

func typeSlug(code dErrors.Code) string {
	switch code {
	case dErrors.CodeTenantUnresolved:
		return "clinic-not-found"
	case dErrors.CodeInternal:
		return "internal-error"
	default:
		return string(code)
	}
}
