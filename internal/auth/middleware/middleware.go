// Package middleware guards routes that require an authenticated session and
// verifies anti-forgery tokens on mutating requests.
package middleware

import (
	"context"
	"net/http"
	"time"

	"bookify/internal/auth/models"
	shared "bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// SessionCookie is the cookie carrying the opaque session id.
const SessionCookie = "bookify_session"

// CSRFHeader carries the anti-forgery token on mutating requests.
const CSRFHeader = "X-CSRF-Token"

type sessionKey struct{}

// Authenticator resolves a session id to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*models.Session, error)
}

// CSRFVerifier checks an anti-forgery token against the session it should be
// bound to.
type CSRFVerifier interface {
	Verify(token, sessionID string, now time.Time) error
}

// SessionFromContext returns the authenticated session bound by
// RequireSession.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*models.Session)
	return sess, ok
}

// SessionIDFromRequest extracts the session cookie value, or "" if absent.
func SessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireSession rejects requests without a live session and binds the
// session into the request context for downstream handlers.
func RequireSession(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := auth.Authenticate(r.Context(), SessionIDFromRequest(r))
			if err != nil {
				shared.WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCSRF rejects mutating requests whose anti-forgery token is missing,
// invalid, or bound to a different session. Safe methods pass through.
func RequireCSRF(verifier CSRFVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := SessionFromContext(r.Context())
			if !ok {
				shared.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			token := r.Header.Get(CSRFHeader)
			if err := verifier.Verify(token, sess.ID, requestcontext.Now(r.Context())); err != nil {
				shared.WriteError(w, r, dErrors.New(dErrors.CodeForbidden, "invalid anti-forgery token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
