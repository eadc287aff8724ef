package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/auth/csrf"
	"bookify/internal/auth/middleware"
	"bookify/internal/auth/models"
	dErrors "bookify/pkg/domain-errors"
)

type stubAuthenticator struct {
	sessions map[string]*models.Session
}

func (s *stubAuthenticator) Authenticate(_ context.Context, id string) (*models.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
}

func TestRequireSession_BindsSession(t *testing.T) {
	auth := &stubAuthenticator{sessions: map[string]*models.Session{
		"sid-1": {ID: "sid-1", UserID: "user-1", Email: "owner@clinic.test"},
	}}

	var seen *models.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "sid-1"})
	rec := httptest.NewRecorder()

	middleware.RequireSession(auth)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestRequireSession_RejectsMissingCookie(t *testing.T) {
	auth := &stubAuthenticator{sessions: map[string]*models.Session{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run without a session")
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	middleware.RequireSession(auth)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireCSRF_ChecksMutatingRequests(t *testing.T) {
	signer := csrf.NewSigner([]byte("test-signing-key"))
	auth := &stubAuthenticator{sessions: map[string]*models.Session{
		"sid-1": {ID: "sid-1", UserID: "user-1"},
	}}

	handler := middleware.RequireSession(auth)(
		middleware.RequireCSRF(signer)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

	tok, err := signer.Issue("sid-1", time.Now())
	require.NoError(t, err)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/clinic", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "sid-1"})
		req.Header.Set(middleware.CSRFHeader, tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/clinic", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "sid-1"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("safe method skips the check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/clinic", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "sid-1"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
