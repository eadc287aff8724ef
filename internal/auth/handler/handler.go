// Package handler exposes the auth workflows over HTTP under /auth.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "bookify/internal/auth/middleware"
	"bookify/internal/auth/models"
	"bookify/internal/auth/service"
	"bookify/internal/token"
	shared "bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// Service is the auth surface the handler depends on.
type Service interface {
	Login(ctx context.Context, email, password, priorSessionID string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID string) (*models.Session, error)
	Register(ctx context.Context, email, password string) (*models.User, *token.SecurityToken, error)
	VerifyEmail(ctx context.Context, tokenValue string) error
	ForgotPassword(ctx context.Context, email string) (*token.SecurityToken, error)
	ResetPassword(ctx context.Context, tokenValue, newPassword string) error
}

// CSRFIssuer mints anti-forgery tokens bound to a session.
type CSRFIssuer interface {
	Issue(sessionID string, now time.Time) (string, error)
}

// Handler serves the auth endpoints.
type Handler struct {
	service Service
	csrf    CSRFIssuer
	logger  *slog.Logger

	// exposeTokens inlines raw verification/reset tokens in responses.
	// Development convenience only.
	exposeTokens bool
}

func New(service Service, csrf CSRFIssuer, logger *slog.Logger, exposeTokens bool) *Handler {
	return &Handler{service: service, csrf: csrf, logger: logger, exposeTokens: exposeTokens}
}

// Register mounts the auth routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
	r.Post("/auth/register", h.register)
	r.Get("/auth/verify-email", h.verifyEmail)
	r.Post("/auth/forgot-password", h.forgotPassword)
	r.Post("/auth/reset-password", h.resetPassword)
	r.Get("/auth/csrf", h.csrfToken)

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireSession(h.service))
		pr.Get("/auth/me", h.me)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password, authmw.SessionIDFromRequest(r))
	if err != nil {
		shared.LogError(h.logger, r, err, "login rejected")
		shared.WriteError(w, r, err)
		return
	}

	setSessionCookie(w, r, sess)
	shared.WriteJSON(w, http.StatusOK, sess.Identity())
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), authmw.SessionIDFromRequest(r)); err != nil {
		shared.LogError(h.logger, r, err, "logout failed")
		shared.WriteError(w, r, err)
		return
	}
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	_, verification, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		shared.LogError(h.logger, r, err, "registration rejected")
		shared.WriteError(w, r, err)
		return
	}

	resp := map[string]string{
		"message": "registration received, check your email to verify the account",
	}
	if h.exposeTokens && verification != nil {
		resp["verificationToken"] = verification.Value
	}
	shared.WriteJSON(w, http.StatusCreated, resp)
}

// verifyEmail responds with the same body whether or not the token was valid.
// Only the server-side log, keyed by correlation id, records the difference.
func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.service.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		if !errors.Is(err, service.ErrInvalidToken) {
			shared.LogError(h.logger, r, err, "email verification failed")
			shared.WriteError(w, r, err)
			return
		}
		shared.LogError(h.logger, r, err, "email verification with invalid token")
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "email verification processed"})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reset, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		shared.LogError(h.logger, r, err, "password reset request failed")
		shared.WriteError(w, r, err)
		return
	}

	// Identical body whether or not the account exists.
	resp := map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	}
	if h.exposeTokens && reset != nil {
		resp["resetToken"] = reset.Value
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if !errors.Is(err, service.ErrInvalidToken) {
			shared.LogError(h.logger, r, err, "password reset rejected")
			shared.WriteError(w, r, err)
			return
		}
		shared.LogError(h.logger, r, err, "password reset with invalid token")
	}
	// Identical body whether or not the token was valid.
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset processed"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess, ok := authmw.SessionFromContext(r.Context())
	if !ok {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, sess.Identity())
}

// csrfToken serves authenticated and anonymous callers alike. With a live
// session the token is bound to its id; otherwise a pre-session token is
// issued, which never clears the guard on protected routes (the subject
// cannot match a real session id), so a client must fetch a fresh token
// after logging in.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	var subject string
	if id := authmw.SessionIDFromRequest(r); id != "" {
		if sess, err := h.service.Authenticate(r.Context(), id); err == nil {
			subject = sess.ID
		}
	}

	tok, err := h.csrf.Issue(subject, requestcontext.Now(r.Context()))
	if err != nil {
		shared.LogError(h.logger, r, err, "csrf token issue failed")
		shared.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
