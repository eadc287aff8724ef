// Package service implements account and session workflows: registration with
// email verification, login with session rotation, logout, and the password
// reset loop.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"bookify/internal/audit"
	"bookify/internal/auth/models"
	"bookify/internal/auth/session"
	"bookify/internal/platform/metrics"
	"bookify/internal/token"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/email"
	"bookify/pkg/platform/sentinel"
	"bookify/pkg/requestcontext"
)

// Responses for failed authentication are byte-identical across the unknown
// email, wrong password, and inactive account cases so the endpoint cannot be
// used to enumerate accounts.
const (
	msgInvalidCredentials = "invalid email or password"
	msgInvalidToken       = "invalid or expired token"
)

// ErrInvalidToken covers every failed token validation: absent, expired, and
// already-used tokens are indistinguishable to the caller. The handler maps it
// to the same generic success body a valid token produces.
var ErrInvalidToken = dErrors.New(dErrors.CodeBadRequest, msgInvalidToken)

// UserStore is the persistence boundary for accounts.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// Config holds the tunables the auth workflows need.
type Config struct {
	BcryptCost      int
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Service wires the auth workflows together.
type Service struct {
	users        UserStore
	sessions     session.Store
	verification *token.Lifecycle
	reset        *token.Lifecycle
	notifier     email.Notifier
	auditor      audit.Publisher
	metrics      *metrics.Metrics
	cfg          Config

	// dummyHash keeps bcrypt comparison time flat when the email is unknown.
	dummyHash []byte
}

func New(
	users UserStore,
	sessions session.Store,
	verification *token.Lifecycle,
	reset *token.Lifecycle,
	notifier email.Notifier,
	auditor audit.Publisher,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		// Only reachable with an out-of-range cost, which config validation rejects.
		panic(fmt.Sprintf("auth: generate pad hash: %v", err))
	}
	return &Service{
		users:        users,
		sessions:     sessions,
		verification: verification,
		reset:        reset,
		notifier:     notifier,
		auditor:      auditor,
		metrics:      m,
		cfg:          cfg,
		dummyHash:    dummy,
	}
}

// Login verifies the credentials and establishes a fresh session. Any session
// id presented by the client is discarded and never promoted, so an attacker
// who planted a pre-auth id gains nothing from the victim logging in.
func (s *Service) Login(ctx context.Context, emailAddr, password, priorSessionID string) (*models.Session, error) {
	emailAddr = models.NormalizeEmail(emailAddr)

	u, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Burn comparable time so unknown emails do not respond faster.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, s.loginFailure(ctx, emailAddr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, s.loginFailure(ctx, emailAddr)
	}
	if !u.Active {
		return nil, s.loginFailure(ctx, emailAddr)
	}

	if priorSessionID != "" {
		if err := s.sessions.Delete(ctx, priorSessionID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
		}
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		Roles:     append([]string(nil), u.Roles...),
		TenantID:  u.TenantID,
		Device:    deviceLabel(requestcontext.UserAgent(ctx)),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}

	s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionLogin, u.ID, u.TenantID, nil))
	return sess, nil
}

func (s *Service) loginFailure(ctx context.Context, emailAddr string) error {
	s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionLoginFailed, "", "", map[string]string{"email": emailAddr}))
	return dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
}

// Logout removes the session. Deleting an unknown or already-removed id is
// not an error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	sess, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "logout failed")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "logout failed")
	}
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionLogout, sess.UserID, sess.TenantID, nil))
	return nil
}

// Authenticate resolves a session id to its live session. Unknown and
// expired ids both come back unauthorized.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	sess, err := s.sessions.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "authentication failed")
	}
	if sess.Expired(requestcontext.Now(ctx)) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return sess, nil
}

// Register creates an inactive account in the current clinic with the OWNER
// role and issues a verification token. The account cannot log in until the
// email is verified.
func (s *Service) Register(ctx context.Context, emailAddr, password string) (*models.User, *token.SecurityToken, error) {
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		return nil, nil, dErrors.New(dErrors.CodeTenantUnresolved, "clinic not found")
	}

	emailAddr = models.NormalizeEmail(emailAddr)
	if err := models.ValidateCredentials(emailAddr, password); err != nil {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hash),
		Roles:        []string{models.RoleOwner},
		TenantID:     tenantID,
		Active:       false,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil, dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
	}

	t, err := s.verification.Issue(ctx, u.ID, s.cfg.VerificationTTL)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
	}
	s.metrics.TokensIssuedTotal.WithLabelValues(string(token.PurposeVerification)).Inc()
	s.metrics.RegistrationsTotal.Inc()

	if err := s.notifier.SendVerification(ctx, u.Email, t.Value); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "registration failed")
	}
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionRegister, u.ID, tenantID, nil))
	return u, t, nil
}

// VerifyEmail consumes a verification token and activates the account.
// Absent, expired, and already-used tokens all produce the same error.
func (s *Service) VerifyEmail(ctx context.Context, tokenValue string) error {
	t, err := s.verification.Validate(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrInvalidToken
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification failed")
	}
	if err := s.verification.Consume(ctx, t); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification failed")
	}
	if err := s.users.SetActive(ctx, t.UserID, true); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification failed")
	}

	u, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "verification failed")
	}
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionEmailVerified, u.ID, u.TenantID, nil))
	return nil
}

// ForgotPassword issues a reset token if the account exists. It reports
// success either way; the handler responds identically so the endpoint cannot
// confirm whether an email is registered. The returned token is nil when no
// account matched.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) (*token.SecurityToken, error) {
	emailAddr = models.NormalizeEmail(emailAddr)

	u, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}

	t, err := s.reset.Issue(ctx, u.ID, s.cfg.ResetTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}
	s.metrics.TokensIssuedTotal.WithLabelValues(string(token.PurposeReset)).Inc()

	if err := s.notifier.SendPasswordReset(ctx, u.Email, t.Value); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}
	return t, nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	if len(newPassword) < 8 {
		return dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}

	t, err := s.reset.Validate(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrInvalidToken
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}
	if err := s.reset.Consume(ctx, t); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}
	if err := s.users.UpdatePassword(ctx, t.UserID, string(hash)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}

	u, err := s.users.FindByID(ctx, t.UserID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "password reset failed")
	}
	s.auditor.Publish(ctx, s.event(ctx, audit.ActionPasswordReset, u.ID, u.TenantID, nil))
	return nil
}

func (s *Service) event(ctx context.Context, action, actorID, tenantID string, meta map[string]string) audit.Event {
	if tenantID == "" {
		tenantID, _ = requestcontext.TenantID(ctx)
	}
	return audit.Event{
		Action:        action,
		ActorID:       actorID,
		TenantID:      tenantID,
		CorrelationID: requestcontext.CorrelationID(ctx),
		OccurredAt:    requestcontext.Now(ctx),
		Metadata:      meta,
	}
}

func deviceLabel(uaString string) string {
	if uaString == "" {
		return "unknown"
	}
	ua := useragent.New(uaString)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "unknown"
	}
}
