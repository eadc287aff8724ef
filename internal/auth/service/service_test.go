package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"bookify/internal/audit"
	"bookify/internal/auth/service"
	"bookify/internal/auth/session"
	userstore "bookify/internal/auth/store"
	"bookify/internal/platform/metrics"
	"bookify/internal/token"
	tokenstore "bookify/internal/token/store"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/email"
	"bookify/pkg/email/mocks"
	"bookify/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	service  *service.Service
	users    *userstore.InMemoryStore
	sessions *session.InMemoryStore
	auditor  *audit.Recorder
}

func newFixture(t *testing.T, notifier email.Notifier) *fixture {
	t.Helper()
	if notifier == nil {
		notifier = email.NewLogNotifier(testLogger())
	}
	users := userstore.NewMemory()
	sessions := session.NewMemory()
	auditor := audit.NewRecorder()
	svc := service.New(
		users,
		sessions,
		token.NewLifecycle(token.PurposeVerification, tokenstore.NewMemory()),
		token.NewLifecycle(token.PurposeReset, tokenstore.NewMemory()),
		notifier,
		auditor,
		metrics.New(prometheus.NewRegistry()),
		service.Config{
			BcryptCost:      bcrypt.MinCost,
			SessionTTL:      12 * time.Hour,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        30 * time.Minute,
		},
	)
	return &fixture{service: svc, users: users, sessions: sessions, auditor: auditor}
}

func tenantCtx() context.Context {
	return requestcontext.WithTenantID(context.Background(), "clinic-1")
}

// registerVerified walks the full register-then-verify flow and returns the
// user's email.
func registerVerified(t *testing.T, f *fixture, ctx context.Context, emailAddr, password string) {
	t.Helper()
	_, verification, err := f.service.Register(ctx, emailAddr, password)
	require.NoError(t, err)
	require.NoError(t, f.service.VerifyEmail(ctx, verification.Value))
}

func TestRegister_AccountInactiveUntilVerified(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()

	u, verification, err := f.service.Register(ctx, "owner@clinic.test", "s3cret-pass")
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.Equal(t, []string{"OWNER"}, u.Roles)
	assert.Equal(t, "clinic-1", u.TenantID)

	// Unverified accounts cannot log in.
	_, err = f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	require.NoError(t, f.service.VerifyEmail(ctx, verification.Value))

	sess, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
}

func TestRegister_RequiresResolvedClinic(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.service.Register(context.Background(), "owner@clinic.test", "s3cret-pass")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTenantUnresolved))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()

	_, _, err := f.service.Register(ctx, "owner@clinic.test", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = f.service.Register(ctx, "Owner@Clinic.Test", "other-pass-123")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegister_RejectsMalformedCredentials(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()

	_, _, err := f.service.Register(ctx, "not-an-email", "s3cret-pass")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, _, err = f.service.Register(ctx, "owner@clinic.test", "short")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestRegister_NotifierReceivesIssuedToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)

	var delivered string
	notifier.EXPECT().
		SendVerification(gomock.Any(), "owner@clinic.test", gomock.Any()).
		Do(func(_ context.Context, _, tok string) { delivered = tok }).
		Return(nil)

	f := newFixture(t, notifier)
	ctx := tenantCtx()

	_, verification, err := f.service.Register(ctx, "owner@clinic.test", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, verification.Value, delivered,
		"the notifier must receive exactly the issued token")
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()

	// One verified account, one registered-but-unverified account.
	registerVerified(t, f, ctx, "active@clinic.test", "correct-pass")
	_, _, err := f.service.Register(ctx, "inactive@clinic.test", "correct-pass")
	require.NoError(t, err)

	cases := map[string]struct {
		email    string
		password string
	}{
		"unknown email":    {"nobody@clinic.test", "correct-pass"},
		"wrong password":   {"active@clinic.test", "wrong-pass"},
		"inactive account": {"inactive@clinic.test", "correct-pass"},
	}

	var messages []string
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.Login(ctx, tc.email, tc.password, "")
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			messages = append(messages, dErrors.MessageOf(err))
		})
	}

	for i := 1; i < len(messages); i++ {
		assert.Equal(t, messages[0], messages[i],
			"all login failures must produce byte-identical messages")
	}
}

func TestLogin_RotatesSessionID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()
	registerVerified(t, f, ctx, "owner@clinic.test", "s3cret-pass")

	first, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.NoError(t, err)

	// Logging in again while presenting the old id must yield a fresh id and
	// invalidate the old one.
	second, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = f.service.Authenticate(ctx, first.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized),
		"the pre-login session id must not survive authentication")

	_, err = f.service.Authenticate(ctx, second.ID)
	assert.NoError(t, err)
}

func TestLogin_PlantedSessionIDNeverPromoted(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()
	registerVerified(t, f, ctx, "owner@clinic.test", "s3cret-pass")

	planted := "attacker-chosen-session-id"
	sess, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", planted)
	require.NoError(t, err)
	assert.NotEqual(t, planted, sess.ID)

	_, err = f.service.Authenticate(ctx, planted)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()
	registerVerified(t, f, ctx, "owner@clinic.test", "s3cret-pass")

	sess, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, sess.ID))
	assert.NoError(t, f.service.Logout(ctx, sess.ID), "repeated logout must not fail")
	assert.NoError(t, f.service.Logout(ctx, "never-existed"))
	assert.NoError(t, f.service.Logout(ctx, ""))
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	f := newFixture(t, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(tenantCtx(), now)
	registerVerified(t, f, ctx, "owner@clinic.test", "s3cret-pass")

	sess, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.NoError(t, err)

	later := requestcontext.WithTime(context.Background(), now.Add(13*time.Hour))
	_, err = f.service.Authenticate(later, sess.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestForgotPassword_SilentOnUnknownEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()

	reset, err := f.service.ForgotPassword(ctx, "nobody@clinic.test")
	require.NoError(t, err, "unknown emails must not surface an error")
	assert.Nil(t, reset)
}

func TestResetPassword_FullLoop(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()
	registerVerified(t, f, ctx, "owner@clinic.test", "old-password")

	reset, err := f.service.ForgotPassword(ctx, "owner@clinic.test")
	require.NoError(t, err)
	require.NotNil(t, reset)

	require.NoError(t, f.service.ResetPassword(ctx, reset.Value, "new-password-1"))

	_, err = f.service.Login(ctx, "owner@clinic.test", "old-password", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = f.service.Login(ctx, "owner@clinic.test", "new-password-1", "")
	assert.NoError(t, err)

	// The reset token is gone after use.
	err = f.service.ResetPassword(ctx, reset.Value, "another-password")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestAuditTrail_RecordsAuthActions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := tenantCtx()
	registerVerified(t, f, ctx, "owner@clinic.test", "s3cret-pass")

	sess, err := f.service.Login(ctx, "owner@clinic.test", "s3cret-pass", "")
	require.NoError(t, err)
	require.NoError(t, f.service.Logout(ctx, sess.ID))

	assert.Len(t, f.auditor.ByAction(audit.ActionRegister), 1)
	assert.Len(t, f.auditor.ByAction(audit.ActionEmailVerified), 1)
	assert.Len(t, f.auditor.ByAction(audit.ActionLogin), 1)
	assert.Len(t, f.auditor.ByAction(audit.ActionLogout), 1)
}
