// Package email defines the outbound notification boundary. The security core
// only produces token values; delivery happens behind the Notifier interface.
package email

import (
	"context"
	"log/slog"
)

//go:generate mockgen -destination=mocks/notifier.go -package=mocks bookify/pkg/email Notifier

// Notifier delivers account emails. Implementations must not log raw token
// values at info level or above.
type Notifier interface {
	SendVerification(ctx context.Context, recipient, token string) error
	SendPasswordReset(ctx context.Context, recipient, token string) error
}

// LogNotifier is the development implementation: it records that a message
// would have been sent without delivering anything.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(ctx context.Context, recipient, token string) error {
	n.logger.InfoContext(ctx, "verification email queued", "recipient", recipient)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, recipient, token string) error {
	n.logger.InfoContext(ctx, "password reset email queued", "recipient", recipient)
	return nil
}
