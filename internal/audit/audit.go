// Package audit records security-relevant actions (logins, registrations,
// password resets) as an append-only event stream.
package audit

import (
	"context"
	"time"
)

// Actions recorded on the audit trail.
const (
	ActionLogin          = "auth.login"
	ActionLoginFailed    = "auth.login_failed"
	ActionLogout         = "auth.logout"
	ActionRegister       = "auth.register"
	ActionEmailVerified  = "auth.email_verified"
	ActionPasswordReset  = "auth.password_reset"
	ActionClinicCreated  = "tenant.clinic_created"
	ActionBookingCreated = "booking.created"
)

// Event is one audit record. ActorID may be empty for unauthenticated
// actions; TenantID may be empty for actions outside any clinic scope.
type Event struct {
	Action        string            `json:"action"`
	ActorID       string            `json:"actorId,omitempty"`
	TenantID      string            `json:"tenantId,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	OccurredAt    time.Time         `json:"occurredAt"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Publisher delivers audit events to the trail. Implementations must not
// block request handling on delivery failures.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
