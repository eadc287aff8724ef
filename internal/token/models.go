// Package token manages single-use, time-bound security tokens for email
// verification and password reset. The two purposes share the lifecycle
// logic but operate on disjoint stores, so a verification token can never
// authorize a password reset.
package token

import "time"

// Purpose names a token family. Each purpose owns its own store.
type Purpose string

const (
	PurposeVerification Purpose = "verification"
	PurposeReset        Purpose = "password_reset"
)

// SecurityToken is a random, opaque, single-use credential-adjacent value.
//
// Invariants:
//   - Value is unique within its store
//   - Used transitions false→true exactly once and never back
//   - expired or used tokens are indistinguishable from absent ones to callers
type SecurityToken struct {
	ID        string
	Value     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Live reports whether the token is still authoritative at the given time.
func (t *SecurityToken) Live(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
