// Package models defines the account and session types shared across the
// auth stores, service, and transport layers.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Roles an account can hold within its clinic.
const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is a clinic account. Active is false until the email is verified;
// inactive users cannot log in.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	TenantID     string
	Active       bool
	CreatedAt    time.Time
}

// Identity is the authenticated principal exposed to handlers. It carries no
// secrets and no storage concerns.
type Identity struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// Session is a server-side login record. The ID doubles as the cookie value
// and is rotated on every successful login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	TenantID  string    `json:"tenantId"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity projects the session onto the principal handlers see.
func (s *Session) Identity() Identity {
	return Identity{UserID: s.UserID, Email: s.Email, Roles: s.Roles}
}

// Expired reports whether the session has lapsed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks the shape of a registration request before any
// store or hashing work happens.
func ValidateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
