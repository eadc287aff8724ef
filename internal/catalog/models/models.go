// Package models defines the clinic catalog: rooms, staff, and treatments
// with their bookable variants. Every record is scoped to one clinic.
package models

import (
	"fmt"
	"time"
)

// Room is a physical space bookings occupy.
type Room struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// StaffMember performs treatments. Skills name the treatments the member is
// qualified for.
type StaffMember struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"-"`
	Name      string    `json:"name"`
	Skills    []string  `json:"skills"`
	CreatedAt time.Time `json:"createdAt"`
}

// TreatmentCategory groups treatments for presentation. Optional; a
// treatment may be uncategorized.
type TreatmentCategory struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Treatment is a bookable service offered by the clinic.
type Treatment struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"-"`
	CategoryID  string             `json:"categoryId,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Variants    []TreatmentVariant `json:"variants"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// TreatmentVariant is one duration/price option of a treatment.
type TreatmentVariant struct {
	ID              string `json:"id"`
	TreatmentID     string `json:"-"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
}

// Validate checks the shape of a treatment before it is stored.
func (t *Treatment) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("treatment name is required")
	}
	if len(t.Variants) == 0 {
		return fmt.Errorf("treatment needs at least one variant")
	}
	for _, v := range t.Variants {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one variant's shape.
func (v *TreatmentVariant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant name is required")
	}
	if v.DurationMinutes <= 0 {
		return fmt.Errorf("variant duration must be positive")
	}
	if v.PriceCents < 0 {
		return fmt.Errorf("variant price must not be negative")
	}
	return nil
}
