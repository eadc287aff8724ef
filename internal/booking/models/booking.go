// Package models defines the booking record: a treatment variant performed
// by a staff member in a room at a time slot, scoped to one clinic.
package models

import "time"

// Booking is one confirmed appointment. StartTime/EndTime are half-open:
// a booking ending at 10:00 does not collide with one starting at 10:00.
type Booking struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"-"`
	VariantID     string    `json:"variantId"`
	StaffID       string    `json:"staffId"`
	RoomID        string    `json:"roomId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Overlaps reports whether two time slots intersect.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}
