package models

import (
	"time"

	dErrors "bookify/pkg/domain-errors"
)

// ClinicSettings lays out a clinic's booking day: the granularity of the
// slot grid and the opening hours. Times are local clinic time in "HH:MM".
type ClinicSettings struct {
	TenantID            string `json:"-"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
	OpensAt             string `json:"opens_at"`
	ClosesAt            string `json:"closes_at"`
}

// DefaultSettings is what a clinic gets before its owner customizes anything.
func DefaultSettings(tenantID string) *ClinicSettings {
	return &ClinicSettings{
		TenantID:            tenantID,
		SlotIntervalMinutes: 15,
		OpensAt:             "09:00",
		ClosesAt:            "17:00",
	}
}

// Validate checks the settings shape.
func (s *ClinicSettings) Validate() error {
	if s.SlotIntervalMinutes <= 0 || s.SlotIntervalMinutes > 8*60 {
		return dErrors.New(dErrors.CodeBadRequest, "slot interval must be between 1 minute and 8 hours")
	}
	opens, err := time.Parse("15:04", s.OpensAt)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "opening time must be in HH:MM form")
	}
	closes, err := time.Parse("15:04", s.ClosesAt)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "closing time must be in HH:MM form")
	}
	if !opens.Before(closes) {
		return dErrors.New(dErrors.CodeBadRequest, "opening time must be before closing time")
	}
	return nil
}
