package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/tenant/models"
	"bookify/internal/tenant/service"
	"bookify/internal/tenant/store"
	dErrors "bookify/pkg/domain-errors"
)

func newResolver(t *testing.T) (*service.Service, map[string]string) {
	t.Helper()
	tenants := store.NewMemory()
	svc := service.New(tenants, "minapp.se")

	ids := make(map[string]string)
	for _, sub := range []string{"clinic1", "clinic2"} {
		created, err := svc.CreateClinic(context.Background(), sub, "Clinic "+sub)
		require.NoError(t, err)
		ids[sub] = created.ID
	}
	return svc, ids
}

func TestResolveHost(t *testing.T) {
	svc, ids := newResolver(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		host      string
		forwarded string
		wantID    string
		wantOK    bool
	}{
		{name: "known subdomain", host: "clinic1.minapp.se", wantID: ids["clinic1"], wantOK: true},
		{name: "with port", host: "clinic1.minapp.se:8443", wantID: ids["clinic1"], wantOK: true},
		{name: "uppercase host", host: "CLINIC1.MINAPP.SE", wantID: ids["clinic1"], wantOK: true},
		{name: "forwarded host wins", host: "clinic1.minapp.se", forwarded: "clinic2.minapp.se", wantID: ids["clinic2"], wantOK: true},
		{name: "unknown subdomain", host: "ghost.minapp.se", wantOK: false},
		{name: "apex domain", host: "minapp.se", wantOK: false},
		{name: "foreign domain", host: "clinic1.evil.example", wantOK: false},
		{name: "nested subdomain", host: "a.clinic1.minapp.se", wantOK: false},
		{name: "empty host", host: "", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := svc.ResolveHost(ctx, tc.host, tc.forwarded)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantID, id)
			} else {
				assert.Empty(t, id)
			}
		})
	}
}

func TestResolveHost_SilentOnMiss(t *testing.T) {
	svc, _ := newResolver(t)

	// A miss never yields an error value of any kind; the caller gets the
	// zero result and decides for itself.
	id, ok := svc.ResolveHost(context.Background(), "nobody.minapp.se", "")
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestCreateClinic(t *testing.T) {
	svc, _ := newResolver(t)
	ctx := context.Background()

	created, err := svc.CreateClinic(ctx, "  NewClinic  ", "New Clinic")
	require.NoError(t, err)
	assert.Equal(t, "newclinic", created.Subdomain, "subdomain is normalized")

	_, err = svc.CreateClinic(ctx, "newclinic", "Another")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = svc.CreateClinic(ctx, "bad.label", "Dots not allowed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.CreateClinic(ctx, "valid", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestGetClinic(t *testing.T) {
	svc, ids := newResolver(t)
	ctx := context.Background()

	clinic, err := svc.GetClinic(ctx, ids["clinic1"])
	require.NoError(t, err)
	assert.Equal(t, "clinic1", clinic.Subdomain)

	_, err = svc.GetClinic(ctx, "missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestClinicSettings_DefaultsUntilCustomized(t *testing.T) {
	svc, ids := newResolver(t)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx, ids["clinic1"])
	require.NoError(t, err)
	assert.Equal(t, 15, settings.SlotIntervalMinutes)
	assert.Equal(t, "09:00", settings.OpensAt)
	assert.Equal(t, "17:00", settings.ClosesAt)
}

func TestClinicSettings_UpdateRoundTrip(t *testing.T) {
	svc, ids := newResolver(t)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, ids["clinic1"], &models.ClinicSettings{
		SlotIntervalMinutes: 30,
		OpensAt:             "08:00",
		ClosesAt:            "20:00",
	})
	require.NoError(t, err)

	settings, err := svc.GetSettings(ctx, ids["clinic1"])
	require.NoError(t, err)
	assert.Equal(t, 30, settings.SlotIntervalMinutes)
	assert.Equal(t, "08:00", settings.OpensAt)
	assert.Equal(t, "20:00", settings.ClosesAt)

	// The other clinic still sees the defaults.
	other, err := svc.GetSettings(ctx, ids["clinic2"])
	require.NoError(t, err)
	assert.Equal(t, 15, other.SlotIntervalMinutes)
}

func TestClinicSettings_Validation(t *testing.T) {
	svc, ids := newResolver(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		settings models.ClinicSettings
	}{
		{name: "zero interval", settings: models.ClinicSettings{SlotIntervalMinutes: 0, OpensAt: "09:00", ClosesAt: "17:00"}},
		{name: "malformed opening time", settings: models.ClinicSettings{SlotIntervalMinutes: 15, OpensAt: "9am", ClosesAt: "17:00"}},
		{name: "closes before opens", settings: models.ClinicSettings{SlotIntervalMinutes: 15, OpensAt: "17:00", ClosesAt: "09:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(ctx, ids["clinic1"], &tc.settings)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}

	_, err := svc.UpdateSettings(ctx, "missing", &models.ClinicSettings{
		SlotIntervalMinutes: 15, OpensAt: "09:00", ClosesAt: "17:00",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
