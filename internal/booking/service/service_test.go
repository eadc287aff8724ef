package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookify/internal/audit"
	"bookify/internal/booking/service"
	bookingstore "bookify/internal/booking/store"
	catalogmodels "bookify/internal/catalog/models"
	catalogservice "bookify/internal/catalog/service"
	catalogstore "bookify/internal/catalog/store"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

type fixture struct {
	booking *service.Service
	auditor *audit.Recorder
	room    *catalogmodels.Room
	staff   *catalogmodels.StaffMember
	variant catalogmodels.TreatmentVariant
}

func clinicCtx(id string) context.Context {
	return requestcontext.WithTenantID(context.Background(), id)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := clinicCtx("clinic-a")
	catalog := catalogservice.New(catalogstore.NewMemory())

	room, err := catalog.CreateRoom(ctx, "Room 1")
	require.NoError(t, err)
	staff, err := catalog.CreateStaff(ctx, "Alex", []string{"massage"})
	require.NoError(t, err)
	treatment, err := catalog.CreateTreatment(ctx, &catalogmodels.Treatment{
		Name:     "Massage",
		Variants: []catalogmodels.TreatmentVariant{{Name: "60 min", DurationMinutes: 60, PriceCents: 8000}},
	})
	require.NoError(t, err)

	auditor := audit.NewRecorder()
	return &fixture{
		booking: service.New(bookingstore.NewMemory(), catalog, auditor),
		auditor: auditor,
		room:    room,
		staff:   staff,
		variant: treatment.Variants[0],
	}
}

func (f *fixture) request(start time.Time) service.CreateRequest {
	return service.CreateRequest{
		VariantID:     f.variant.ID,
		StaffID:       f.staff.ID,
		RoomID:        f.room.ID,
		CustomerName:  "Kim Visitor",
		CustomerEmail: "kim@example.test",
		StartTime:     start,
	}
}

func TestCreate_EndTimeFromVariantDuration(t *testing.T) {
	f := newFixture(t)
	ctx := clinicCtx("clinic-a")
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	b, err := f.booking.Create(ctx, f.request(start))
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Hour), b.EndTime)
	assert.Len(t, f.auditor.ByAction(audit.ActionBookingCreated), 1)
}

func TestCreate_OverlapConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := clinicCtx("clinic-a")
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := f.booking.Create(ctx, f.request(start))
	require.NoError(t, err)

	// Same slot and a half-overlapping slot both conflict.
	_, err = f.booking.Create(ctx, f.request(start))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	_, err = f.booking.Create(ctx, f.request(start.Add(30*time.Minute)))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// Back to back is fine: the interval is half-open.
	_, err = f.booking.Create(ctx, f.request(start.Add(time.Hour)))
	assert.NoError(t, err)
}

func TestCreate_ForeignClinicResourcesRejected(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// The resources exist, but belong to clinic-a.
	_, err := f.booking.Create(clinicCtx("clinic-b"), f.request(start))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreate_RequiresResolvedClinic(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := f.booking.Create(context.Background(), f.request(start))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTenantUnresolved))
}

func TestCreate_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := clinicCtx("clinic-a")

	req := f.request(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	req.CustomerName = ""
	_, err := f.booking.Create(ctx, req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	req = f.request(time.Time{})
	_, err = f.booking.Create(ctx, req)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestList_FiltersByWindowAndClinic(t *testing.T) {
	f := newFixture(t)
	ctx := clinicCtx("clinic-a")
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := f.booking.Create(ctx, f.request(day.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = f.booking.Create(ctx, f.request(day.Add(14*time.Hour)))
	require.NoError(t, err)

	morning, err := f.booking.List(ctx, day, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Len(t, morning, 1)

	all, err := f.booking.List(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	other, err := f.booking.List(clinicCtx("clinic-b"), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, other, "another clinic must not see these bookings")
}
