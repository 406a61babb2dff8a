package availability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/logger"
)

// Fake repositories in the style of hand-rolled test doubles: stored state
// plus overridable hooks for failure injection.

type fakeClinicRepo struct {
	clinics map[uuid.UUID]*model.Clinic
}

func (f *fakeClinicRepo) Create(ctx context.Context, c *model.Clinic) error { return nil }
func (f *fakeClinicRepo) Update(ctx context.Context, c *model.Clinic) error { return nil }
func (f *fakeClinicRepo) List(ctx context.Context, _ *model.ClinicFilters) ([]*model.Clinic, error) {
	return nil, nil
}
func (f *fakeClinicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, errors.NotFound("clinic", nil)
	}
	return c, nil
}

type fakeStaffRepo struct {
	staff []*model.Staff
}

func (f *fakeStaffRepo) Create(ctx context.Context, s *model.Staff) error  { return nil }
func (f *fakeStaffRepo) Update(ctx context.Context, s *model.Staff) error  { return nil }
func (f *fakeStaffRepo) Delete(ctx context.Context, c, id uuid.UUID) error { return nil }
func (f *fakeStaffRepo) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	for _, s := range f.staff {
		if s.ID == id && s.ClinicID == clinicID {
			return s, nil
		}
	}
	return nil, errors.NotFound("staff", nil)
}
func (f *fakeStaffRepo) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	var out []*model.Staff
	for _, s := range f.staff {
		if s.ClinicID == clinicID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeShiftRepo struct {
	shifts     []*model.Shift
	findErrFor map[uuid.UUID]error
}

func (f *fakeShiftRepo) Get(ctx context.Context, c, id uuid.UUID) (*model.Shift, error) {
	return nil, errors.NotFound("shift", nil)
}
func (f *fakeShiftRepo) ListByDate(ctx context.Context, c uuid.UUID, date string) ([]*model.Shift, error) {
	return nil, nil
}
func (f *fakeShiftRepo) Upsert(ctx context.Context, s *model.Shift) error { return nil }
func (f *fakeShiftRepo) DeleteRange(ctx context.Context, c uuid.UUID, from, to string) (int64, error) {
	return 0, nil
}
func (f *fakeShiftRepo) FindByDate(ctx context.Context, clinicID, staffID uuid.UUID, date string) (*model.Shift, error) {
	if err, ok := f.findErrFor[staffID]; ok {
		return nil, err
	}
	for _, s := range f.shifts {
		if s.ClinicID == clinicID && s.StaffID == staffID && s.Date == date {
			return s, nil
		}
	}
	return nil, errors.NotFound("shift", nil)
}

type fakeBookingRepo struct {
	bookings []*model.Booking
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *model.Booking) error { return nil }
func (f *fakeBookingRepo) Update(ctx context.Context, b *model.Booking) error { return nil }
func (f *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return nil, errors.NotFound("booking", nil)
}
func (f *fakeBookingRepo) List(ctx context.Context, _ *model.BookingFilters) ([]*model.Booking, error) {
	return f.bookings, nil
}
func (f *fakeBookingRepo) HasOverlap(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.ClinicID != clinicID || b.StaffID != staffID || b.Status == model.BookingStatusCancelled {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

type fixture struct {
	svc      *Service
	clinicID uuid.UUID
	staffID  uuid.UUID
	shifts   *fakeShiftRepo
	bookings *fakeBookingRepo
	staff    *fakeStaffRepo
}

func newFixture(t *testing.T, timezone string) *fixture {
	t.Helper()
	clinicID := uuid.New()
	staffID := uuid.New()

	clinics := &fakeClinicRepo{clinics: map[uuid.UUID]*model.Clinic{
		clinicID: {
			Base:     model.Base{ID: clinicID},
			Name:     "Riverside Clinic",
			Timezone: timezone,
			Status:   model.ClinicStatusActive,
		},
	}}
	staff := &fakeStaffRepo{staff: []*model.Staff{
		{Base: model.Base{ID: staffID}, ClinicID: clinicID, Name: "Dr. Sato"},
	}}
	shifts := &fakeShiftRepo{findErrFor: map[uuid.UUID]error{}}
	bookings := &fakeBookingRepo{}

	svc := NewService(clinics, staff, shifts, bookings, logger.Nop(), nil)
	return &fixture{
		svc:      svc,
		clinicID: clinicID,
		staffID:  staffID,
		shifts:   shifts,
		bookings: bookings,
		staff:    staff,
	}
}

func (f *fixture) addShift(staffID uuid.UUID, date, start, end string, holiday bool) {
	f.shifts.shifts = append(f.shifts.shifts, &model.Shift{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  f.clinicID,
		StaffID:   staffID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		IsHoliday: holiday,
	})
}

func (f *fixture) addBooking(staffID uuid.UUID, start, end time.Time, status model.BookingStatus) {
	f.bookings.bookings = append(f.bookings.bookings, &model.Booking{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  f.clinicID,
		StaffID:   staffID,
		Status:    status,
		StartTime: start,
		EndTime:   end,
	})
}

func at(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCheckStaffAvailability(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		start    time.Time
		end      time.Time
		expected bool
	}{
		{
			name: "open slot inside shift",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: true,
		},
		{
			name:     "no shift published",
			setup:    func(f *fixture) {},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: false,
		},
		{
			name: "holiday shift",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", true)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: false,
		},
		{
			name: "starts before shift start",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:30", "18:00", false)
			},
			start:    at("2025-06-02", "09:00"),
			end:      at("2025-06-02", "10:00"),
			expected: false,
		},
		{
			name: "ends after shift end",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "17:00", false)
			},
			start:    at("2025-06-02", "16:30"),
			end:      at("2025-06-02", "17:30"),
			expected: false,
		},
		{
			name: "overlapping confirmed booking",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
				f.addBooking(f.staffID, at("2025-06-02", "10:30"), at("2025-06-02", "11:30"), model.BookingStatusConfirmed)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: false,
		},
		{
			name: "overlapping pending booking",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
				f.addBooking(f.staffID, at("2025-06-02", "10:00"), at("2025-06-02", "11:00"), model.BookingStatusPending)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: false,
		},
		{
			name: "cancelled booking does not block",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
				f.addBooking(f.staffID, at("2025-06-02", "10:00"), at("2025-06-02", "11:00"), model.BookingStatusCancelled)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: true,
		},
		{
			name: "back to back bookings do not overlap",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
				f.addBooking(f.staffID, at("2025-06-02", "09:00"), at("2025-06-02", "10:00"), model.BookingStatusConfirmed)
			},
			start:    at("2025-06-02", "10:00"),
			end:      at("2025-06-02", "11:00"),
			expected: true,
		},
		{
			name: "exact shift boundaries are bookable",
			setup: func(f *fixture) {
				f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
			},
			start:    at("2025-06-02", "09:00"),
			end:      at("2025-06-02", "18:00"),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setup(f)

			got, err := f.svc.CheckStaffAvailability(context.Background(), f.clinicID, f.staffID, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCheckStaffAvailabilityUsesClinicLocalDate(t *testing.T) {
	f := newFixture(t, "Asia/Tokyo")

	// 15:30 UTC on June 1 is already 00:30 on June 2 in Tokyo; the shift
	// lookup must target the local day, not the UTC one.
	f.addShift(f.staffID, "2025-06-02", "00:00", "08:00", false)

	start := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 16, 30, 0, 0, time.UTC)

	got, err := f.svc.CheckStaffAvailability(context.Background(), f.clinicID, f.staffID, start, end)
	require.NoError(t, err)
	assert.True(t, got)

	// And nothing is found on the UTC date.
	f2 := newFixture(t, "Asia/Tokyo")
	f2.addShift(f2.staffID, "2025-06-01", "00:00", "08:00", false)
	got, err = f2.svc.CheckStaffAvailability(context.Background(), f2.clinicID, f2.staffID, start, end)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCheckStaffAvailabilityPropagatesStoreFailure(t *testing.T) {
	f := newFixture(t, "")
	f.shifts.findErrFor[f.staffID] = errors.Store("shift lookup failed", fmt.Errorf("connection reset"))

	_, err := f.svc.CheckStaffAvailability(context.Background(), f.clinicID, f.staffID,
		at("2025-06-02", "10:00"), at("2025-06-02", "11:00"))
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
}

func TestCheckStaffAvailabilityRejectsMalformedInterval(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{
			// A reversed window sits inside the shift bounds and overlaps
			// no booking, so without the guard it would read as available.
			name:  "reversed interval",
			start: at("2025-06-02", "11:00"),
			end:   at("2025-06-02", "10:00"),
		},
		{
			name:  "zero length interval",
			start: at("2025-06-02", "10:00"),
			end:   at("2025-06-02", "10:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
			// Rejection must happen before any lookup; a store failure
			// surfacing here would mean the repositories were consulted.
			f.shifts.findErrFor[f.staffID] = errors.Store("shift lookup failed", fmt.Errorf("must not be reached"))

			got, err := f.svc.CheckStaffAvailability(context.Background(), f.clinicID, f.staffID, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.False(t, got)
		})
	}
}

func TestFindAvailableStaff(t *testing.T) {
	f := newFixture(t, "")

	staffB := uuid.New()
	staffC := uuid.New()
	f.staff.staff = append(f.staff.staff,
		&model.Staff{Base: model.Base{ID: staffB}, ClinicID: f.clinicID, Name: "Dr. Ito"},
		&model.Staff{Base: model.Base{ID: staffC}, ClinicID: f.clinicID, Name: "Dr. Mori"},
	)

	f.addShift(f.staffID, "2025-06-02", "09:00", "12:00", false)
	f.addShift(staffB, "2025-06-02", "09:00", "12:00", false)
	// staffC has no shift at all.
	f.addBooking(staffB, at("2025-06-02", "09:00"), at("2025-06-02", "12:00"), model.BookingStatusConfirmed)

	ids, err := f.svc.FindAvailableStaff(context.Background(), f.clinicID,
		at("2025-06-02", "10:00"), at("2025-06-02", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.staffID}, ids)
}

func TestFindAvailableStaffToleratesPerStaffFailure(t *testing.T) {
	f := newFixture(t, "")

	staffB := uuid.New()
	f.staff.staff = append(f.staff.staff,
		&model.Staff{Base: model.Base{ID: staffB}, ClinicID: f.clinicID, Name: "Dr. Ito"},
	)
	f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)
	f.addShift(staffB, "2025-06-02", "09:00", "18:00", false)
	f.shifts.findErrFor[staffB] = errors.Store("shift lookup failed", fmt.Errorf("bad row"))

	ids, err := f.svc.FindAvailableStaff(context.Background(), f.clinicID,
		at("2025-06-02", "10:00"), at("2025-06-02", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.staffID}, ids)
}

func TestFindAvailableStaffRejectsMalformedInterval(t *testing.T) {
	f := newFixture(t, "")
	f.addShift(f.staffID, "2025-06-02", "09:00", "18:00", false)

	ids, err := f.svc.FindAvailableStaff(context.Background(), f.clinicID,
		at("2025-06-02", "11:00"), at("2025-06-02", "10:00"))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Nil(t, ids)
}

func TestFindAvailableStaffPreservesRosterOrder(t *testing.T) {
	f := newFixture(t, "")

	staffB := uuid.New()
	staffC := uuid.New()
	f.staff.staff = append(f.staff.staff,
		&model.Staff{Base: model.Base{ID: staffB}, ClinicID: f.clinicID, Name: "Dr. Ito"},
		&model.Staff{Base: model.Base{ID: staffC}, ClinicID: f.clinicID, Name: "Dr. Mori"},
	)
	for _, id := range []uuid.UUID{f.staffID, staffB, staffC} {
		f.addShift(id, "2025-06-02", "09:00", "18:00", false)
	}

	ids, err := f.svc.FindAvailableStaff(context.Background(), f.clinicID,
		at("2025-06-02", "10:00"), at("2025-06-02", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.staffID, staffB, staffC}, ids)
}
