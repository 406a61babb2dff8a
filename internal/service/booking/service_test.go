package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/locker"
	"github.com/reservly/booking-api/pkg/logger"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *b
	f.bookings = append(f.bookings, &copied)
	return nil
}

func (f *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, errors.NotFound("booking", nil)
}

func (f *fakeBookingRepo) Update(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.bookings {
		if existing.ID == b.ID {
			copied := *b
			f.bookings[i] = &copied
			return nil
		}
	}
	return errors.NotFound("booking", nil)
}

func (f *fakeBookingRepo) List(ctx context.Context, _ *model.BookingFilters) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Booking(nil), f.bookings...), nil
}

func (f *fakeBookingRepo) HasOverlap(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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

type fakeClinicRepo struct {
	clinic *model.Clinic
}

func (f *fakeClinicRepo) Create(ctx context.Context, c *model.Clinic) error { return nil }
func (f *fakeClinicRepo) Update(ctx context.Context, c *model.Clinic) error { return nil }
func (f *fakeClinicRepo) List(ctx context.Context, _ *model.ClinicFilters) ([]*model.Clinic, error) {
	return nil, nil
}
func (f *fakeClinicRepo) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	if f.clinic != nil && f.clinic.ID == id {
		return f.clinic, nil
	}
	return nil, errors.NotFound("clinic", nil)
}

// fakeResolver reports a staff member available when their shift window
// covers the interval and no stored booking overlaps, mirroring the real
// resolver against the fake booking repo.
type fakeResolver struct {
	repo    *fakeBookingRepo
	shifts  map[uuid.UUID][2]time.Time
	roster  []uuid.UUID
	findErr error
}

func (r *fakeResolver) CheckStaffAvailability(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	window, ok := r.shifts[staffID]
	if !ok {
		return false, nil
	}
	if start.Before(window[0]) || end.After(window[1]) {
		return false, nil
	}
	overlap, err := r.repo.HasOverlap(ctx, clinicID, staffID, start, end)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

func (r *fakeResolver) FindAvailableStaff(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]uuid.UUID, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []uuid.UUID
	for _, id := range r.roster {
		ok, err := r.CheckStaffAvailability(ctx, clinicID, id, start, end)
		if err != nil {
			continue
		}
		if ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]bool{}}
}

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, locker.ErrLockHeld
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	confirmations int
	cancellations int
	err           error
}

func (m *fakeMailer) SendBookingConfirmation(ctx context.Context, b *model.Booking, clinic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations++
	return m.err
}

func (m *fakeMailer) SendBookingCancellation(ctx context.Context, b *model.Booking, clinic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations++
	return m.err
}

type fixture struct {
	svc      *Service
	repo     *fakeBookingRepo
	resolver *fakeResolver
	mailer   *fakeMailer
	clinicID uuid.UUID
	staffA   uuid.UUID
	staffB   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clinicID := uuid.New()
	staffA := uuid.New()
	staffB := uuid.New()

	repo := &fakeBookingRepo{}
	clinics := &fakeClinicRepo{clinic: &model.Clinic{
		Base:   model.Base{ID: clinicID},
		Name:   "Riverside Clinic",
		Status: model.ClinicStatusActive,
	}}

	dayStart := at("09:00")
	dayEnd := at("12:00")
	resolver := &fakeResolver{
		repo: repo,
		shifts: map[uuid.UUID][2]time.Time{
			staffA: {dayStart, dayEnd},
			staffB: {dayStart, dayEnd},
		},
		roster: []uuid.UUID{staffA, staffB},
	}
	mailer := &fakeMailer{}

	svc := NewService(repo, clinics, resolver, newMemLocker(), mailer, logger.Nop(), nil)
	return &fixture{
		svc:      svc,
		repo:     repo,
		resolver: resolver,
		mailer:   mailer,
		clinicID: clinicID,
		staffA:   staffA,
		staffB:   staffB,
	}
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-06-02 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateBookingRejectsMalformedInterval(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("11:00"),
		EndTime:   at("10:00"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, f.repo.bookings)
}

func TestCreateBookingNominated(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:   f.clinicID,
		StaffID:    &f.staffA,
		StartTime:  at("10:00"),
		EndTime:    at("11:00"),
		GuestEmail: "guest@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, f.staffA, booking.StaffID)
	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, model.BookedByUser, booking.BookedBy)
	assert.Len(t, f.repo.bookings, 1)
	assert.Equal(t, 1, f.mailer.confirmations)
}

func TestCreateBookingNominatedConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:30"),
		EndTime:   at("11:30"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Len(t, f.repo.bookings, 1)
}

func TestCreateBookingOutsideShiftConflicts(t *testing.T) {
	f := newFixture(t)

	// Shift starts 09:00; a 08:30 start is outside working hours.
	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("08:30"),
		EndTime:   at("09:30"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCreateBookingAutoAssignPicksFirstAvailable(t *testing.T) {
	f := newFixture(t)

	// Fully book staff B; A stays open.
	f.repo.bookings = append(f.repo.bookings, &model.Booking{
		Base:      model.Base{ID: uuid.New()},
		ClinicID:  f.clinicID,
		StaffID:   f.staffB,
		Status:    model.BookingStatusConfirmed,
		StartTime: at("09:00"),
		EndTime:   at("12:00"),
	})

	booking, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, f.staffA, booking.StaffID)
}

func TestCreateBookingAutoAssignNoAvailability(t *testing.T) {
	f := newFixture(t)

	for _, staffID := range []uuid.UUID{f.staffA, f.staffB} {
		f.repo.bookings = append(f.repo.bookings, &model.Booking{
			Base:      model.Base{ID: uuid.New()},
			ClinicID:  f.clinicID,
			StaffID:   staffID,
			Status:    model.BookingStatusConfirmed,
			StartTime: at("09:00"),
			EndTime:   at("12:00"),
		})
	}

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsNoAvailability(err))
}

func TestCreateBookingInactiveClinic(t *testing.T) {
	f := newFixture(t)
	clinics := &fakeClinicRepo{clinic: &model.Clinic{
		Base:   model.Base{ID: f.clinicID},
		Status: model.ClinicStatusSuspended,
	}}
	svc := NewService(f.repo, clinics, f.resolver, newMemLocker(), f.mailer, logger.Nop(), nil)

	_, err := svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCreateBookingEmailFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = assert.AnError

	_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:   f.clinicID,
		StaffID:    &f.staffA,
		StartTime:  at("10:00"),
		EndTime:    at("11:00"),
		GuestEmail: "guest@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, f.repo.bookings, 1)
}

func TestConcurrentCreateOnlyOneWinsContestedSlot(t *testing.T) {
	f := newFixture(t)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
				ClinicID:  f.clinicID,
				StaffID:   &f.staffA,
				StartTime: at("10:00"),
				EndTime:   at("11:00"),
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, errors.IsConflict(err), "unexpected error kind: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.repo.bookings, 1)
}

func TestUpdateBookingPatchesFields(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)

	notes := "patient requested window seat"
	newStart := at("09:00")
	newEnd := at("09:30")
	updated, err := f.svc.UpdateBooking(context.Background(), booking.ID, &model.UpdateBookingRequest{
		Notes:     &notes,
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, f.staffA, updated.StaffID)
}

func TestCancelBookingIsTerminal(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)

	_, err = f.svc.CancelBooking(context.Background(), booking.ID)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestCancelledSlotBecomesBookableAgain(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)

	_, err = f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(context.Background(), &model.CreateBookingRequest{
		ClinicID:  f.clinicID,
		StaffID:   &f.staffA,
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	require.NoError(t, err)
}
