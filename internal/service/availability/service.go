package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/internal/repository"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/logger"
	"github.com/reservly/booking-api/pkg/metrics"
)

// Service resolves whether staff members can be booked for a time window.
// All reads; the booking service owns the writes.
type Service struct {
	clinics  repository.ClinicRepository
	staff    repository.StaffRepository
	shifts   repository.ShiftRepository
	bookings repository.BookingRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	clinics repository.ClinicRepository,
	staff repository.StaffRepository,
	shifts repository.ShiftRepository,
	bookings repository.BookingRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		clinics:  clinics,
		staff:    staff,
		shifts:   shifts,
		bookings: bookings,
		logger:   log,
		metrics:  m,
	}
}

// CheckStaffAvailability reports whether the staff member can take a booking
// over [start, end). A malformed interval (end not after start) is rejected
// before any lookup. The shift is looked up by the clinic-local calendar
// date of start. No shift, a holiday shift, an interval not fully inside the
// shift, or any overlapping non-cancelled booking all mean unavailable.
// Storage failures propagate; they are never reported as "unavailable".
func (s *Service) CheckStaffAvailability(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, errors.Validation("end time must be after start time")
	}

	began := time.Now()
	available, err := s.checkStaffAvailability(ctx, clinicID, staffID, start, end)
	if s.metrics != nil {
		s.metrics.AvailabilityLatency.Observe(time.Since(began).Seconds())
		result := "unavailable"
		if err != nil {
			result = "error"
		} else if available {
			result = "available"
		}
		s.metrics.AvailabilityChecks.WithLabelValues(result).Inc()
	}
	return available, err
}

func (s *Service) checkStaffAvailability(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	clinic, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return false, err
	}

	loc, err := clinic.TimeLocation()
	if err != nil {
		return false, fmt.Errorf("invalid clinic timezone %q: %w", clinic.Timezone, err)
	}

	date := model.LocalDate(start, loc)

	shift, err := s.shifts.FindByDate(ctx, clinicID, staffID, date)
	if errors.IsNotFound(err) {
		// No published shift means unavailable; default schedule
		// templates only feed the draft editor, never booking decisions.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if shift.IsHoliday {
		return false, nil
	}

	shiftStart, err := model.CombineDateTime(shift.Date, shift.StartTime, loc)
	if err != nil {
		return false, fmt.Errorf("malformed shift %s: %w", shift.ID, err)
	}
	shiftEnd, err := model.CombineDateTime(shift.Date, shift.EndTime, loc)
	if err != nil {
		return false, fmt.Errorf("malformed shift %s: %w", shift.ID, err)
	}

	// Strict containment; partial overlap with the shift is not bookable.
	if start.Before(shiftStart) || end.After(shiftEnd) {
		return false, nil
	}

	overlap, err := s.bookings.HasOverlap(ctx, clinicID, staffID, start, end)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// FindAvailableStaff returns the ids of all staff who can take [start, end),
// in clinic staff-list order. Staff are checked concurrently and a single
// failing check only drops that staff member from the result; one broken
// record must not block booking against the rest of the roster.
func (s *Service) FindAvailableStaff(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]uuid.UUID, error) {
	if !end.After(start) {
		return nil, errors.Validation("end time must be after start time")
	}

	staffList, err := s.staff.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	available := make([]bool, len(staffList))
	var wg sync.WaitGroup
	for i, st := range staffList {
		wg.Add(1)
		go func(i int, staffID uuid.UUID) {
			defer wg.Done()
			ok, err := s.CheckStaffAvailability(ctx, clinicID, staffID, start, end)
			if err != nil {
				s.logger.Error(err, "availability check failed, treating staff as unavailable",
					"clinic_id", clinicID.String(), "staff_id", staffID.String())
				return
			}
			available[i] = ok
		}(i, st.ID)
	}
	wg.Wait()

	ids := make([]uuid.UUID, 0, len(staffList))
	for i, st := range staffList {
		if available[i] {
			ids = append(ids, st.ID)
		}
	}
	return ids, nil
}
