package booking

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/email"
	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/internal/repository"
	"github.com/reservly/booking-api/pkg/errors"
	"github.com/reservly/booking-api/pkg/locker"
	"github.com/reservly/booking-api/pkg/logger"
	"github.com/reservly/booking-api/pkg/metrics"
)

const (
	// slotLockTTL bounds how long a crashed caller can hold a slot.
	slotLockTTL = 10 * time.Second

	lockRetries    = 3
	lockRetryDelay = 100 * time.Millisecond
)

// AvailabilityResolver decides whether staff can take a time window.
type AvailabilityResolver interface {
	CheckStaffAvailability(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error)
	FindAvailableStaff(ctx context.Context, clinicID uuid.UUID, start, end time.Time) ([]uuid.UUID, error)
}

// Service validates and persists bookings. Every persisted booking carries a
// concrete staff id; "no preference" requests are resolved before the write.
// The availability check and the insert are guarded by a per-(clinic, staff)
// slot lock so exactly one caller wins a contested slot.
type Service struct {
	bookings repository.BookingRepository
	clinics  repository.ClinicRepository
	resolver AvailabilityResolver
	locks    locker.SlotLocker
	mailer   email.Sender
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	bookings repository.BookingRepository,
	clinics repository.ClinicRepository,
	resolver AvailabilityResolver,
	locks locker.SlotLocker,
	mailer email.Sender,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		bookings: bookings,
		clinics:  clinics,
		resolver: resolver,
		locks:    locks,
		mailer:   mailer,
		logger:   log,
		metrics:  m,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, errors.Validation("end time must be after start time")
	}

	clinic, err := s.clinics.Get(ctx, req.ClinicID)
	if err != nil {
		return nil, err
	}
	if clinic.Status != model.ClinicStatusActive {
		return nil, errors.Conflict("clinic is not accepting bookings")
	}

	var staffID uuid.UUID
	var release func()
	mode := "nominated"

	if req.StaffID != nil {
		staffID = *req.StaffID
		release, err = s.lockAndCheck(ctx, req.ClinicID, staffID, req.StartTime, req.EndTime)
		if err != nil {
			if errors.IsConflict(err) {
				s.countConflict()
			}
			return nil, err
		}
	} else {
		mode = "auto"
		staffID, release, err = s.autoAssign(ctx, req.ClinicID, req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
	}
	defer release()

	booking := &model.Booking{
		Base:       model.Base{ID: uuid.New()},
		ClinicID:   req.ClinicID,
		UserID:     req.UserID,
		StaffID:    staffID,
		BookedBy:   req.BookedBy,
		Status:     req.Status,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		MenuItemID: req.MenuItemID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if booking.Status == "" {
		booking.Status = model.BookingStatusConfirmed
	}
	if booking.BookedBy == "" {
		booking.BookedBy = model.BookedByUser
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.WithLabelValues(mode).Inc()
	}

	if err := s.mailer.SendBookingConfirmation(ctx, booking, clinic.Name); err != nil {
		s.logger.Error(err, "failed to send booking confirmation",
			"booking_id", booking.ID.String())
	}

	return booking, nil
}

// lockAndCheck acquires the slot lock for the staff member and verifies
// availability under it. The returned release function is non-nil only on
// success.
func (s *Service) lockAndCheck(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (func(), error) {
	release, err := s.acquireSlotLock(ctx, clinicID, staffID)
	if err != nil {
		return nil, err
	}

	available, err := s.resolver.CheckStaffAvailability(ctx, clinicID, staffID, start, end)
	if err != nil {
		release()
		return nil, err
	}
	if !available {
		release()
		return nil, errors.Conflict("staff unavailable: no opening or outside working hours")
	}
	return release, nil
}

// autoAssign picks the first staff member that both shows as available and
// can be locked. Candidates are tried in roster order; no load balancing.
func (s *Service) autoAssign(ctx context.Context, clinicID uuid.UUID, start, end time.Time) (uuid.UUID, func(), error) {
	candidates, err := s.resolver.FindAvailableStaff(ctx, clinicID, start, end)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if len(candidates) == 0 {
		s.countNoAvailability()
		return uuid.Nil, nil, errors.NoAvailability("no staff available in this slot")
	}

	for _, candidate := range candidates {
		release, err := s.lockAndCheck(ctx, clinicID, candidate, start, end)
		if err != nil {
			if errors.IsConflict(err) {
				// Lost the race for this candidate; try the next one.
				continue
			}
			return uuid.Nil, nil, err
		}
		return candidate, release, nil
	}

	s.countNoAvailability()
	return uuid.Nil, nil, errors.NoAvailability("no staff available in this slot")
}

func (s *Service) acquireSlotLock(ctx context.Context, clinicID, staffID uuid.UUID) (func(), error) {
	key := fmt.Sprintf("booking:%s:%s", clinicID, staffID)

	for attempt := 0; ; attempt++ {
		release, err := s.locks.Acquire(ctx, key, slotLockTTL)
		if err == nil {
			return release, nil
		}
		if !goerrors.Is(err, locker.ErrLockHeld) {
			return nil, errors.Store("failed to acquire slot lock", err)
		}
		if attempt >= lockRetries {
			return nil, errors.Conflict("slot is being booked by another request")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.bookings.Get(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	if filters == nil || filters.ClinicID == uuid.Nil {
		return nil, errors.Validation("clinic id is required")
	}
	return s.bookings.List(ctx, filters)
}

// UpdateBooking applies a field-level patch. Time and staff changes are not
// re-validated against availability; callers reassigning either must
// re-check themselves.
func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, req *model.UpdateBookingRequest) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StaffID != nil {
		booking.StaffID = *req.StaffID
	}
	if req.Status != nil {
		booking.Status = *req.Status
	}
	if req.StartTime != nil {
		booking.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		booking.EndTime = *req.EndTime
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}
	if req.GuestName != nil {
		booking.GuestName = *req.GuestName
	}
	if req.GuestPhone != nil {
		booking.GuestPhone = *req.GuestPhone
	}
	if req.GuestEmail != nil {
		booking.GuestEmail = *req.GuestEmail
	}
	if req.MenuItemID != nil {
		booking.MenuItemID = req.MenuItemID
	}

	if !booking.EndTime.After(booking.StartTime) {
		return nil, errors.Validation("end time must be after start time")
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.BookingStatusCancelled {
		return nil, errors.Conflict("booking is already cancelled")
	}

	booking.Status = model.BookingStatusCancelled
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	if clinic, cerr := s.clinics.Get(ctx, booking.ClinicID); cerr == nil {
		if err := s.mailer.SendBookingCancellation(ctx, booking, clinic.Name); err != nil {
			s.logger.Error(err, "failed to send cancellation notice",
				"booking_id", booking.ID.String())
		}
	}

	return booking, nil
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.BookingStatusCancelled {
		return nil, errors.Conflict("cannot mark a cancelled booking as no-show")
	}

	booking.Status = model.BookingStatusNoShow
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.BookingConflicts.Inc()
	}
}

func (s *Service) countNoAvailability() {
	if s.metrics != nil {
		s.metrics.NoAvailability.Inc()
	}
}
