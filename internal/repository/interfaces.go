package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reservly/booking-api/internal/model"
)

// All repository interfaces in one file. Every query is scoped by clinic id;
// the shared tables serve all tenants. Lookups that find nothing return a
// typed NotFound error so callers can tell "no row" from a failed query.
type (
	ClinicRepository interface {
		Create(ctx context.Context, clinic *model.Clinic) error
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
		List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, clinicID, id uuid.UUID) error
		ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error)
	}

	ShiftRepository interface {
		Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Shift, error)
		// FindByDate returns the single shift for (clinic, staff, date),
		// or NotFound.
		FindByDate(ctx context.Context, clinicID, staffID uuid.UUID, date string) (*model.Shift, error)
		ListByDate(ctx context.Context, clinicID uuid.UUID, date string) ([]*model.Shift, error)
		// Upsert keeps the one-shift-per-(clinic, staff, date) invariant
		// via lookup-then-update-or-insert.
		Upsert(ctx context.Context, shift *model.Shift) error
		DeleteRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error)
	}

	ShiftRequestRepository interface {
		Create(ctx context.Context, req *model.ShiftRequest) error
		Get(ctx context.Context, id uuid.UUID) (*model.ShiftRequest, error)
		List(ctx context.Context, clinicID uuid.UUID, status model.ShiftRequestStatus) ([]*model.ShiftRequest, error)
		// Approve upserts the shift and flips the request to approved in
		// one transaction.
		Approve(ctx context.Context, req *model.ShiftRequest) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.ShiftRequestStatus) error
		DeleteRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error)
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		// HasOverlap reports whether any non-cancelled booking for the
		// staff member overlaps [start, end).
		HasOverlap(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error)
	}
)
