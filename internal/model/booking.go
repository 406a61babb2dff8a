package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

type BookedBy string

const (
	BookedByUser  BookedBy = "user"
	BookedByProxy BookedBy = "proxy"
)

// Booking is a persisted appointment. StaffID is always concrete: requests
// with no staff preference are resolved before the write.
type Booking struct {
	Base
	ClinicID   uuid.UUID     `db:"clinic_id" json:"clinic_id"`
	UserID     *uuid.UUID    `db:"user_id" json:"user_id,omitempty"`
	StaffID    uuid.UUID     `db:"staff_id" json:"staff_id"`
	BookedBy   BookedBy      `db:"booked_by" json:"booked_by"`
	Status     BookingStatus `db:"status" json:"status"`
	StartTime  time.Time     `db:"start_time" json:"start_time"`
	EndTime    time.Time     `db:"end_time" json:"end_time"`
	Notes      string        `db:"notes" json:"notes,omitempty"`
	GuestName  string        `db:"guest_name" json:"guest_name,omitempty"`
	GuestPhone string        `db:"guest_phone" json:"guest_phone,omitempty"`
	GuestEmail string        `db:"guest_email" json:"guest_email,omitempty"`
	MenuItemID *uuid.UUID    `db:"menu_item_id" json:"menu_item_id,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// CreateBookingRequest nominates a staff member when StaffID is set;
// otherwise the service auto-assigns one.
type CreateBookingRequest struct {
	ClinicID   uuid.UUID     `json:"clinic_id" validate:"required"`
	StaffID    *uuid.UUID    `json:"staff_id"`
	UserID     *uuid.UUID    `json:"user_id"`
	BookedBy   BookedBy      `json:"booked_by" validate:"omitempty,oneof=user proxy"`
	Status     BookingStatus `json:"status" validate:"omitempty,oneof=confirmed pending"`
	StartTime  time.Time     `json:"start_time" validate:"required"`
	EndTime    time.Time     `json:"end_time" validate:"required"`
	Notes      string        `json:"notes" validate:"max=1000"`
	GuestName  string        `json:"guest_name" validate:"max=200"`
	GuestPhone string        `json:"guest_phone" validate:"max=50"`
	GuestEmail string        `json:"guest_email" validate:"omitempty,email"`
	MenuItemID *uuid.UUID    `json:"menu_item_id"`
}

// UpdateBookingRequest is a field-level patch. Time and staff changes are
// not re-validated against availability; callers reassigning either must
// re-check themselves.
type UpdateBookingRequest struct {
	StaffID    *uuid.UUID     `json:"staff_id"`
	Status     *BookingStatus `json:"status" validate:"omitempty,oneof=confirmed pending cancelled no_show"`
	StartTime  *time.Time     `json:"start_time"`
	EndTime    *time.Time     `json:"end_time"`
	Notes      *string        `json:"notes"`
	GuestName  *string        `json:"guest_name"`
	GuestPhone *string        `json:"guest_phone"`
	GuestEmail *string        `json:"guest_email"`
	MenuItemID *uuid.UUID     `json:"menu_item_id"`
}

type BookingFilters struct {
	ClinicID  uuid.UUID
	StaffID   uuid.UUID
	UserID    uuid.UUID
	Status    BookingStatus
	StartDate time.Time
	EndDate   time.Time
}
