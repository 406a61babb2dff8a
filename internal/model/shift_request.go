package model

import (
	"time"

	"github.com/google/uuid"
)

type ShiftRequestStatus string

const (
	ShiftRequestStatusPending  ShiftRequestStatus = "pending"
	ShiftRequestStatusApproved ShiftRequestStatus = "approved"
	ShiftRequestStatusRejected ShiftRequestStatus = "rejected"
)

// ShiftRequest is a staff-submitted proposal to change their shift on one
// date. Approval upserts the shift; decided requests are terminal.
type ShiftRequest struct {
	Base
	ClinicID  uuid.UUID          `db:"clinic_id" json:"clinic_id"`
	StaffID   uuid.UUID          `db:"staff_id" json:"staff_id"`
	Date      string             `db:"date" json:"date"`
	StartTime string             `db:"start_time" json:"start_time"`
	EndTime   string             `db:"end_time" json:"end_time"`
	IsHoliday bool               `db:"is_holiday" json:"is_holiday"`
	Status    ShiftRequestStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

type CreateShiftRequestRequest struct {
	StaffID   uuid.UUID `json:"staff_id" validate:"required"`
	Date      string    `json:"date" validate:"required"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsHoliday bool      `json:"is_holiday"`
}

type BulkApproveRequest struct {
	RequestIDs []uuid.UUID `json:"request_ids" validate:"required,min=1"`
}
