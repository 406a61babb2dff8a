package model

import (
	"time"

	"github.com/google/uuid"
)

// Shift is the published statement "staff X works date D from start to end",
// or is off that day when IsHoliday is set. At most one shift exists per
// (clinic, staff, date); the repository upsert enforces this.
type Shift struct {
	Base
	ClinicID  uuid.UUID `db:"clinic_id" json:"clinic_id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	Date      string    `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsHoliday bool      `db:"is_holiday" json:"is_holiday"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ShiftDraft is one editable row of a day's shift working set. Entries
// synthesized from a default schedule carry a fresh id and Persisted=false
// until the admin saves the draft.
type ShiftDraft struct {
	Shift
	Persisted bool `json:"persisted"`
}

type SaveShiftDraftRequest struct {
	Date    string       `json:"date" validate:"required"`
	Entries []ShiftEntry `json:"entries" validate:"required,dive"`
}

// ShiftEntry times may be empty only for day-off entries; the service
// enforces that.
type ShiftEntry struct {
	StaffID   uuid.UUID `json:"staff_id" validate:"required"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsHoliday bool      `json:"is_holiday"`
}
