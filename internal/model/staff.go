package model

import (
	"time"

	"github.com/google/uuid"
)

type Staff struct {
	Base
	ClinicID        uuid.UUID    `db:"clinic_id" json:"clinic_id"`
	Name            string       `db:"name" json:"name"`
	Role            string       `db:"role" json:"role"`
	ImageURL        string       `db:"image_url" json:"image_url,omitempty"`
	DefaultSchedule WeekSchedule `db:"default_schedule" json:"default_schedule"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

type CreateStaffRequest struct {
	Name            string       `json:"name" validate:"required,max=200"`
	Role            string       `json:"role" validate:"max=100"`
	ImageURL        string       `json:"image_url" validate:"omitempty,url"`
	DefaultSchedule WeekSchedule `json:"default_schedule"`
}

type UpdateStaffRequest struct {
	Name            *string       `json:"name"`
	Role            *string       `json:"role"`
	ImageURL        *string       `json:"image_url"`
	DefaultSchedule *WeekSchedule `json:"default_schedule"`
}
