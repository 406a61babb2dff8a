package model

import (
	"time"
)

type ClinicStatus string

const (
	ClinicStatusPending   ClinicStatus = "pending"
	ClinicStatusActive    ClinicStatus = "active"
	ClinicStatusSuspended ClinicStatus = "suspended"
)

type Clinic struct {
	Base
	Name          string       `db:"name" json:"name"`
	Location      string       `db:"location" json:"location"`
	Timezone      string       `db:"timezone" json:"timezone"`
	BusinessHours WeekSchedule `db:"business_hours" json:"business_hours"`
	Status        ClinicStatus `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// TimeLocation resolves the clinic's IANA timezone; clinics without one
// run on UTC.
func (c *Clinic) TimeLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

type CreateClinicRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Location string       `json:"location" validate:"max=500"`
	Timezone string       `json:"timezone" validate:"omitempty,timezone"`
	Hours    WeekSchedule `json:"business_hours"`
}

type UpdateClinicRequest struct {
	Name     *string       `json:"name"`
	Location *string       `json:"location"`
	Timezone *string       `json:"timezone"`
	Hours    *WeekSchedule `json:"business_hours"`
	Status   *ClinicStatus `json:"status"`
}

type ClinicFilters struct {
	Status ClinicStatus
	Search string
}
