package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/pkg/errors"
)

type clinicRepository struct {
	BaseRepository
}

func NewClinicRepository(db *sqlx.DB) *clinicRepository {
	return &clinicRepository{NewBaseRepository(db)}
}

func (r *clinicRepository) Create(ctx context.Context, clinic *model.Clinic) error {
	query := `
		INSERT INTO clinics (
			id, name, location, timezone, business_hours, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		clinic.ID,
		clinic.Name,
		clinic.Location,
		clinic.Timezone,
		clinic.BusinessHours,
		clinic.Status,
		clinic.CreatedAt,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinic: %w", err)
	}
	return nil
}

func (r *clinicRepository) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	query := `
		SELECT id, name, location, timezone, business_hours, status,
			   created_at, updated_at
		FROM clinics
		WHERE id = $1
	`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("clinic", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get clinic", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinics
		SET name = $1, location = $2, timezone = $3, business_hours = $4,
			status = $5, updated_at = $6
		WHERE id = $7
	`
	clinic.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.Location,
		clinic.Timezone,
		clinic.BusinessHours,
		clinic.Status,
		clinic.UpdatedAt,
		clinic.ID,
	)
	if err != nil {
		return errors.Store("failed to update clinic", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Store("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NotFound("clinic", nil)
	}
	return nil
}

func (r *clinicRepository) List(ctx context.Context, filters *model.ClinicFilters) ([]*model.Clinic, error) {
	query := `
		SELECT id, name, location, timezone, business_hours, status,
			   created_at, updated_at
		FROM clinics
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters != nil && filters.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argCount)
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var clinics []*model.Clinic
	err := r.db.SelectContext(ctx, &clinics, query, args...)
	if err != nil {
		return nil, errors.Store("failed to list clinics", err)
	}
	return clinics, nil
}
