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

type staffRepository struct {
	BaseRepository
}

func NewStaffRepository(db *sqlx.DB) *staffRepository {
	return &staffRepository{NewBaseRepository(db)}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, clinic_id, name, role, image_url, default_schedule,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.ClinicID,
		staff.Name,
		staff.Role,
		staff.ImageURL,
		staff.DefaultSchedule,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, clinic_id, name, role, image_url, default_schedule,
			   created_at, updated_at
		FROM staff
		WHERE clinic_id = $1 AND id = $2
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, clinicID, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get staff", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, role = $2, image_url = $3, default_schedule = $4,
			updated_at = $5
		WHERE clinic_id = $6 AND id = $7
	`
	staff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		staff.Name,
		staff.Role,
		staff.ImageURL,
		staff.DefaultSchedule,
		staff.UpdatedAt,
		staff.ClinicID,
		staff.ID,
	)
	if err != nil {
		return errors.Store("failed to update staff", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Store("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, clinicID, id uuid.UUID) error {
	query := `DELETE FROM staff WHERE clinic_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, clinicID, id)
	if err != nil {
		return errors.Store("failed to delete staff", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Store("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, clinic_id, name, role, image_url, default_schedule,
			   created_at, updated_at
		FROM staff
		WHERE clinic_id = $1
		ORDER BY created_at ASC
	`
	var staff []*model.Staff
	err := r.db.SelectContext(ctx, &staff, query, clinicID)
	if err != nil {
		return nil, errors.Store("failed to list staff", err)
	}
	return staff, nil
}
