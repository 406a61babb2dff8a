package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/reservly/booking-api/internal/model"
	"github.com/reservly/booking-api/pkg/errors"
)

type shiftRepository struct {
	BaseRepository
}

func NewShiftRepository(db *sqlx.DB) *shiftRepository {
	return &shiftRepository{NewBaseRepository(db)}
}

func (r *shiftRepository) Get(ctx context.Context, clinicID, id uuid.UUID) (*model.Shift, error) {
	query := `
		SELECT id, clinic_id, staff_id, date, start_time, end_time,
			   is_holiday, created_at, updated_at
		FROM shifts
		WHERE clinic_id = $1 AND id = $2
	`
	var shift model.Shift
	err := r.db.GetContext(ctx, &shift, query, clinicID, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("shift", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get shift", err)
	}
	return &shift, nil
}

func (r *shiftRepository) FindByDate(ctx context.Context, clinicID, staffID uuid.UUID, date string) (*model.Shift, error) {
	return findShiftByDate(ctx, r.db, clinicID, staffID, date)
}

func (r *shiftRepository) ListByDate(ctx context.Context, clinicID uuid.UUID, date string) ([]*model.Shift, error) {
	query := `
		SELECT id, clinic_id, staff_id, date, start_time, end_time,
			   is_holiday, created_at, updated_at
		FROM shifts
		WHERE clinic_id = $1 AND date = $2
		ORDER BY start_time ASC
	`
	var shifts []*model.Shift
	err := r.db.SelectContext(ctx, &shifts, query, clinicID, date)
	if err != nil {
		return nil, errors.Store("failed to list shifts", err)
	}
	return shifts, nil
}

func (r *shiftRepository) Upsert(ctx context.Context, shift *model.Shift) error {
	return upsertShift(ctx, r.db, shift)
}

func (r *shiftRepository) DeleteRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error) {
	query := `
		DELETE FROM shifts
		WHERE clinic_id = $1 AND date >= $2 AND date <= $3
	`
	result, err := r.db.ExecContext(ctx, query, clinicID, from, to)
	if err != nil {
		return 0, errors.Store("failed to delete shifts", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Store("failed to get rows affected", err)
	}
	return rows, nil
}

func findShiftByDate(ctx context.Context, ext sqlx.ExtContext, clinicID, staffID uuid.UUID, date string) (*model.Shift, error) {
	query := `
		SELECT id, clinic_id, staff_id, date, start_time, end_time,
			   is_holiday, created_at, updated_at
		FROM shifts
		WHERE clinic_id = $1 AND staff_id = $2 AND date = $3
	`
	var shift model.Shift
	err := sqlx.GetContext(ctx, ext, &shift, query, clinicID, staffID, date)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("shift", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get shift", err)
	}
	return &shift, nil
}

// upsertShift is lookup-then-update-or-insert keyed by (clinic, staff, date);
// shared with the shift-request approval transaction.
func upsertShift(ctx context.Context, ext sqlx.ExtContext, shift *model.Shift) error {
	existing, err := findShiftByDate(ctx, ext, shift.ClinicID, shift.StaffID, shift.Date)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}

	now := time.Now()
	if existing != nil {
		query := `
			UPDATE shifts
			SET start_time = $1, end_time = $2, is_holiday = $3, updated_at = $4
			WHERE id = $5
		`
		shift.ID = existing.ID
		shift.UpdatedAt = now
		if _, err := ext.ExecContext(ctx, query,
			shift.StartTime, shift.EndTime, shift.IsHoliday, shift.UpdatedAt, existing.ID,
		); err != nil {
			return errors.Store("failed to update shift", err)
		}
		return nil
	}

	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	shift.CreatedAt = now
	shift.UpdatedAt = now

	query := `
		INSERT INTO shifts (
			id, clinic_id, staff_id, date, start_time, end_time,
			is_holiday, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := ext.ExecContext(ctx, query,
		shift.ID,
		shift.ClinicID,
		shift.StaffID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.IsHoliday,
		shift.CreatedAt,
		shift.UpdatedAt,
	); err != nil {
		return errors.Store("failed to insert shift", err)
	}
	return nil
}
