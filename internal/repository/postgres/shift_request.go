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

type shiftRequestRepository struct {
	BaseRepository
}

func NewShiftRequestRepository(db *sqlx.DB) *shiftRequestRepository {
	return &shiftRequestRepository{NewBaseRepository(db)}
}

func (r *shiftRequestRepository) Create(ctx context.Context, req *model.ShiftRequest) error {
	query := `
		INSERT INTO shift_requests (
			id, clinic_id, staff_id, date, start_time, end_time,
			is_holiday, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.ClinicID,
		req.StaffID,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.IsHoliday,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shift request: %w", err)
	}
	return nil
}

func (r *shiftRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.ShiftRequest, error) {
	query := `
		SELECT id, clinic_id, staff_id, date, start_time, end_time,
			   is_holiday, status, created_at, updated_at
		FROM shift_requests
		WHERE id = $1
	`
	var req model.ShiftRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("shift request", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get shift request", err)
	}
	return &req, nil
}

func (r *shiftRequestRepository) List(ctx context.Context, clinicID uuid.UUID, status model.ShiftRequestStatus) ([]*model.ShiftRequest, error) {
	query := `
		SELECT id, clinic_id, staff_id, date, start_time, end_time,
			   is_holiday, status, created_at, updated_at
		FROM shift_requests
		WHERE clinic_id = $1
	`
	args := []interface{}{clinicID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY date ASC, created_at ASC"

	var requests []*model.ShiftRequest
	err := r.db.SelectContext(ctx, &requests, query, args...)
	if err != nil {
		return nil, errors.Store("failed to list shift requests", err)
	}
	return requests, nil
}

// Approve writes the shift and the status flip in one transaction so an
// approved request always manifests as a shift.
func (r *shiftRequestRepository) Approve(ctx context.Context, req *model.ShiftRequest) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		shift := &model.Shift{
			ClinicID:  req.ClinicID,
			StaffID:   req.StaffID,
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			IsHoliday: req.IsHoliday,
		}
		if err := upsertShift(ctx, tx, shift); err != nil {
			return err
		}

		query := `
			UPDATE shift_requests
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`
		result, err := tx.ExecContext(ctx, query,
			model.ShiftRequestStatusApproved,
			time.Now(),
			req.ID,
			model.ShiftRequestStatusPending,
		)
		if err != nil {
			return errors.Store("failed to approve shift request", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return errors.Store("failed to get rows affected", err)
		}
		if rows == 0 {
			return errors.Conflict("shift request already decided")
		}
		return nil
	})
}

func (r *shiftRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ShiftRequestStatus) error {
	query := `
		UPDATE shift_requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id, model.ShiftRequestStatusPending)
	if err != nil {
		return errors.Store("failed to update shift request status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Store("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.Conflict("shift request already decided")
	}
	return nil
}

func (r *shiftRequestRepository) DeleteRange(ctx context.Context, clinicID uuid.UUID, from, to string) (int64, error) {
	query := `
		DELETE FROM shift_requests
		WHERE clinic_id = $1 AND date >= $2 AND date <= $3
	`
	result, err := r.db.ExecContext(ctx, query, clinicID, from, to)
	if err != nil {
		return 0, errors.Store("failed to delete shift requests", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Store("failed to get rows affected", err)
	}
	return rows, nil
}
