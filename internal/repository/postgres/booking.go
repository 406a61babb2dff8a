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

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(db *sqlx.DB) *bookingRepository {
	return &bookingRepository{NewBaseRepository(db)}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, clinic_id, user_id, staff_id, booked_by, status,
			start_time, end_time, notes, guest_name, guest_phone,
			guest_email, menu_item_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.ClinicID,
		booking.UserID,
		booking.StaffID,
		booking.BookedBy,
		booking.Status,
		booking.StartTime,
		booking.EndTime,
		booking.Notes,
		booking.GuestName,
		booking.GuestPhone,
		booking.GuestEmail,
		booking.MenuItemID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return errors.Store("failed to create booking", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, clinic_id, user_id, staff_id, booked_by, status,
			   start_time, end_time, notes, guest_name, guest_phone,
			   guest_email, menu_item_id, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("booking", err)
	}
	if err != nil {
		return nil, errors.Store("failed to get booking", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET staff_id = $1, status = $2, start_time = $3, end_time = $4,
			notes = $5, guest_name = $6, guest_phone = $7, guest_email = $8,
			menu_item_id = $9, updated_at = $10
		WHERE id = $11
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.StaffID,
		booking.Status,
		booking.StartTime,
		booking.EndTime,
		booking.Notes,
		booking.GuestName,
		booking.GuestPhone,
		booking.GuestEmail,
		booking.MenuItemID,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return errors.Store("failed to update booking", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Store("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `
		SELECT id, clinic_id, user_id, staff_id, booked_by, status,
			   start_time, end_time, notes, guest_name, guest_phone,
			   guest_email, menu_item_id, created_at, updated_at
		FROM bookings
		WHERE clinic_id = $1
	`
	args := []interface{}{filters.ClinicID}
	argCount := 2

	if filters.StaffID != uuid.Nil {
		query += fmt.Sprintf(" AND staff_id = $%d", argCount)
		args = append(args, filters.StaffID)
		argCount++
	}

	if filters.UserID != uuid.Nil {
		query += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, filters.UserID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var bookings []*model.Booking
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, errors.Store("failed to list bookings", err)
	}
	return bookings, nil
}

func (r *bookingRepository) HasOverlap(ctx context.Context, clinicID, staffID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE clinic_id = $1
			AND staff_id = $2
			AND status != 'cancelled'
			AND start_time < $4
			AND end_time > $3
		)
	`
	var hasOverlap bool
	err := r.db.GetContext(ctx, &hasOverlap, query, clinicID, staffID, start, end)
	if err != nil {
		return false, errors.Store("failed to check booking overlap", err)
	}
	return hasOverlap, nil
}
