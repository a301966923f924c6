package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookingdesk/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (owner_id, email, notes, start_at, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		b.OwnerID, b.Email, b.Notes, b.StartAt, b.DurationMinutes, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, owner_id, email, notes, start_at, duration_minutes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	b := &domain.Booking{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.OwnerID, &b.Email, &b.Notes, &b.StartAt, &b.DurationMinutes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListAll(ctx context.Context) ([]*domain.Booking, error) {
	query := `
		SELECT id, owner_id, email, notes, start_at, duration_minutes, created_at, updated_at
		FROM bookings
		ORDER BY updated_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) ListVisibleToUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `
		SELECT b.id, b.owner_id, b.email, b.notes, b.start_at, b.duration_minutes, b.created_at, b.updated_at
		FROM bookings b
		WHERE b.owner_id = $1
		   OR EXISTS (
			SELECT 1 FROM invitations i
			WHERE i.booking_id = b.id AND i.user_id = $1
		   )
		ORDER BY b.updated_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b := &domain.Booking{}
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Email, &b.Notes, &b.StartAt, &b.DurationMinutes, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Delete removes the booking's invitation rows and then the booking itself in
// a single transaction. Nothing relies on ON DELETE CASCADE.
func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete booking: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invitations WHERE booking_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
