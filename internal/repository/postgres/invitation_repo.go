package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"bookingdesk/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

// InsertIfAbsent creates the (bookingID, userID) invitation unless it already
// exists. The UNIQUE constraint on the pair resolves concurrent identical
// adds to exactly one surviving row. The parent booking's updated_at is
// bumped in the same transaction so list ordering reflects the change.
func (r *invitationRepository) InsertIfAbsent(ctx context.Context, bookingID, userID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin add invitation: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO invitations (booking_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (booking_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, insert, bookingID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if strings.Contains(pqErr.Constraint, "user") {
				return false, domain.ErrUserNotFound
			}
			return false, domain.ErrNotFound
		}
		return false, err
	}
	inserted, _ := result.RowsAffected()
	if err := touchBooking(ctx, tx, bookingID); err != nil {
		return false, err
	}
	return inserted > 0, tx.Commit()
}

// Remove deletes the (bookingID, userID) invitation. Deleting a missing row
// is ErrNotFound, not a no-op.
func (r *invitationRepository) Remove(ctx context.Context, bookingID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove invitation: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE booking_id = $1 AND user_id = $2`,
		bookingID, userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	if err := touchBooking(ctx, tx, bookingID); err != nil {
		return err
	}
	return tx.Commit()
}

func touchBooking(ctx context.Context, tx *sql.Tx, bookingID string) error {
	result, err := tx.ExecContext(ctx, `UPDATE bookings SET updated_at = NOW() WHERE id = $1`, bookingID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*domain.Invitation, error) {
	query := `
		SELECT i.booking_id, i.user_id, i.created_at, u.email, u.name
		FROM invitations i
		JOIN users u ON u.id = i.user_id
		WHERE i.booking_id = $1
		ORDER BY i.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv := &domain.Invitation{User: &domain.User{}}
		var name sql.NullString
		if err := rows.Scan(&inv.BookingID, &inv.UserID, &inv.CreatedAt, &inv.User.Email, &name); err != nil {
			return nil, err
		}
		inv.User.ID = inv.UserID
		inv.User.Name = name.String
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}
