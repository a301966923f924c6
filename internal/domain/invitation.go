package domain

import (
	"context"
	"time"
)

// Invitation is a membership fact linking one user to one booking. The
// (BookingID, UserID) pair is its identity; at most one row exists per pair.
// swagger:model Invitation
type Invitation struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// InvitationRepository defines storage operations for the invitation set of a
// booking. Both mutations are atomic on the (booking_id, user_id) composite
// key and bump the parent booking's updated_at in the same transaction.
type InvitationRepository interface {
	// InsertIfAbsent creates the invitation row unless it already exists, in
	// which case the existing row is left untouched and no error is returned.
	// created reports whether a new row was written.
	InsertIfAbsent(ctx context.Context, bookingID, userID string) (created bool, err error)
	// Remove deletes the invitation row. Returns ErrNotFound when no row
	// matches the pair.
	Remove(ctx context.Context, bookingID, userID string) error
	// ListByBookingID returns the booking's invitations with each invited
	// user expanded, ordered by user id.
	ListByBookingID(ctx context.Context, bookingID string) ([]*Invitation, error)
}
