package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across booking operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Booking represents a scheduled appointment owned by exactly one user.
// swagger:model Booking
type Booking struct {
	ID              string        `json:"id"`
	OwnerID         string        `json:"owner_id"`
	Email           string        `json:"email"`
	Notes           string        `json:"notes"`
	StartAt         time.Time     `json:"start_at"`
	DurationMinutes int           `json:"duration_minutes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Owner           *User         `json:"owner,omitempty"`
	Invitations     []*Invitation `json:"invitations,omitempty"`
}

// NewBooking returns a new Booking with the given fields. ID is typically set by the repository on create.
func NewBooking(ownerID, email, notes string, startAt time.Time, durationMinutes int, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		OwnerID:         ownerID,
		Email:           email,
		Notes:           notes,
		StartAt:         startAt,
		DurationMinutes: durationMinutes,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

// BookingRepository defines the interface for booking storage.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	// GetByID returns the bare booking row, without owner or invitations.
	GetByID(ctx context.Context, id string) (*Booking, error)
	// ListAll returns every booking ordered by updated_at DESC.
	ListAll(ctx context.Context) ([]*Booking, error)
	// ListVisibleToUser returns bookings the user owns or is invited to,
	// ordered by updated_at DESC.
	ListVisibleToUser(ctx context.Context, userID string) ([]*Booking, error)
	// Delete removes the booking and its invitations in one transaction.
	// Returns ErrNotFound when no booking row matches.
	Delete(ctx context.Context, id string) error
}

// BookingService defines the business logic for bookings and their invitations.
type BookingService interface {
	CreateBooking(ctx context.Context, requestingUserID, email, notes string, startAt time.Time, durationMinutes int) (*Booking, error)
	GetBooking(ctx context.Context, requestingUserID, bookingID string) (*Booking, error)
	ListBookings(ctx context.Context, requestingUserID string) ([]*Booking, error)
	DeleteBooking(ctx context.Context, requestingUserID, bookingID string) error
	// UpdateInvite adds or removes inviteUserID on the booking's invitation set
	// and returns the booking with its invitation list reloaded. Adding an
	// existing invitation is a no-op; removing a missing one is ErrNotFound.
	UpdateInvite(ctx context.Context, requestingUserID, bookingID, inviteUserID string, add bool) (*Booking, error)
}
