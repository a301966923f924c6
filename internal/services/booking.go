package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookingdesk/internal/domain"
)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	policy         domain.BookingAccessPolicy
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewBookingService(bookingRepo domain.BookingRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	policy domain.BookingAccessPolicy,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		policy:         policy,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, requestingUserID, email, notes string, startAt time.Time, durationMinutes int) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if requestingUserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if durationMinutes <= 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	booking := domain.NewBooking(requestingUserID, email, notes, startAt, durationMinutes, now, now)
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking.Invitations = []*domain.Invitation{}
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, requestingUserID, bookingID string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// A booking outside the requester's scope does not resolve at all.
	if !s.policy.CanView(requestingUserID, booking) {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, requestingUserID string) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var (
		bookings []*domain.Booking
		err      error
	)
	if s.policy.ScopesListToUser() {
		bookings, err = s.bookingRepo.ListVisibleToUser(ctx, requestingUserID)
	} else {
		bookings, err = s.bookingRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) DeleteBooking(ctx context.Context, requestingUserID, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get booking: %w", err)
	}
	if !s.policy.CanMutate(requestingUserID, booking) {
		return domain.ErrForbidden
	}
	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}

func (s *bookingService) UpdateInvite(ctx context.Context, requestingUserID, bookingID, inviteUserID string, add bool) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if inviteUserID == "" {
		return nil, domain.ErrInvalidInput
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if !s.policy.CanMutate(requestingUserID, booking) {
		return nil, domain.ErrForbidden
	}

	if add {
		invited, err := s.userRepo.GetByID(ctx, inviteUserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, fmt.Errorf("get invited user: %w", err)
		}
		created, err := s.invitationRepo.InsertIfAbsent(ctx, bookingID, inviteUserID)
		if err != nil {
			return nil, fmt.Errorf("add invitation: %w", err)
		}
		if created {
			s.notifyInvitedUser(ctx, booking, invited)
		}
	} else {
		if err := s.invitationRepo.Remove(ctx, bookingID, inviteUserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("remove invitation: %w", err)
		}
	}

	return s.loadBooking(ctx, bookingID)
}

// loadBooking returns the booking with its owner and invitation list expanded.
func (s *bookingService) loadBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	invitations, err := s.invitationRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if invitations == nil {
		invitations = []*domain.Invitation{}
	}
	booking.Invitations = invitations

	owner, err := s.userRepo.GetByID(ctx, booking.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get booking owner: %w", err)
	}
	booking.Owner = owner
	return booking, nil
}

// notifyInvitedUser sends the invitation email. A mail failure never fails
// the toggle; the invitation row is already committed.
func (s *bookingService) notifyInvitedUser(ctx context.Context, booking *domain.Booking, invited *domain.User) {
	if s.emailService == nil {
		return
	}
	owner, err := s.userRepo.GetByID(ctx, booking.OwnerID)
	ownerName := "The booking owner"
	if err == nil && owner != nil {
		if owner.Name != "" {
			ownerName = owner.Name
		} else if owner.Email != "" {
			ownerName = owner.Email
		}
	}
	data := &domain.InvitationEmailData{
		Email:           invited.Email,
		OwnerName:       ownerName,
		BookingEmail:    booking.Email,
		StartAt:         booking.StartAt.Format(time.RFC1123),
		DurationMinutes: booking.DurationMinutes,
	}
	if err := s.emailService.SendBookingInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "booking_id", booking.ID, "user_id", invited.ID, "err", err)
	}
}
