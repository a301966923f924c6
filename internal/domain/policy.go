package domain

// BookingAccessPolicy decides what a requesting user may do with a booking.
// The booking service consults it on every read and mutation.
type BookingAccessPolicy interface {
	CanView(userID string, b *Booking) bool
	CanMutate(userID string, b *Booking) bool
	// ScopesListToUser reports whether ListBookings should be restricted to
	// bookings the user owns or is invited to. When false, every booking is
	// visible in lists.
	ScopesListToUser() bool
}

// OwnerInviteePolicy grants view access to the owner and invited users, and
// mutation access to the owner only.
type OwnerInviteePolicy struct{}

func (OwnerInviteePolicy) CanView(userID string, b *Booking) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, inv := range b.Invitations {
		if inv.UserID == userID {
			return true
		}
	}
	return false
}

func (OwnerInviteePolicy) CanMutate(userID string, b *Booking) bool {
	return b.OwnerID == userID
}

func (OwnerInviteePolicy) ScopesListToUser() bool { return true }

// SharedCalendarPolicy lets every authenticated user view any booking while
// reserving mutations for the owner.
type SharedCalendarPolicy struct{}

func (SharedCalendarPolicy) CanView(userID string, b *Booking) bool {
	return userID != ""
}

func (SharedCalendarPolicy) CanMutate(userID string, b *Booking) bool {
	return b.OwnerID == userID
}

func (SharedCalendarPolicy) ScopesListToUser() bool { return false }
