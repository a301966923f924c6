package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bookingdesk/internal/domain"
)

// memStore is a shared in-memory backing store for the fake repositories so
// that invitation writes can bump the parent booking's updated_at the same
// way the SQL transactions do.
type memStore struct {
	bookings    map[string]*domain.Booking
	invitations map[string]map[string]time.Time // bookingID -> userID -> created_at
	users       map[string]*domain.User
	seq         int
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		bookings:    make(map[string]*domain.Booking),
		invitations: make(map[string]map[string]time.Time),
		users:       make(map[string]*domain.User),
		clock:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick advances the store clock so consecutive writes get distinct timestamps.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addUser(id, email, name string) *domain.User {
	u := &domain.User{ID: id, Email: email, Name: name, CreatedAt: s.clock, UpdatedAt: s.clock}
	s.users[id] = u
	return u
}

type memBookingRepo struct {
	store *memStore
}

func (r *memBookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.store.seq++
	b.ID = fmt.Sprintf("bk-%d", r.store.seq)
	clone := *b
	// Stamp with the store clock so updated_at ordering is deterministic.
	clone.CreatedAt = r.store.tick()
	clone.UpdatedAt = clone.CreatedAt
	r.store.bookings[b.ID] = &clone
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *b
	clone.Owner = nil
	clone.Invitations = nil
	return &clone, nil
}

func (r *memBookingRepo) ListAll(_ context.Context) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0, len(r.store.bookings))
	for _, b := range r.store.bookings {
		clone := *b
		out = append(out, &clone)
	}
	sortByUpdatedAtDesc(out)
	return out, nil
}

func (r *memBookingRepo) ListVisibleToUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for id, b := range r.store.bookings {
		if b.OwnerID == userID {
			clone := *b
			out = append(out, &clone)
			continue
		}
		if _, ok := r.store.invitations[id][userID]; ok {
			clone := *b
			out = append(out, &clone)
		}
	}
	sortByUpdatedAtDesc(out)
	return out, nil
}

func (r *memBookingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.bookings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.invitations, id)
	delete(r.store.bookings, id)
	return nil
}

func sortByUpdatedAtDesc(bookings []*domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].UpdatedAt.After(bookings[j].UpdatedAt)
	})
}

type memInvitationRepo struct {
	store *memStore
}

func (r *memInvitationRepo) InsertIfAbsent(_ context.Context, bookingID, userID string) (bool, error) {
	if _, ok := r.store.bookings[bookingID]; !ok {
		return false, domain.ErrNotFound
	}
	if _, ok := r.store.users[userID]; !ok {
		return false, domain.ErrUserNotFound
	}
	set, ok := r.store.invitations[bookingID]
	if !ok {
		set = make(map[string]time.Time)
		r.store.invitations[bookingID] = set
	}
	_, exists := set[userID]
	if !exists {
		set[userID] = r.store.clock
	}
	r.store.bookings[bookingID].UpdatedAt = r.store.tick()
	return !exists, nil
}

func (r *memInvitationRepo) Remove(_ context.Context, bookingID, userID string) error {
	set := r.store.invitations[bookingID]
	if _, ok := set[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(set, userID)
	if b, ok := r.store.bookings[bookingID]; ok {
		b.UpdatedAt = r.store.tick()
	}
	return nil
}

func (r *memInvitationRepo) ListByBookingID(_ context.Context, bookingID string) ([]*domain.Invitation, error) {
	set := r.store.invitations[bookingID]
	out := make([]*domain.Invitation, 0, len(set))
	for userID, createdAt := range set {
		inv := &domain.Invitation{BookingID: bookingID, UserID: userID, CreatedAt: createdAt}
		if u, ok := r.store.users[userID]; ok {
			clone := *u
			inv.User = &clone
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.store.seq++
	u.ID = fmt.Sprintf("user-%d", r.store.seq)
	clone := *u
	r.store.users[u.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) List(_ context.Context, search string, params domain.PaginationParams) ([]*domain.User, int, error) {
	matched := make([]*domain.User, 0)
	for _, u := range r.store.users {
		if search == "" ||
			strings.Contains(strings.ToLower(u.Email), strings.ToLower(search)) ||
			strings.Contains(strings.ToLower(u.Name), strings.ToLower(search)) {
			clone := *u
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Email < matched[j].Email })
	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// fakeEmailService records sent invitations and can be made to fail.
type fakeEmailService struct {
	sent []*domain.InvitationEmailData
	err  error
}

func (f *fakeEmailService) SendBookingInvitation(_ context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
