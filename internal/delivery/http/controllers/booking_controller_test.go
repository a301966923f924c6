package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookingdesk/internal/delivery/http/helpers"
	"bookingdesk/internal/delivery/http/middleware"
	"bookingdesk/internal/domain"

	"github.com/stretchr/testify/require"
)

type stubBookingService struct {
	createFn       func(ctx context.Context, requestingUserID, email, notes string, startAt time.Time, durationMinutes int) (*domain.Booking, error)
	getFn          func(ctx context.Context, requestingUserID, bookingID string) (*domain.Booking, error)
	listFn         func(ctx context.Context, requestingUserID string) ([]*domain.Booking, error)
	deleteFn       func(ctx context.Context, requestingUserID, bookingID string) error
	updateInviteFn func(ctx context.Context, requestingUserID, bookingID, inviteUserID string, add bool) (*domain.Booking, error)
}

func (s *stubBookingService) CreateBooking(ctx context.Context, requestingUserID, email, notes string, startAt time.Time, durationMinutes int) (*domain.Booking, error) {
	return s.createFn(ctx, requestingUserID, email, notes, startAt, durationMinutes)
}

func (s *stubBookingService) GetBooking(ctx context.Context, requestingUserID, bookingID string) (*domain.Booking, error) {
	return s.getFn(ctx, requestingUserID, bookingID)
}

func (s *stubBookingService) ListBookings(ctx context.Context, requestingUserID string) ([]*domain.Booking, error) {
	return s.listFn(ctx, requestingUserID)
}

func (s *stubBookingService) DeleteBooking(ctx context.Context, requestingUserID, bookingID string) error {
	return s.deleteFn(ctx, requestingUserID, bookingID)
}

func (s *stubBookingService) UpdateInvite(ctx context.Context, requestingUserID, bookingID, inviteUserID string, add bool) (*domain.Booking, error) {
	return s.updateInviteFn(ctx, requestingUserID, bookingID, inviteUserID, add)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedRequest(method, target, body, userID string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if userID != "" {
		r = r.WithContext(middleware.SetUserID(r.Context(), userID))
	}
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestBookingController_CreateBooking(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     string
		service    *stubBookingService
		wantStatus int
		wantCode   string
	}{
		{
			name:   "created",
			body:   `{"email":"client@x.com","notes":"","start_at":"2025-04-01T09:00:00Z","duration_minutes":30}`,
			userID: "user-1",
			service: &stubBookingService{
				createFn: func(_ context.Context, userID, email, notes string, startAt time.Time, durationMinutes int) (*domain.Booking, error) {
					return &domain.Booking{ID: "bk-1", OwnerID: userID, Email: email, StartAt: startAt, DurationMinutes: durationMinutes}, nil
				},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing email",
			body:       `{"start_at":"2025-04-01T09:00:00Z","duration_minutes":30}`,
			userID:     "user-1",
			service:    &stubBookingService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "zero duration",
			body:       `{"email":"client@x.com","start_at":"2025-04-01T09:00:00Z","duration_minutes":0}`,
			userID:     "user-1",
			service:    &stubBookingService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"email":"client@x.com","start_at":"2025-04-01T09:00:00Z","duration_minutes":30,"owner_id":"user-9"}`,
			userID:     "user-1",
			service:    &stubBookingService{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "no authenticated user",
			body:       `{"email":"client@x.com","start_at":"2025-04-01T09:00:00Z","duration_minutes":30}`,
			userID:     "",
			service:    &stubBookingService{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewBookingController(testLogger(), tt.service)
			w := httptest.NewRecorder()
			ctrl.CreateBooking(w, authedRequest(http.MethodPost, "/bookings", tt.body, tt.userID))

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				require.Equal(t, tt.wantCode, resp.Error.Code)
			} else {
				require.Nil(t, resp.Error)
				require.NotNil(t, resp.Data)
			}
		})
	}
}

func TestBookingController_GetBooking(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "found", wantStatus: http.StatusOK},
		{name: "out of scope", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "service failure", serviceErr: context.DeadlineExceeded, wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBookingService{
				getFn: func(_ context.Context, userID, bookingID string) (*domain.Booking, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &domain.Booking{ID: bookingID, OwnerID: userID}, nil
				},
			}
			ctrl := NewBookingController(testLogger(), svc)

			r := authedRequest(http.MethodGet, "/bookings/bk-1", "", "user-1")
			r.SetPathValue("bookingID", "bk-1")
			w := httptest.NewRecorder()
			ctrl.GetBooking(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				require.Equal(t, tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestBookingController_ListBookings(t *testing.T) {
	svc := &stubBookingService{
		listFn: func(_ context.Context, userID string) ([]*domain.Booking, error) {
			return []*domain.Booking{{ID: "bk-1", OwnerID: userID}}, nil
		},
	}
	ctrl := NewBookingController(testLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.ListBookings(w, authedRequest(http.MethodGet, "/bookings", "", "user-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data  []*domain.Booking `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Nil(t, resp.Error)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "bk-1", resp.Data[0].ID)
}

func TestBookingController_DeleteBooking(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "deleted", wantStatus: http.StatusNoContent},
		{name: "not owner", serviceErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "already gone", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBookingService{
				deleteFn: func(_ context.Context, _, _ string) error { return tt.serviceErr },
			}
			ctrl := NewBookingController(testLogger(), svc)

			r := authedRequest(http.MethodDelete, "/bookings/bk-1", "", "user-1")
			r.SetPathValue("bookingID", "bk-1")
			w := httptest.NewRecorder()
			ctrl.DeleteBooking(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestBookingController_UpdateInvite(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invited",
			body:       `{"user_id":"user-2","add":true}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "withdrawn",
			body:       `{"user_id":"user-2","add":false}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing user_id",
			body:       `{"add":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "booking or invitation not found",
			body:       `{"user_id":"user-2","add":false}`,
			serviceErr: domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "invited user does not exist",
			body:       `{"user_id":"user-ghost","add":true}`,
			serviceErr: domain.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   helpers.ErrCodeNotFound,
		},
		{
			name:       "not owner",
			body:       `{"user_id":"user-2","add":true}`,
			serviceErr: domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
			wantCode:   helpers.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubBookingService{
				updateInviteFn: func(_ context.Context, userID, bookingID, inviteUserID string, add bool) (*domain.Booking, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					b := &domain.Booking{ID: bookingID, OwnerID: userID, Invitations: []*domain.Invitation{}}
					if add {
						b.Invitations = append(b.Invitations, &domain.Invitation{BookingID: bookingID, UserID: inviteUserID})
					}
					return b, nil
				},
			}
			ctrl := NewBookingController(testLogger(), svc)

			r := authedRequest(http.MethodPut, "/bookings/bk-1/invites", tt.body, "user-1")
			r.SetPathValue("bookingID", "bk-1")
			w := httptest.NewRecorder()
			ctrl.UpdateInvite(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				require.Equal(t, tt.wantCode, resp.Error.Code)
			} else {
				require.Nil(t, resp.Error)
			}
		})
	}
}
