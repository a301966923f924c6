package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"bookingdesk/internal/delivery/http/controllers"
	"bookingdesk/internal/delivery/http/middleware"
	"bookingdesk/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	bookingController *controllers.BookingController,
	userController *controllers.UserController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Bookings
	mux.HandleFunc("POST /bookings", auth(bookingController.CreateBooking))
	mux.HandleFunc("GET /bookings", auth(bookingController.ListBookings))
	mux.HandleFunc("GET /bookings/{bookingID}", auth(bookingController.GetBooking))
	mux.HandleFunc("DELETE /bookings/{bookingID}", auth(bookingController.DeleteBooking))
	mux.HandleFunc("PUT /bookings/{bookingID}/invites", auth(bookingController.UpdateInvite))

	// Users
	mux.HandleFunc("GET /users", auth(userController.ListUsers))
	mux.HandleFunc("GET /users/me", auth(userController.Me))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
