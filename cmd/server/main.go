package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	"bookingdesk/config"
	"bookingdesk/internal/adapters/auth"
	"bookingdesk/internal/adapters/email"
	delivery "bookingdesk/internal/delivery/http"
	"bookingdesk/internal/delivery/http/controllers"
	"bookingdesk/internal/delivery/http/middleware"
	"bookingdesk/internal/domain"
	"bookingdesk/internal/repository/postgres"
	"bookingdesk/internal/services"
)

// @title           Bookingdesk API
// @version         1.0
// @description     Booking management API: bookings, invitations, and users.

// @BasePath  /

// @securityDefinitions.apikey  BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	var policy domain.BookingAccessPolicy = domain.OwnerInviteePolicy{}
	if cfg.BookingVisibility == "shared" {
		policy = domain.SharedCalendarPolicy{}
	}

	hasher := auth.NewBcryptHasher(0)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)
	userService := services.NewUserService(userRepo, cfg.ContextTimeout)
	bookingService := services.NewBookingService(bookingRepo, invitationRepo, userRepo, policy, emailService, logger, cfg.ContextTimeout)

	authController := controllers.NewAuthController(logger, authService)
	bookingController := controllers.NewBookingController(logger, bookingService)
	userController := controllers.NewUserController(logger, userService)

	mux := delivery.NewRouter(authController, bookingController, userController, verifier)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, mux))

	addr := fmt.Sprintf(":%s", cfg.Port)
	if cfg.Environment == "development" {
		log.Printf("Server starting on http://localhost%s", addr)
		log.Printf("Swagger UI available at http://localhost%s/swagger/index.html", addr)
	}
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
