package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the booking invitation notification email.
type InvitationEmailData struct {
	Email           string
	OwnerName       string
	BookingEmail    string
	StartAt         string
	DurationMinutes int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendBookingInvitation(ctx context.Context, data *InvitationEmailData) error
}
