package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventCreatedEmailData holds data for the "event_created" email.
type EventCreatedEmailData struct {
	EventID     string
	Title       string
	OrganizerID string
	StartDate   string
}

// TokenVerifier verifies a bearer token and returns the caller it identifies.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
