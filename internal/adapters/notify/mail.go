package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventledger/internal/domain"
)

const eventCreatedTemplate = "event_created"

// MailNotifier mails each notification to a fixed list of recipients.
type MailNotifier struct {
	mailer     domain.Mailer
	renderer   domain.EmailTemplateRenderer
	recipients []string
}

// NewMailNotifier renders the event_created template and sends it with mailer.
func NewMailNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, recipients []string) *MailNotifier {
	return &MailNotifier{
		mailer:     mailer,
		renderer:   renderer,
		recipients: recipients,
	}
}

func (m *MailNotifier) PublishEventCreated(ctx context.Context, n domain.EventCreatedNotification) error {
	if len(m.recipients) == 0 {
		return nil
	}
	subject, html, text, err := m.renderer.Render(eventCreatedTemplate, domain.EventCreatedEmailData{
		EventID:     n.ID,
		Title:       n.Title,
		OrganizerID: n.OrganizerID,
		StartDate:   n.StartDate.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render %s email: %w", eventCreatedTemplate, err)
	}
	// Sends run in parallel so the caller waits for the slowest recipient
	// instead of the sum of all of them.
	errs := make([]error, len(m.recipients))
	var wg sync.WaitGroup
	for i, to := range m.recipients {
		wg.Go(func() {
			if err := m.mailer.Send(ctx, to, subject, html, text); err != nil {
				errs[i] = fmt.Errorf("mail %s: %w", to, err)
			}
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}
