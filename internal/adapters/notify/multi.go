package notify

import (
	"context"
	"errors"

	"eventledger/internal/domain"
)

// Multi delivers to every notifier and joins their errors. One failing
// sink does not stop the others.
type Multi []domain.Notifier

func (m Multi) PublishEventCreated(ctx context.Context, n domain.EventCreatedNotification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.PublishEventCreated(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards notifications.
type Noop struct{}

func (Noop) PublishEventCreated(context.Context, domain.EventCreatedNotification) error {
	return nil
}
