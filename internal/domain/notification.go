package domain

import (
	"context"
	"time"
)

// EventCreatedType is the notification type name of EventCreatedNotification.
const EventCreatedType = "EventCreated"

// EventCreatedNotification is published once per successfully created event.
type EventCreatedNotification struct {
	ID          string    `json:"id" msgpack:"id"`
	Title       string    `json:"title" msgpack:"title"`
	OrganizerID string    `json:"organizerId" msgpack:"organizerId"`
	StartDate   time.Time `json:"startDate" msgpack:"startDate"`
}

// Notifier delivers notifications to external subscribers. Delivery
// guarantees belong to the implementation; callers do not act on failures.
type Notifier interface {
	PublishEventCreated(ctx context.Context, n EventCreatedNotification) error
}
