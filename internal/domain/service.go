package domain

import (
	"context"

	"eventledger/internal/concurrency"
)

// Identity is the pre-authenticated caller of a command.
type Identity struct {
	UserID   string
	UserName string
}

// UpdateOptions carries the concurrency guards of an update.
type UpdateOptions struct {
	// Check decides whether the caller's token is compared with the stored one.
	Check concurrency.Check
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int
}

// EventCommandService is the only component that mutates the write store,
// the read store and the version log.
type EventCommandService interface {
	CreateEvent(ctx context.Context, in EventInput, who Identity) (*EventWrite, error)
	// BulkCreateEvents creates each input in order. On failure it returns the
	// events committed so far and a *BulkCreateError.
	BulkCreateEvents(ctx context.Context, in []EventInput, who Identity) ([]*EventWrite, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch, who Identity, opts UpdateOptions) (*EventWrite, error)
	DeleteEvent(ctx context.Context, id string, who Identity) error
}

// EventQueryService answers reads from the read store only.
type EventQueryService interface {
	GetEventByID(ctx context.Context, id string) (*EventRead, error)
	ListEvents(ctx context.Context, f EventFilter) ([]*EventRead, int, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string, f EventFilter) ([]*EventRead, int, error)
	EventHistory(ctx context.Context, id string) ([]*VersionEntry, error)
	EventVersion(ctx context.Context, id string, version int) (*VersionEntry, error)
}

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	New() string
}
