package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventAction names the transition a version entry records.
type EventAction string

const (
	EventActionCreated   EventAction = "created"
	EventActionUpdated   EventAction = "updated"
	EventActionDeleted   EventAction = "deleted"
	EventActionPublished EventAction = "published"
	EventActionCancelled EventAction = "cancelled"
	EventActionCompleted EventAction = "completed"
)

// Valid reports whether a is a known action.
func (a EventAction) Valid() bool {
	switch a {
	case EventActionCreated, EventActionUpdated, EventActionDeleted,
		EventActionPublished, EventActionCancelled, EventActionCompleted:
		return true
	}
	return false
}

// VersionEntry is an immutable audit record of one accepted command.
// swagger:model VersionEntry
type VersionEntry struct {
	ID               string          `json:"id"`
	EventID          string          `json:"eventId"`
	Action           EventAction     `json:"action"`
	Payload          json.RawMessage `json:"payload" swaggertype:"object"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	UserID           string          `json:"userId"`
	UserName         string          `json:"userName,omitempty"`
	Version          int             `json:"version"`
	ConcurrencyToken string          `json:"concurrencyToken"`
	Timestamp        time.Time       `json:"timestamp"`
}

// VersionRepository is the append-only store of version entries.
type VersionRepository interface {
	Append(ctx context.Context, v *VersionEntry) error
	// ListByEvent returns every entry of eventID ordered by timestamp ascending.
	ListByEvent(ctx context.Context, eventID string) ([]*VersionEntry, error)
	GetByEventAndVersion(ctx context.Context, eventID string, version int) (*VersionEntry, error)
}

// RecordParams describes one entry to append to the version log.
type RecordParams struct {
	EventID          string
	Action           EventAction
	Payload          any
	Metadata         map[string]any
	UserID           string
	UserName         string
	Version          int
	ConcurrencyToken string
}

// VersionLog records and replays the history of events.
type VersionLog interface {
	Record(ctx context.Context, p RecordParams) (*VersionEntry, error)
	History(ctx context.Context, eventID string) ([]*VersionEntry, error)
	Version(ctx context.Context, eventID string, version int) (*VersionEntry, error)
}
