package domain

import (
	"context"
	"time"
)

// EventType classifies an event.
type EventType string

const (
	EventTypeConference EventType = "conference"
	EventTypeWorkshop   EventType = "workshop"
	EventTypeMeetup     EventType = "meetup"
	EventTypeWebinar    EventType = "webinar"
	EventTypeNetworking EventType = "networking"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeConference, EventTypeWorkshop, EventTypeMeetup, EventTypeWebinar, EventTypeNetworking:
		return true
	}
	return false
}

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// DefaultCapacity is used when an event is created without a capacity.
const DefaultCapacity = 100

// UnknownOrganizerName is the read-side organizer name when the caller supplied none.
const UnknownOrganizerName = "Unknown"

// EventWrite is the authoritative, mutable record of an event.
// swagger:model EventWrite
type EventWrite struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	Type             EventType      `json:"type"`
	Category         string         `json:"category"`
	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	Location         string         `json:"location"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	OrganizerID      string         `json:"organizerId"`
	Price            *float64       `json:"price,omitempty"`
	Capacity         int            `json:"capacity"`
	Status           EventStatus    `json:"status"`
	IsPublic         bool           `json:"isPublic"`
	ImageURL         *string        `json:"imageUrl,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	IsDeleted        bool           `json:"isDeleted"`
	Version          int            `json:"version"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	ConcurrencyToken string         `json:"concurrencyToken"`
}

// EventRead is the query-side projection of an event.
// swagger:model EventRead
type EventRead struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	Type             EventType      `json:"type"`
	Category         string         `json:"category"`
	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	Location         string         `json:"location"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	OrganizerID      string         `json:"organizerId"`
	OrganizerName    string         `json:"organizerName"`
	Price            *float64       `json:"price,omitempty"`
	Capacity         int            `json:"capacity"`
	Status           EventStatus    `json:"status"`
	IsPublic         bool           `json:"isPublic"`
	ImageURL         *string        `json:"imageUrl,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	RegisteredCount  int            `json:"registeredCount"`
	AttendanceCount  int            `json:"attendanceCount"`
	IsDeleted        bool           `json:"isDeleted"`
	Version          int            `json:"version"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	LastActivityAt   time.Time      `json:"lastActivityAt"`
	ConcurrencyToken string         `json:"concurrencyToken"`
}

// NewEventRead derives a fresh projection from a just-created write record.
func NewEventRead(w *EventWrite, organizerName string, now time.Time) *EventRead {
	if organizerName == "" {
		organizerName = UnknownOrganizerName
	}
	r := &EventRead{
		OrganizerName:   organizerName,
		RegisteredCount: 0,
		AttendanceCount: 0,
		LastActivityAt:  now,
	}
	r.mirror(w)
	r.Version = 1
	return r
}

// Refresh copies the write-side fields of w onto r, leaving the derived
// counters and organizer name untouched.
func (r *EventRead) Refresh(w *EventWrite, now time.Time) {
	r.mirror(w)
	r.LastActivityAt = now
}

func (r *EventRead) mirror(w *EventWrite) {
	r.ID = w.ID
	r.Title = w.Title
	r.Description = w.Description
	r.Type = w.Type
	r.Category = w.Category
	r.StartDate = w.StartDate
	r.EndDate = w.EndDate
	r.Location = w.Location
	r.Metadata = w.Metadata
	r.OrganizerID = w.OrganizerID
	r.Price = w.Price
	r.Capacity = w.Capacity
	r.Status = w.Status
	r.IsPublic = w.IsPublic
	r.ImageURL = w.ImageURL
	r.Tags = w.Tags
	r.IsDeleted = w.IsDeleted
	r.Version = w.Version
	r.CreatedAt = w.CreatedAt
	r.UpdatedAt = w.UpdatedAt
	r.ConcurrencyToken = w.ConcurrencyToken
}

// EventInput holds the caller-supplied fields of a new event.
type EventInput struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Type        EventType      `json:"type"`
	Category    string         `json:"category"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Location    string         `json:"location"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Capacity    *int           `json:"capacity,omitempty"`
	Status      EventStatus    `json:"status,omitempty"`
	IsPublic    *bool          `json:"isPublic,omitempty"`
	ImageURL    *string        `json:"imageUrl,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// NewEventWrite builds the write record for in, applying entity defaults.
// ID, organizer and token are assigned by the command processor.
func NewEventWrite(in EventInput) *EventWrite {
	e := &EventWrite{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Location:    in.Location,
		Metadata:    in.Metadata,
		Price:       in.Price,
		Capacity:    DefaultCapacity,
		Status:      in.Status,
		IsPublic:    true,
		ImageURL:    in.ImageURL,
		Tags:        in.Tags,
	}
	if in.Capacity != nil {
		e.Capacity = *in.Capacity
	}
	if in.IsPublic != nil {
		e.IsPublic = *in.IsPublic
	}
	if e.Status == "" {
		e.Status = EventStatusDraft
	}
	return e
}

// EventPatch is the closed list of fields Update may change. Nil fields are
// left untouched.
type EventPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Type        *EventType      `json:"type,omitempty"`
	Category    *string         `json:"category,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Location    *string         `json:"location,omitempty"`
	Metadata    *map[string]any `json:"metadata,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Capacity    *int            `json:"capacity,omitempty"`
	Status      *EventStatus    `json:"status,omitempty"`
	IsPublic    *bool           `json:"isPublic,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
}

// ApplyTo overwrites the fields of e that p carries.
func (p EventPatch) ApplyTo(e *EventWrite) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = p.Description
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Metadata != nil {
		e.Metadata = *p.Metadata
	}
	if p.Price != nil {
		e.Price = p.Price
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.IsPublic != nil {
		e.IsPublic = *p.IsPublic
	}
	if p.ImageURL != nil {
		e.ImageURL = p.ImageURL
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
}

// WriteCondition is the stored state a conditional save expects to find.
type WriteCondition struct {
	Version int
	Token   string
}

// ConditionOf returns the condition matching e as it was loaded.
func ConditionOf(e *EventWrite) WriteCondition {
	return WriteCondition{Version: e.Version, Token: e.ConcurrencyToken}
}

// EventWriteRepository stores the authoritative event records.
type EventWriteRepository interface {
	// Create inserts e and sets its Version to 1 and its timestamps.
	Create(ctx context.Context, e *EventWrite) error
	GetByID(ctx context.Context, id string) (*EventWrite, error)
	// Save persists e only if the stored row still matches expected. On success
	// e.Version is incremented and UpdatedAt refreshed; otherwise ErrStaleWrite.
	Save(ctx context.Context, e *EventWrite, expected WriteCondition) error
}

// EventReadRepository stores the query-side projections.
type EventReadRepository interface {
	Create(ctx context.Context, r *EventRead) error
	GetByID(ctx context.Context, id string) (*EventRead, error)
	// Save overwrites the projection unless the stored one is already newer
	// (ErrStaleWrite). A missing projection yields ErrNotFound.
	Save(ctx context.Context, r *EventRead) error
	// List returns one page of non-deleted projections and the total match count.
	List(ctx context.Context, f EventFilter) ([]*EventRead, int, error)
}
