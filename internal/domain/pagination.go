package domain

import "time"

// Pagination defaults and limits for list queries.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// DefaultSortBy is the ordering field used when none is requested.
const DefaultSortBy = "createdAt"

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Limit  int
	Offset int
}

// Normalize clamps Limit to [1, MaxLimit] (DefaultLimit when unset) and
// Offset to >= 0.
func (p PaginationParams) Normalize() PaginationParams {
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// EventFilter selects read projections. Zero-valued fields do not filter.
// Soft-deleted events are always excluded.
type EventFilter struct {
	OrganizerID string
	Status      EventStatus
	Type        EventType
	// Category matches as a case-insensitive substring.
	Category string
	IsPublic *bool
	// StartDate keeps events starting at or after this time.
	StartDate *time.Time
	// EndDate keeps events ending at or before this time.
	EndDate   *time.Time
	SortBy    string
	SortOrder SortOrder
	PaginationParams
}
