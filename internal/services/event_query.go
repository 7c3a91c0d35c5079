package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventledger/internal/domain"
)

// sortableFields are the read-model fields a list may be ordered by.
var sortableFields = map[string]struct{}{
	"createdAt":       {},
	"updatedAt":       {},
	"startDate":       {},
	"endDate":         {},
	"title":           {},
	"capacity":        {},
	"price":           {},
	"registeredCount": {},
	"lastActivityAt":  {},
}

type eventQueryService struct {
	readRepo       domain.EventReadRepository
	versions       domain.VersionLog
	contextTimeout time.Duration
}

// NewEventQueryService returns the read path. It never touches the write store.
func NewEventQueryService(readRepo domain.EventReadRepository, versions domain.VersionLog, timeout time.Duration) domain.EventQueryService {
	return &eventQueryService{
		readRepo:       readRepo,
		versions:       versions,
		contextTimeout: timeout,
	}
}

func (s *eventQueryService) GetEventByID(ctx context.Context, id string) (*domain.EventRead, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.readRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventQueryService) ListEvents(ctx context.Context, f domain.EventFilter) ([]*domain.EventRead, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f, err := normalizeFilter(f)
	if err != nil {
		return nil, 0, err
	}
	events, total, err := s.readRepo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventRead{}
	}
	return events, total, nil
}

func (s *eventQueryService) ListEventsByOrganizer(ctx context.Context, organizerID string, f domain.EventFilter) ([]*domain.EventRead, int, error) {
	if strings.TrimSpace(organizerID) == "" {
		return nil, 0, fmt.Errorf("%w: organizer id is required", domain.ErrInvalidInput)
	}
	f.OrganizerID = organizerID
	return s.ListEvents(ctx, f)
}

func (s *eventQueryService) EventHistory(ctx context.Context, id string) ([]*domain.VersionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.versions.History(ctx, id)
}

func (s *eventQueryService) EventVersion(ctx context.Context, id string, version int) (*domain.VersionEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if version < 1 {
		return nil, fmt.Errorf("%w: version must be positive", domain.ErrInvalidInput)
	}
	return s.versions.Version(ctx, id, version)
}

// normalizeFilter applies pagination and sort defaults and rejects unknown
// sort fields and directions.
func normalizeFilter(f domain.EventFilter) (domain.EventFilter, error) {
	f.PaginationParams = f.PaginationParams.Normalize()
	if f.SortBy == "" {
		f.SortBy = domain.DefaultSortBy
	}
	if _, ok := sortableFields[f.SortBy]; !ok {
		return f, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, f.SortBy)
	}
	switch domain.SortOrder(strings.ToUpper(string(f.SortOrder))) {
	case "":
		f.SortOrder = domain.SortDesc
	case domain.SortAsc:
		f.SortOrder = domain.SortAsc
	case domain.SortDesc:
		f.SortOrder = domain.SortDesc
	default:
		return f, fmt.Errorf("%w: sort order must be ASC or DESC", domain.ErrInvalidInput)
	}
	return f, nil
}
