package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventledger/internal/domain"
)

// testLogger discards output so tests don't assert on logs.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeWriteRepo is an in-memory EventWriteRepository with a conditional Save.
type fakeWriteRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.EventWrite
	now       func() time.Time
	createErr error
	// failCreateAt makes the n-th Create call (1-based) fail with createErr.
	failCreateAt int
	creates      int
	getErr       error
	saveErr      error
	// beforeSave runs with the lock held, before the condition is checked.
	beforeSave func(stored *domain.EventWrite)
	saves      int
}

func newFakeWriteRepo() *fakeWriteRepo {
	return &fakeWriteRepo{
		byID: make(map[string]*domain.EventWrite),
		now:  func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func (f *fakeWriteRepo) Create(_ context.Context, e *domain.EventWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil && (f.failCreateAt == 0 || f.failCreateAt == f.creates) {
		return f.createErr
	}
	e.Version = 1
	e.CreatedAt = f.now()
	e.UpdatedAt = e.CreatedAt
	f.byID[e.ID] = cloneWrite(e)
	return nil
}

func (f *fakeWriteRepo) GetByID(_ context.Context, id string) (*domain.EventWrite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneWrite(e), nil
}

func (f *fakeWriteRepo) Save(_ context.Context, e *domain.EventWrite, expected domain.WriteCondition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.byID[e.ID]
	if !ok {
		return domain.ErrStaleWrite
	}
	if f.beforeSave != nil {
		f.beforeSave(stored)
	}
	if stored.Version != expected.Version || stored.ConcurrencyToken != expected.Token {
		return domain.ErrStaleWrite
	}
	f.saves++
	e.Version = stored.Version + 1
	e.UpdatedAt = f.now()
	f.byID[e.ID] = cloneWrite(e)
	return nil
}

func (f *fakeWriteRepo) get(id string) *domain.EventWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneWrite(f.byID[id])
}

func cloneWrite(e *domain.EventWrite) *domain.EventWrite {
	if e == nil {
		return nil
	}
	c := *e
	c.Tags = append([]string(nil), e.Tags...)
	return &c
}

// fakeReadRepo is an in-memory EventReadRepository that keeps the newest projection.
type fakeReadRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.EventRead
	createErr error
	saveErr   error
	listErr   error
	lastList  domain.EventFilter
}

func newFakeReadRepo() *fakeReadRepo {
	return &fakeReadRepo{byID: make(map[string]*domain.EventRead)}
}

func (f *fakeReadRepo) Create(_ context.Context, r *domain.EventRead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	c := *r
	f.byID[r.ID] = &c
	return nil
}

func (f *fakeReadRepo) GetByID(_ context.Context, id string) (*domain.EventRead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeReadRepo) Save(_ context.Context, r *domain.EventRead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.byID[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version > r.Version {
		return domain.ErrStaleWrite
	}
	c := *r
	f.byID[r.ID] = &c
	return nil
}

func (f *fakeReadRepo) List(_ context.Context, filter domain.EventFilter) ([]*domain.EventRead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []*domain.EventRead
	for _, r := range f.byID {
		if r.IsDeleted {
			continue
		}
		if filter.OrganizerID != "" && r.OrganizerID != filter.OrganizerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Category != "" && !strings.Contains(strings.ToLower(r.Category), strings.ToLower(filter.Category)) {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if filter.Offset >= len(out) {
		return []*domain.EventRead{}, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeReadRepo) get(id string) *domain.EventRead {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil
	}
	c := *r
	return &c
}

// fakeVersionRepo is an in-memory append-only VersionRepository.
type fakeVersionRepo struct {
	mu        sync.Mutex
	entries   []*domain.VersionEntry
	appendErr error
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{}
}

func (f *fakeVersionRepo) Append(_ context.Context, v *domain.VersionEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	c := *v
	f.entries = append(f.entries, &c)
	return nil
}

func (f *fakeVersionRepo) ListByEvent(_ context.Context, eventID string) ([]*domain.VersionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.VersionEntry
	for _, e := range f.entries {
		if e.EventID == eventID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeVersionRepo) GetByEventAndVersion(_ context.Context, eventID string, version int) (*domain.VersionEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.EventID == eventID && e.Version == version {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeVersionRepo) forEvent(eventID string) []*domain.VersionEntry {
	out, _ := f.ListByEvent(context.Background(), eventID)
	return out
}

func (f *fakeVersionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeNotifier records published notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	published []domain.EventCreatedNotification
	err       error
}

func (f *fakeNotifier) PublishEventCreated(_ context.Context, n domain.EventCreatedNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, n)
	return f.err
}
