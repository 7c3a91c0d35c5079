package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eventledger/internal/clock"
	"eventledger/internal/concurrency"
	"eventledger/internal/domain"
)

var tracer = otel.Tracer("eventledger/internal/services")

// eventCommandService runs every command as an ordered sequence of writes:
// write model, read projection, version log. There is no transaction across
// the three stores. Once the write model is persisted the command is past its
// point of no return: later failures are reported but nothing is rolled back.
type eventCommandService struct {
	writeRepo      domain.EventWriteRepository
	readRepo       domain.EventReadRepository
	versions       domain.VersionLog
	notifier       domain.Notifier
	tokens         concurrency.TokenGenerator
	ids            domain.IDGenerator
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventCommandService(writeRepo domain.EventWriteRepository,
	readRepo domain.EventReadRepository,
	versions domain.VersionLog,
	notifier domain.Notifier,
	tokens concurrency.TokenGenerator,
	ids domain.IDGenerator,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventCommandService {
	return &eventCommandService{
		writeRepo:      writeRepo,
		readRepo:       readRepo,
		versions:       versions,
		notifier:       notifier,
		tokens:         tokens,
		ids:            ids,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventCommandService) CreateEvent(ctx context.Context, in domain.EventInput, who domain.Identity) (_ *domain.EventWrite, err error) {
	ctx, span := tracer.Start(ctx, "events.create")
	defer func() { finishSpan(span, err) }()

	if who.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	e, err := s.create(ctx, in, who)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("event.id", e.ID))
	s.notifyCreated(ctx, e)
	return e, nil
}

func (s *eventCommandService) BulkCreateEvents(ctx context.Context, in []domain.EventInput, who domain.Identity) (_ []*domain.EventWrite, err error) {
	ctx, span := tracer.Start(ctx, "events.bulk_create", trace.WithAttributes(attribute.Int("events.count", len(in))))
	defer func() { finishSpan(span, err) }()

	created := make([]*domain.EventWrite, 0, len(in))
	if who.UserID == "" {
		return created, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	// Elements commit one after the other; a failure keeps what came before.
	for i, item := range in {
		e, err := s.create(ctx, item, who)
		if err != nil {
			return created, &domain.BulkCreateError{Index: i, Err: err}
		}
		created = append(created, e)
	}
	return created, nil
}

func (s *eventCommandService) create(ctx context.Context, in domain.EventInput, who domain.Identity) (*domain.EventWrite, error) {
	e := domain.NewEventWrite(in)
	if e.ID == "" {
		e.ID = s.ids.New()
	}
	e.OrganizerID = who.UserID
	e.ConcurrencyToken = s.tokens.Generate()

	if err := s.withStep(ctx, func(ctx context.Context) error { return s.writeRepo.Create(ctx, e) }); err != nil {
		return nil, fmt.Errorf("create write model: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	read := domain.NewEventRead(e, who.UserName, s.clock.Now())
	if err := s.withStep(ctx, func(ctx context.Context) error { return s.readRepo.Create(ctx, read) }); err != nil {
		s.logger.ErrorContext(ctx, "write model committed without read projection", "event_id", e.ID, "err", err)
		return nil, fmt.Errorf("create read model: %w", err)
	}

	extra := map[string]any{}
	if who.UserName != "" {
		extra["organizerName"] = who.UserName
	}
	payload, err := mergePayload(in, extra)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, domain.RecordParams{
		EventID:          e.ID,
		Action:           domain.EventActionCreated,
		Payload:          payload,
		UserID:           who.UserID,
		UserName:         who.UserName,
		Version:          1,
		ConcurrencyToken: e.ConcurrencyToken,
	}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *eventCommandService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch, who domain.Identity, opts domain.UpdateOptions) (_ *domain.EventWrite, err error) {
	ctx, span := tracer.Start(ctx, "events.update", trace.WithAttributes(
		attribute.String("event.id", id),
		attribute.Bool("concurrency.check", opts.Check.Enabled()),
	))
	defer func() { finishSpan(span, err) }()

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	if err := opts.Check.Verify(existing.ConcurrencyToken); err != nil {
		return nil, err
	}
	if opts.ExpectedVersion != nil && *opts.ExpectedVersion != existing.Version {
		return nil, fmt.Errorf("%w: expected version %d, current version %d", domain.ErrConflict, *opts.ExpectedVersion, existing.Version)
	}

	expected := domain.ConditionOf(existing)
	patch.ApplyTo(existing)
	existing.ConcurrencyToken = concurrency.Rotate(s.tokens, existing.ConcurrencyToken)
	if err := s.withStep(ctx, func(ctx context.Context) error { return s.writeRepo.Save(ctx, existing, expected) }); err != nil {
		return nil, fmt.Errorf("save write model: %w", err)
	}

	if err := s.refreshProjection(ctx, existing); err != nil {
		return nil, err
	}

	if err := s.record(ctx, domain.RecordParams{
		EventID:          id,
		Action:           domain.EventActionUpdated,
		Payload:          patch,
		UserID:           who.UserID,
		UserName:         who.UserName,
		Version:          existing.Version,
		ConcurrencyToken: existing.ConcurrencyToken,
	}); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteEvent soft-deletes the event. Deleting an already deleted event
// succeeds and appends another entry.
func (s *eventCommandService) DeleteEvent(ctx context.Context, id string, who domain.Identity) (err error) {
	ctx, span := tracer.Start(ctx, "events.delete", trace.WithAttributes(attribute.String("event.id", id)))
	defer func() { finishSpan(span, err) }()

	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)

	// The entry carries the version the event had when it was loaded.
	loadedVersion := existing.Version
	expected := domain.ConditionOf(existing)
	existing.IsDeleted = true
	existing.ConcurrencyToken = concurrency.Rotate(s.tokens, existing.ConcurrencyToken)
	if err := s.withStep(ctx, func(ctx context.Context) error { return s.writeRepo.Save(ctx, existing, expected) }); err != nil {
		return fmt.Errorf("save write model: %w", err)
	}

	if err := s.refreshProjection(ctx, existing); err != nil {
		return err
	}

	return s.record(ctx, domain.RecordParams{
		EventID:          id,
		Action:           domain.EventActionDeleted,
		Payload:          map[string]any{"deletedAt": s.clock.Now()},
		UserID:           who.UserID,
		UserName:         who.UserName,
		Version:          loadedVersion,
		ConcurrencyToken: existing.ConcurrencyToken,
	})
}

func (s *eventCommandService) load(ctx context.Context, id string) (*domain.EventWrite, error) {
	var e *domain.EventWrite
	err := s.withStep(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.writeRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// refreshProjection mirrors w onto its read projection. A missing projection,
// or one that a newer write already refreshed, is left alone.
func (s *eventCommandService) refreshProjection(ctx context.Context, w *domain.EventWrite) error {
	var read *domain.EventRead
	err := s.withStep(ctx, func(ctx context.Context) error {
		var err error
		read, err = s.readRepo.GetByID(ctx, w.ID)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "read projection missing", "event_id", w.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get read model: %w", err)
	}

	read.Refresh(w, s.clock.Now())
	err = s.withStep(ctx, func(ctx context.Context) error { return s.readRepo.Save(ctx, read) })
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		s.logger.WarnContext(ctx, "read projection missing", "event_id", w.ID)
		return nil
	case errors.Is(err, domain.ErrStaleWrite):
		s.logger.WarnContext(ctx, "read projection already newer", "event_id", w.ID, "version", w.Version)
		return nil
	default:
		s.logger.ErrorContext(ctx, "write model committed without read projection", "event_id", w.ID, "version", w.Version, "err", err)
		return fmt.Errorf("save read model: %w", err)
	}
}

func (s *eventCommandService) record(ctx context.Context, p domain.RecordParams) error {
	err := s.withStep(ctx, func(ctx context.Context) error {
		_, err := s.versions.Record(ctx, p)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "changes committed without version entry",
			"event_id", p.EventID, "action", p.Action, "version", p.Version, "err", err)
		return fmt.Errorf("record %s: %w: %w", p.Action, domain.ErrAuditIncomplete, err)
	}
	return nil
}

func (s *eventCommandService) notifyCreated(ctx context.Context, e *domain.EventWrite) {
	if s.notifier == nil {
		return
	}
	n := domain.EventCreatedNotification{
		ID:          e.ID,
		Title:       e.Title,
		OrganizerID: e.OrganizerID,
		StartDate:   e.StartDate,
	}
	err := s.withStep(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.notifier.PublishEventCreated(ctx, n)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "event created notification not delivered", "event_id", e.ID, "err", err)
	}
}

func (s *eventCommandService) withStep(ctx context.Context, fn func(context.Context) error) error {
	if s.contextTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return fn(ctx)
}

// mergePayload returns the JSON object form of v with extra keys added.
func mergePayload(v any, extra map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	for k, val := range extra {
		out[k] = val
	}
	return out, nil
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
