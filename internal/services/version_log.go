package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"eventledger/internal/clock"
	"eventledger/internal/concurrency"
	"eventledger/internal/domain"
)

type versionLog struct {
	repo   domain.VersionRepository
	ids    domain.IDGenerator
	tokens concurrency.TokenGenerator
	clock  clock.Clock
	logger *slog.Logger
}

// NewVersionLog returns a VersionLog that appends entries to repo.
func NewVersionLog(repo domain.VersionRepository, ids domain.IDGenerator, tokens concurrency.TokenGenerator, clk clock.Clock, logger *slog.Logger) domain.VersionLog {
	return &versionLog{
		repo:   repo,
		ids:    ids,
		tokens: tokens,
		clock:  clk,
		logger: logger,
	}
}

// Record appends one entry. A zero version is recorded as 1 and an empty
// token is replaced by a fresh one.
func (l *versionLog) Record(ctx context.Context, p domain.RecordParams) (*domain.VersionEntry, error) {
	if p.EventID == "" {
		return nil, fmt.Errorf("%w: event id is required", domain.ErrInvalidInput)
	}
	if !p.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, p.Action)
	}
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	version := p.Version
	if version == 0 {
		version = 1
	}
	token := p.ConcurrencyToken
	if token == "" {
		token = l.tokens.Generate()
	}
	entry := &domain.VersionEntry{
		ID:               l.ids.New(),
		EventID:          p.EventID,
		Action:           p.Action,
		Payload:          payload,
		Metadata:         p.Metadata,
		UserID:           p.UserID,
		UserName:         p.UserName,
		Version:          version,
		ConcurrencyToken: token,
		Timestamp:        l.clock.Now(),
	}
	if err := l.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append version entry: %w", err)
	}
	l.logger.InfoContext(ctx, "recorded event",
		"action", entry.Action,
		"event_id", entry.EventID,
		"user_id", entry.UserID,
		"version", entry.Version,
	)
	return entry, nil
}

func (l *versionLog) History(ctx context.Context, eventID string) ([]*domain.VersionEntry, error) {
	entries, err := l.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list version entries: %w", err)
	}
	if entries == nil {
		entries = []*domain.VersionEntry{}
	}
	return entries, nil
}

func (l *versionLog) Version(ctx context.Context, eventID string, version int) (*domain.VersionEntry, error) {
	entry, err := l.repo.GetByEventAndVersion(ctx, eventID, version)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get version entry: %w", err)
	}
	return entry, nil
}
