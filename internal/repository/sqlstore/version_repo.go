package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventledger/internal/domain"
)

const versionColumns = `id, event_id, action, payload, metadata, user_id, user_name, version, concurrency_token, recorded_at`

type versionRepository struct {
	DB *DB
}

// NewVersionRepository returns the append-only version log store. It has no
// update or delete statements.
func NewVersionRepository(db *DB) domain.VersionRepository {
	return &versionRepository{
		DB: db,
	}
}

func (r *versionRepository) Append(ctx context.Context, v *domain.VersionEntry) error {
	metadata, err := metadataColumn(v.Metadata)
	if err != nil {
		return err
	}
	payload := string(v.Payload)
	if payload == "" {
		payload = "null"
	}
	query := `
		INSERT INTO version_entries (` + versionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.DB.execContext(ctx, query,
		v.ID, v.EventID, string(v.Action), payload, metadata, v.UserID, v.UserName, v.Version, v.ConcurrencyToken, v.Timestamp,
	)
	return err
}

func (r *versionRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.VersionEntry, error) {
	query := `SELECT ` + versionColumns + ` FROM version_entries WHERE event_id = $1 ORDER BY recorded_at ASC, version ASC`
	rows, err := r.DB.queryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.VersionEntry, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return entries, rows.Err()
}

// GetByEventAndVersion returns the most recent entry recorded for version.
// Deletes are recorded with the version they loaded, so a version may have
// more than one entry.
func (r *versionRepository) GetByEventAndVersion(ctx context.Context, eventID string, version int) (*domain.VersionEntry, error) {
	query := `SELECT ` + versionColumns + ` FROM version_entries WHERE event_id = $1 AND version = $2 ORDER BY recorded_at DESC LIMIT 1`
	v, err := scanVersion(r.DB.queryRowContext(ctx, query, eventID, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func scanVersion(row rowScanner) (*domain.VersionEntry, error) {
	v := &domain.VersionEntry{}
	var (
		action   string
		payload  string
		metadata sql.NullString
		recorded time.Time
	)
	if err := row.Scan(&v.ID, &v.EventID, &action, &payload, &metadata, &v.UserID, &v.UserName, &v.Version, &v.ConcurrencyToken, &recorded); err != nil {
		return nil, err
	}
	v.Action = domain.EventAction(action)
	v.Payload = []byte(payload)
	v.Timestamp = recorded.UTC()
	var err error
	if v.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	return v, nil
}
