package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventledger/internal/clock"
	"eventledger/internal/domain"
)

const writeColumns = `id, title, description, type, category, start_date, end_date, location, metadata,
	organizer_id, price, capacity, status, is_public, image_url, tags, is_deleted, version,
	created_at, updated_at, concurrency_token`

type eventWriteRepository struct {
	DB    *DB
	clock clock.Clock
}

// NewEventWriteRepository returns the write-model store. Save is a
// conditional update on (id, version, concurrency_token).
func NewEventWriteRepository(db *DB, clk clock.Clock) domain.EventWriteRepository {
	return &eventWriteRepository{
		DB:    db,
		clock: clk,
	}
}

func (r *eventWriteRepository) Create(ctx context.Context, e *domain.EventWrite) error {
	metadata, err := metadataColumn(e.Metadata)
	if err != nil {
		return err
	}
	tags, err := tagsColumn(e.Tags)
	if err != nil {
		return err
	}
	now := r.clock.Now()
	query := `
		INSERT INTO events_write (` + writeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = r.DB.execContext(ctx, query,
		e.ID, e.Title, nullString(e.Description), string(e.Type), e.Category, e.StartDate, e.EndDate, e.Location, metadata,
		e.OrganizerID, nullFloat(e.Price), e.Capacity, string(e.Status), e.IsPublic, nullString(e.ImageURL), tags, e.IsDeleted, 1,
		now, now, e.ConcurrencyToken,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: event %s already exists", domain.ErrConflict, e.ID)
		}
		return err
	}
	e.Version = 1
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (r *eventWriteRepository) GetByID(ctx context.Context, id string) (*domain.EventWrite, error) {
	query := `SELECT ` + writeColumns + ` FROM events_write WHERE id = $1`
	e, err := scanWrite(r.DB.queryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventWriteRepository) Save(ctx context.Context, e *domain.EventWrite, expected domain.WriteCondition) error {
	metadata, err := metadataColumn(e.Metadata)
	if err != nil {
		return err
	}
	tags, err := tagsColumn(e.Tags)
	if err != nil {
		return err
	}
	now := r.clock.Now()
	query := `
		UPDATE events_write SET
			title = $1, description = $2, type = $3, category = $4, start_date = $5, end_date = $6,
			location = $7, metadata = $8, price = $9, capacity = $10, status = $11, is_public = $12,
			image_url = $13, tags = $14, is_deleted = $15, concurrency_token = $16,
			version = version + 1, updated_at = $17
		WHERE id = $18 AND version = $19 AND concurrency_token = $20
	`
	result, err := r.DB.execContext(ctx, query,
		e.Title, nullString(e.Description), string(e.Type), e.Category, e.StartDate, e.EndDate,
		e.Location, metadata, nullFloat(e.Price), e.Capacity, string(e.Status), e.IsPublic,
		nullString(e.ImageURL), tags, e.IsDeleted, e.ConcurrencyToken,
		now,
		e.ID, expected.Version, expected.Token,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrStaleWrite
	}
	e.Version = expected.Version + 1
	e.UpdatedAt = now
	return nil
}

func scanWrite(row rowScanner) (*domain.EventWrite, error) {
	e := &domain.EventWrite{}
	var (
		description, metadata, imageURL, tags sql.NullString
		price                                 sql.NullFloat64
		eventType, status                     string
		createdAt, updatedAt                  time.Time
	)
	err := row.Scan(
		&e.ID, &e.Title, &description, &eventType, &e.Category, &e.StartDate, &e.EndDate, &e.Location, &metadata,
		&e.OrganizerID, &price, &e.Capacity, &status, &e.IsPublic, &imageURL, &tags, &e.IsDeleted, &e.Version,
		&createdAt, &updatedAt, &e.ConcurrencyToken,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(eventType)
	e.Status = domain.EventStatus(status)
	e.Description = stringPtr(description)
	e.ImageURL = stringPtr(imageURL)
	e.Price = floatPtr(price)
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	e.StartDate = e.StartDate.UTC()
	e.EndDate = e.EndDate.UTC()
	if e.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	if e.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return e, nil
}
