package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventledger/internal/domain"
)

const readColumns = `id, title, description, type, category, start_date, end_date, location, metadata,
	organizer_id, organizer_name, price, capacity, status, is_public, image_url, tags,
	registered_count, attendance_count, is_deleted, version, created_at, updated_at,
	last_activity_at, concurrency_token`

// sortColumns maps the sortable read-model fields to their columns.
var sortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"startDate":       "start_date",
	"endDate":         "end_date",
	"title":           "title",
	"capacity":        "capacity",
	"price":           "price",
	"registeredCount": "registered_count",
	"lastActivityAt":  "last_activity_at",
}

type eventReadRepository struct {
	DB *DB
}

// NewEventReadRepository returns the read-model store.
func NewEventReadRepository(db *DB) domain.EventReadRepository {
	return &eventReadRepository{
		DB: db,
	}
}

func (r *eventReadRepository) Create(ctx context.Context, e *domain.EventRead) error {
	args, err := readArgs(e)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events_read (` + readColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err = r.DB.execContext(ctx, query, args...)
	return err
}

func (r *eventReadRepository) GetByID(ctx context.Context, id string) (*domain.EventRead, error) {
	query := `SELECT ` + readColumns + ` FROM events_read WHERE id = $1`
	e, err := scanRead(r.DB.queryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Save overwrites every column except id. A projection already at a newer
// version is kept.
func (r *eventReadRepository) Save(ctx context.Context, e *domain.EventRead) error {
	args, err := readArgs(e)
	if err != nil {
		return err
	}
	query := `
		UPDATE events_read SET
			title = $2, description = $3, type = $4, category = $5, start_date = $6, end_date = $7,
			location = $8, metadata = $9, organizer_id = $10, organizer_name = $11, price = $12,
			capacity = $13, status = $14, is_public = $15, image_url = $16, tags = $17,
			registered_count = $18, attendance_count = $19, is_deleted = $20, version = $21,
			created_at = $22, updated_at = $23, last_activity_at = $24, concurrency_token = $25
		WHERE id = $1 AND version <= $21
	`
	result, err := r.DB.execContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	var stored int
	err = r.DB.queryRowContext(ctx, `SELECT version FROM events_read WHERE id = $1`, e.ID).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return domain.ErrStaleWrite
}

func (r *eventReadRepository) List(ctx context.Context, f domain.EventFilter) ([]*domain.EventRead, int, error) {
	where, args := listWhere(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM events_read WHERE ` + where
	if err := r.DB.queryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if f.SortOrder == domain.SortAsc {
		order = "ASC"
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM events_read WHERE %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		readColumns, where, column, order, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.queryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.EventRead, 0)
	for rows.Next() {
		e, err := scanRead(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// listWhere builds the WHERE clause of f. Deleted projections never match.
func listWhere(f domain.EventFilter) (string, []any) {
	clauses := []string{"is_deleted = $1"}
	args := []any{false}
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.OrganizerID != "" {
		add("organizer_id = $%d", f.OrganizerID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Category != "" {
		add("LOWER(category) LIKE $%d", "%"+strings.ToLower(f.Category)+"%")
	}
	if f.IsPublic != nil {
		add("is_public = $%d", *f.IsPublic)
	}
	if f.StartDate != nil {
		add("start_date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("end_date <= $%d", *f.EndDate)
	}
	return strings.Join(clauses, " AND "), args
}

func readArgs(e *domain.EventRead) ([]any, error) {
	metadata, err := metadataColumn(e.Metadata)
	if err != nil {
		return nil, err
	}
	tags, err := tagsColumn(e.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		e.ID, e.Title, nullString(e.Description), string(e.Type), e.Category, e.StartDate, e.EndDate, e.Location, metadata,
		e.OrganizerID, e.OrganizerName, nullFloat(e.Price), e.Capacity, string(e.Status), e.IsPublic, nullString(e.ImageURL), tags,
		e.RegisteredCount, e.AttendanceCount, e.IsDeleted, e.Version, e.CreatedAt, e.UpdatedAt,
		e.LastActivityAt, e.ConcurrencyToken,
	}, nil
}

func scanRead(row rowScanner) (*domain.EventRead, error) {
	e := &domain.EventRead{}
	var (
		description, metadata, imageURL, tags sql.NullString
		price                                 sql.NullFloat64
		eventType, status                     string
		createdAt, updatedAt, lastActivityAt  time.Time
	)
	err := row.Scan(
		&e.ID, &e.Title, &description, &eventType, &e.Category, &e.StartDate, &e.EndDate, &e.Location, &metadata,
		&e.OrganizerID, &e.OrganizerName, &price, &e.Capacity, &status, &e.IsPublic, &imageURL, &tags,
		&e.RegisteredCount, &e.AttendanceCount, &e.IsDeleted, &e.Version, &createdAt, &updatedAt,
		&lastActivityAt, &e.ConcurrencyToken,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(eventType)
	e.Status = domain.EventStatus(status)
	e.Description = stringPtr(description)
	e.ImageURL = stringPtr(imageURL)
	e.Price = floatPtr(price)
	e.StartDate = e.StartDate.UTC()
	e.EndDate = e.EndDate.UTC()
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	e.LastActivityAt = lastActivityAt.UTC()
	if e.Metadata, err = decodeMetadata(metadata); err != nil {
		return nil, err
	}
	if e.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return e, nil
}
