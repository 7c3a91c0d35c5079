package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventledger/internal/domain"
)

func TestVersionRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO version_entries \(id, event_id, action, payload, metadata, user_id, user_name, version, concurrency_token, recorded_at\)`).
		WithArgs("ver-1", "ev-1", "created", `{"title":"Conf A"}`, nil, "u1", "Ada", 1, "tok-1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewVersionRepository(New(db, DialectPostgres))
	err = repo.Append(context.Background(), &domain.VersionEntry{
		ID: "ver-1", EventID: "ev-1", Action: domain.EventActionCreated, Payload: json.RawMessage(`{"title":"Conf A"}`),
		UserID: "u1", UserName: "Ada", Version: 1, ConcurrencyToken: "tok-1", Timestamp: ts,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepository_ListByEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "event_id", "action", "payload", "metadata", "user_id", "user_name", "version", "concurrency_token", "recorded_at"}
	mock.ExpectQuery(`SELECT .+ FROM version_entries WHERE event_id = \$1 ORDER BY recorded_at ASC, version ASC`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ver-1", "ev-1", "created", `{"title":"Conf A"}`, nil, "u1", "Ada", 1, "tok-1", ts).
			AddRow("ver-2", "ev-1", "updated", `{"title":"Conf B"}`, `{"ip":"10.0.0.1"}`, "u1", "", 2, "tok-2", ts.Add(time.Minute)))

	repo := NewVersionRepository(New(db, DialectPostgres))
	got, err := repo.ListByEvent(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.EventActionCreated, got[0].Action)
	assert.JSONEq(t, `{"title":"Conf B"}`, string(got[1].Payload))
	assert.Equal(t, map[string]any{"ip": "10.0.0.1"}, got[1].Metadata)
	assert.Equal(t, 2, got[1].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionRepository_GetByEventAndVersion_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM version_entries WHERE event_id = \$1 AND version = \$2 ORDER BY recorded_at DESC LIMIT 1`).
		WithArgs("ev-1", 9).
		WillReturnError(sql.ErrNoRows)

	repo := NewVersionRepository(New(db, DialectPostgres))
	_, err = repo.GetByEventAndVersion(context.Background(), "ev-1", 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
