package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventledger/internal/domain"
	"eventledger/internal/testutil"
)

var (
	testStart = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 16, 18, 0, 0, 0, time.UTC)
)

func writeRowColumns() []string {
	return []string{"id", "title", "description", "type", "category", "start_date", "end_date", "location", "metadata",
		"organizer_id", "price", "capacity", "status", "is_public", "image_url", "tags", "is_deleted", "version",
		"created_at", "updated_at", "concurrency_token"}
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestEventWriteRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		wantIs  error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				args := anyArgs(21)
				args[0] = "ev-1"
				args[8] = `{"room":"A"}`
				args[15] = `["go"]`
				args[17] = 1
				args[20] = "tok-1"
				mock.ExpectExec(`INSERT INTO events_write \(id, title`).
					WithArgs(args...).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events_write`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events_write`).WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
			},
			wantErr: true,
			wantIs:  domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			clk := testutil.NewClock(time.Second)
			repo := NewEventWriteRepository(New(db, DialectPostgres), clk)
			e := &domain.EventWrite{
				ID:               "ev-1",
				Title:            "Conf A",
				Type:             domain.EventTypeConference,
				StartDate:        testStart,
				EndDate:          testEnd,
				Metadata:         map[string]any{"room": "A"},
				OrganizerID:      "u1",
				Capacity:         100,
				Status:           domain.EventStatusDraft,
				IsPublic:         true,
				Tags:             []string{"go"},
				ConcurrencyToken: "tok-1",
			}
			err = repo.Create(ctx, e)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
				assert.Zero(t, e.Version)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, e.Version)
			assert.Equal(t, clk.Last(), e.CreatedAt)
			assert.Equal(t, e.CreatedAt, e.UpdatedAt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventWriteRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.EventWrite
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM events_write WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows(writeRowColumns()).AddRow(
						"ev-1", "Conf A", "Two days", "conference", "tech", testStart, testEnd, "Lisbon", `{"room":"A"}`,
						"u1", 49.5, 100, "published", true, nil, `["go","cloud"]`, false, 3,
						created, created, "tok-3",
					))
			},
			want: &domain.EventWrite{
				ID: "ev-1", Title: "Conf A", Description: strPtr("Two days"), Type: domain.EventTypeConference,
				Category: "tech", StartDate: testStart, EndDate: testEnd, Location: "Lisbon",
				Metadata: map[string]any{"room": "A"}, OrganizerID: "u1", Price: floatPtrOf(49.5), Capacity: 100,
				Status: domain.EventStatusPublished, IsPublic: true, Tags: []string{"go", "cloud"}, Version: 3,
				CreatedAt: created, UpdatedAt: created, ConcurrencyToken: "tok-3",
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM events_write`).WithArgs("missing").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventWriteRepository(New(db, DialectPostgres), testutil.NewClock(time.Second))
			id := "ev-1"
			if tt.wantErr != nil {
				id = "missing"
			}
			got, err := repo.GetByID(ctx, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventWriteRepository_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		rows        int64
		execErr     error
		wantErr     error
		wantVersion int
	}{
		{name: "condition holds", rows: 1, wantVersion: 4},
		{name: "row changed since load", rows: 0, wantErr: domain.ErrStaleWrite, wantVersion: 3},
		{name: "db error", execErr: sql.ErrConnDone, wantErr: sql.ErrConnDone, wantVersion: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			args := anyArgs(20)
			args[15] = "tok-new"
			args[17] = "ev-1"
			args[18] = 3
			args[19] = "tok-old"
			exp := mock.ExpectExec(`UPDATE events_write SET .+ version = version \+ 1.+ WHERE id = \$18 AND version = \$19 AND concurrency_token = \$20`).
				WithArgs(args...)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rows))
			}

			repo := NewEventWriteRepository(New(db, DialectPostgres), testutil.NewClock(time.Second))
			e := &domain.EventWrite{ID: "ev-1", Title: "Conf B", Version: 3, ConcurrencyToken: "tok-new", Capacity: 10}
			err = repo.Save(ctx, e, domain.WriteCondition{Version: 3, Token: "tok-old"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantVersion, e.Version)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func strPtr(s string) *string       { return &s }
func floatPtrOf(f float64) *float64 { return &f }

func TestEventWriteRepository_Create_StoresTimesInUTC(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	karachi := time.FixedZone("PKT", 5*60*60)
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, karachi)
	end := time.Date(2025, 6, 15, 18, 0, 0, 0, karachi)

	args := anyArgs(21)
	args[5] = start.UTC()
	args[6] = end.UTC()
	mock.ExpectExec(`INSERT INTO events_write`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventWriteRepository(New(db, DialectPostgres), testutil.NewClock(time.Second))
	e := &domain.EventWrite{ID: "ev-1", Title: "Conf A", Type: domain.EventTypeConference, StartDate: start, EndDate: end,
		OrganizerID: "u1", Capacity: 100, Status: domain.EventStatusDraft, ConcurrencyToken: "tok-1"}
	require.NoError(t, repo.Create(context.Background(), e))
	require.NoError(t, mock.ExpectationsWereMet())
}
