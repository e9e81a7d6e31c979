package state

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/covidlens/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(id string, started time.Time) *Run {
	return &Run{
		ID:        id,
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Status:    RunStatusSucceeded,
		DataDir:   "/data",
		Grouping:  "date",
		Regions:   6,
		Dates:     3,
		Dropped:   1,
		Defaulted: []string{"Sikkim", "Ladakh"},
	}
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_OpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".covidlens", "state.db")

	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(context.Background()))

	assert.FileExists(t, path)
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	version, err := store.GetMigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.Error(t, store.Migrate(ctx))
	assert.Error(t, store.RecordRun(ctx, &Run{}))
	_, err := store.GetRun(ctx, "x")
	assert.Error(t, err)
	_, err = store.ListRuns(ctx, 0)
	assert.Error(t, err)
	_, err = store.PruneRuns(ctx, 1)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RecordAndGetRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2021, 5, 1, 10, 30, 0, 123456789, time.UTC)

	want := testRun("run-1", started)
	want.Status = RunStatusFailed
	want.Error = "no valid dates"
	require.NoError(t, store.RecordRun(ctx, want))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteStore_RecordRunAssignsID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := &Run{Status: RunStatusSucceeded}
	require.NoError(t, store.RecordRun(ctx, run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Defaulted)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)

	// Fractional seconds must still sort after whole seconds.
	require.NoError(t, store.RecordRun(ctx, testRun("a", base)))
	require.NoError(t, store.RecordRun(ctx, testRun("b", base.Add(500*time.Millisecond))))
	require.NoError(t, store.RecordRun(ctx, testRun("c", base.Add(time.Second))))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"c", "b", "a"}},
		{"negative means all", -1, []string{"c", "b", "a"}},
		{"limited", 2, []string{"c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.limit)
			require.NoError(t, err)
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSQLiteStore_PruneRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.RecordRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Minute))))
	}

	n, err := store.PruneRuns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "d", runs[0].ID)
	assert.Equal(t, "c", runs[1].ID)

	_, err = store.PruneRuns(ctx, -1)
	assert.Error(t, err)
}

func TestSQLiteStore_RecordRunError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).
		WillReturnError(errors.New("database is locked"))

	store := NewSQLiteStoreWithDB(db, nil)
	err = store.RecordRun(context.Background(), testRun("run-1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record run")
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_ListRunsBadTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{
		"id", "started_at", "duration_ms", "status", "data_dir", "grouping",
		"regions", "dates", "dropped", "defaulted", "error",
	}).AddRow("run-1", "yesterday", 10, "succeeded", "/data", "date", 1, 1, 0, "", "")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, started_at")).WithArgs(5).WillReturnRows(rows)

	store := NewSQLiteStoreWithDB(db, nil)
	_, err = store.ListRuns(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad started_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}
