package migrations_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/journal/migrations"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/testutil"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad(t *testing.T) {
	all, err := migrations.Load()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)

	for i := 1; i < len(all); i++ {
		require.Greater(t, all[i].Version, all[i-1].Version)
	}
	require.Equal(t, "create_runs", all[0].Description)
}

func TestRunIdempotent(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, migrations.Run(db))
	v1, err := migrations.CurrentVersion(db)
	require.NoError(t, err)

	require.NoError(t, migrations.Run(db))
	v2, err := migrations.CurrentVersion(db)
	require.NoError(t, err)

	require.Equal(t, v1, v2)

	pending, err := migrations.Pending(db)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestRunCreatesRunsTable(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, migrations.Run(db))

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCurrentVersion_FreshDatabase(t *testing.T) {
	db := openMemory(t)

	v, err := migrations.CurrentVersion(db)
	require.NoError(t, err)
	require.Equal(t, 0, v)

	pending, err := migrations.Pending(db)
	require.NoError(t, err)
	all, err := migrations.Load()
	require.NoError(t, err)
	require.Len(t, pending, len(all))
}

func TestSchema_InvocationIDIsUnique(t *testing.T) {
	db := testutil.NewTestDB(t)
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testutil.SeedRuns(t, db, []domain.Run{
		{InvocationID: "a", Command: "refresh_signature", StartedAt: started},
		{InvocationID: "b", Command: "refresh_signature", StartedAt: started, Status: domain.RunFailed, Error: "boom"},
	})

	err := testutil.InsertRun(db, domain.Run{InvocationID: "a", Command: "sync_megaphone", StartedAt: started})
	require.Error(t, err)

	var failed int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM runs WHERE status_id = ?", int(domain.RunFailed)).Scan(&failed))
	require.Equal(t, 1, failed)
}
