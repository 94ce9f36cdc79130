// Package testutil holds test helpers shared across packages.
package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/journal"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/journal/migrations"
)

// NewTestDB creates an in-memory SQLite database with the journal migrations
// applied. The database is automatically closed when the test finishes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err, "failed to open in-memory database")
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	err = migrations.Run(db)
	require.NoError(t, err, "failed to run migrations")

	return db
}

// InsertRun writes run as a raw row.
func InsertRun(db *sql.DB, run domain.Run) error {
	var finished any
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC().Format(journal.TimeLayout)
	}
	_, err := db.Exec(
		`INSERT INTO runs (invocation_id, command, started_at, finished_at, status_id, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.InvocationID, run.Command, run.StartedAt.UTC().Format(journal.TimeLayout), finished, int(run.Status), run.Error,
	)
	return err
}

// SeedRuns inserts runs into the test database.
func SeedRuns(t *testing.T, db *sql.DB, runs []domain.Run) {
	t.Helper()

	for _, run := range runs {
		err := InsertRun(db, run)
		require.NoError(t, err, "failed to seed run: %+v", run)
	}
}
