// Package journal keeps a local SQLite record of command invocations.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/journal/migrations"
)

// TimeLayout is the stored timestamp format. Fixed width so that text order
// is time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal stores runs in a SQLite database.
// It implements the domain.Journal interface.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One writer per process; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	setPermissions(path)

	if err = migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db}, nil
}

// setPermissions restricts the database and its WAL/SHM files to the owner.
func setPermissions(path string) {
	if path == ":memory:" {
		return
	}
	_ = os.Chmod(path, 0600)
	_ = os.Chmod(path+"-wal", 0600)
	_ = os.Chmod(path+"-shm", 0600)
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Begin inserts a running entry and returns its ID.
func (j *Journal) Begin(invocationID, command string, startedAt time.Time) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO runs (invocation_id, command, started_at, status_id)
		 VALUES (?, ?, ?, ?)`,
		invocationID,
		command,
		startedAt.UTC().Format(TimeLayout),
		int(domain.RunRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// Finish records the outcome of run id.
func (j *Journal) Finish(id int64, status domain.RunStatus, runErr error, finishedAt time.Time) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	res, err := j.db.Exec(
		`UPDATE runs SET finished_at = ?, status_id = ?, error = ? WHERE id = ?`,
		finishedAt.UTC().Format(TimeLayout),
		int(status),
		msg,
		id,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update run %d: no such run", id)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(limit int) ([]domain.Run, error) {
	rows, err := j.db.Query(
		`SELECT id, invocation_id, command, started_at, finished_at, status_id, error
		 FROM runs
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []domain.Run
	for rows.Next() {
		var (
			r          domain.Run
			startedAt  string
			finishedAt sql.NullString
			status     int
		)
		if err := rows.Scan(&r.ID, &r.InvocationID, &r.Command, &startedAt, &finishedAt, &status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		r.Status = domain.RunStatus(status)
		if r.StartedAt, err = time.Parse(TimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("run %d: started_at: %w", r.ID, err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(TimeLayout, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("run %d: finished_at: %w", r.ID, err)
			}
			r.FinishedAt = &t
		}

		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ domain.Journal = (*Journal)(nil)
