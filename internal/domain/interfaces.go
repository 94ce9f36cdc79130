package domain

import (
	"io"
	"time"
)

// Logger defines logging operations.
type Logger interface {
	// Debug logs a debug message.
	Debug(format string, args ...any)

	// Info logs an info message.
	Info(format string, args ...any)

	// Warn logs a warning message.
	Warn(format string, args ...any)

	// Error logs an error message.
	Error(format string, args ...any)

	// Close closes the logger.
	Close() error
}

// Reporter defines best-effort error reporting. Implementations must never
// block the caller on delivery nor alter the error being reported.
type Reporter interface {
	// CaptureError reports an error returned by a command.
	CaptureError(err error, tags map[string]string)

	// CapturePanic reports a recovered panic value.
	CapturePanic(value any, tags map[string]string)

	// Flush waits up to timeout for buffered reports to be delivered.
	Flush(timeout time.Duration) bool
}

// Journal records command invocations.
type Journal interface {
	// Begin records the start of an invocation and returns its entry ID.
	Begin(invocationID, command string, startedAt time.Time) (int64, error)

	// Finish records the outcome of a previously begun invocation.
	Finish(id int64, status RunStatus, runErr error, finishedAt time.Time) error

	// Recent returns the newest entries, newest first.
	Recent(limit int) ([]Run, error)

	// Close closes the journal.
	Close() error
}

// Styler defines text styling operations.
type Styler interface {
	// Enabled returns true if styling is enabled.
	Enabled() bool

	// Command styles a command name.
	Command(text string) string

	// Error styles text as error.
	Error(text string) string

	// Muted styles text as muted.
	Muted(text string) string
}

// Application holds the process-wide dependencies built at startup.
type Application struct {
	Settings Settings
	Logger   Logger
	Reporter Reporter
	Journal  Journal
	Styler   Styler
	Stdout   io.Writer
	Stderr   io.Writer
}
