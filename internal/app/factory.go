package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/entrypoints"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/journal"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/reporting"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/ui/style"
)

// FlushTimeout bounds how long Close waits for pending reports.
const FlushTimeout = 2 * time.Second

// Options configures the application factory.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	// ColorEnabled requests styled output; NO_COLOR still wins.
	ColorEnabled bool

	// Registry replaces the built-in command set.
	Registry *dispatchers.Registry

	// Reporter replaces the one derived from SENTRY_DSN.
	Reporter domain.Reporter

	Release string
}

// DefaultOptions writes to the process streams.
func DefaultOptions() Options {
	return Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// App is the wired application.
type App struct {
	*domain.Application

	Log         *log.Logger
	Dispatcher  *dispatchers.Dispatcher
	Entrypoints *entrypoints.Set
}

// Load reads settings from .env and the environment, then builds the app.
func Load(opts Options) (*App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(settings, opts)
}

// New creates an App with all dependencies wired up.
func New(settings domain.Settings, opts Options) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	logger := log.New(opts.Stderr, log.ParseLevel(settings.LogLevel), log.ParseFormat(settings.LogFormat))

	reporter := opts.Reporter
	if reporter == nil && settings.ReportingEnabled() {
		s, err := reporting.NewSentry(reporting.Options{
			DSN:         settings.SentryDSN,
			Environment: settings.SentryEnv,
			Release:     opts.Release,
		})
		if err != nil {
			return nil, err
		}
		reporter = s
	}
	reporter = reporting.OrNop(reporter)

	style.Init(opts.ColorEnabled && !settings.ColorDisabled())

	dispatchOpts := []dispatchers.Option{
		dispatchers.WithServer(settings.Server),
		dispatchers.WithReporter(reporter),
		dispatchers.WithLogger(logger),
	}

	a := &App{
		Application: &domain.Application{
			Settings: settings,
			Logger:   logger,
			Reporter: reporter,
			Styler:   style.NewStyler(),
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		},
		Log: logger,
	}

	if settings.JournalPath != "" {
		j, err := journal.Open(settings.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.Journal = j
		dispatchOpts = append(dispatchOpts, dispatchers.WithJournal(j))
	}

	registry := opts.Registry
	if registry == nil {
		registry = commands.Registry()
	}
	a.Dispatcher = dispatchers.New(registry, dispatchOpts...)
	a.Entrypoints = entrypoints.New(a.Dispatcher)
	return a, nil
}

// NewForTesting creates an App writing to the given buffers, with no
// reporting, no journal and no styling.
func NewForTesting(stdout, stderr io.Writer, registry *dispatchers.Registry) *App {
	a, err := New(domain.Settings{Server: domain.DefaultServer, LogLevel: "error"}, Options{
		Stdout:   stdout,
		Stderr:   stderr,
		Registry: registry,
		Reporter: reporting.Nop{},
	})
	if err != nil {
		panic(err)
	}
	a.Styler = style.NopStyler{}
	return a
}

// Close flushes pending reports and releases resources.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.Reporter != nil && !a.Reporter.Flush(FlushTimeout) {
		a.Log.Warn("reporting: timed out flushing events")
	}
	if a.Journal != nil {
		_ = a.Journal.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Close()
	}
	return nil
}
