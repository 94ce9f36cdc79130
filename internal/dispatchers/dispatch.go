package dispatchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/reporting"
)

// ErrCommandNotFound is matched by every *LookupError.
var ErrCommandNotFound = errors.New("command not found")

// LookupError reports a command name that does not resolve to a handler.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("dispatch: no command named %q", e.Name)
}

// Is makes errors.Is(err, ErrCommandNotFound) true for lookup errors.
func (e *LookupError) Is(target error) bool {
	return target == ErrCommandNotFound
}

// Dispatcher resolves command names and invokes their handlers with default
// event and context when the caller supplies none.
type Dispatcher struct {
	registry *Registry
	server   string
	reporter domain.Reporter
	logger   *log.Logger
	journal  domain.Journal
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithServer sets the server placed in default events.
func WithServer(server string) Option {
	return func(d *Dispatcher) { d.server = server }
}

// WithReporter sets the reporter placed in default contexts.
func WithReporter(r domain.Reporter) Option {
	return func(d *Dispatcher) { d.reporter = r }
}

// WithLogger sets the base logger; each invocation gets a scoped copy.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithJournal records every invocation in j.
func WithJournal(j domain.Journal) Option {
	return func(d *Dispatcher) { d.journal = j }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New creates a dispatcher over registry.
func New(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		reporter: reporting.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.reporter = reporting.OrNop(d.reporter)
	return d
}

// Registry returns the registry the dispatcher resolves names in.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch resolves name and runs its handler. A nil event or context is
// replaced by the defaults. Unknown names return a *LookupError and invoke
// nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, event invocation.Event, ictx *invocation.Context) (any, error) {
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return nil, &LookupError{Name: name}
	}
	return d.Run(ctx, cmd, event, ictx)
}

// Invoke runs a handler reference directly, without a registry lookup.
func (d *Dispatcher) Invoke(ctx context.Context, h Handler, event invocation.Event, ictx *invocation.Context) (any, error) {
	return d.Run(ctx, Command{Handler: h}, event, ictx)
}

// Run invokes cmd.Handler once. Errors and panics raised by the handler are
// captured by the context's reporter, then propagated unchanged.
func (d *Dispatcher) Run(ctx context.Context, cmd Command, event invocation.Event, ictx *invocation.Context) (result any, err error) {
	name := cmd.label()
	if cmd.Handler == nil {
		return nil, &LookupError{Name: cmd.Name}
	}

	if event == nil {
		event = invocation.DefaultEvent(d.server)
	}
	if ictx == nil {
		ictx = &invocation.Context{}
	}
	scopeLogger := ictx.Logger == nil && d.logger != nil
	ictx.Fill(d.reporter, nil)
	if scopeLogger {
		ictx.Logger = d.logger.With(map[string]any{
			"command":       name,
			"invocation_id": ictx.InvocationID,
		})
	}

	logger := ictx.Logger
	tags := ictx.Tags(name)
	started := d.now()
	runID := d.begin(ictx.InvocationID, name, started)

	logger.Info("%s: started", name)

	defer func() {
		v := recover()
		if v == nil {
			return
		}
		ictx.Reporter.CapturePanic(v, tags)
		logger.Error("%s: panicked after %s: %v", name, d.now().Sub(started), v)
		d.finish(runID, domain.RunPanicked, fmt.Errorf("panic: %v", v))
		panic(v)
	}()

	result, err = cmd.Handler(ctx, event, ictx)
	elapsed := d.now().Sub(started)

	if err != nil {
		ictx.Reporter.CaptureError(err, tags)
		logger.Error("%s: failed after %s: %v", name, elapsed, err)
		d.finish(runID, domain.RunFailed, err)
		return result, err
	}

	logger.Info("%s: done in %s", name, elapsed)
	d.finish(runID, domain.RunSucceeded, nil)
	return result, nil
}

func (d *Dispatcher) begin(invocationID, name string, at time.Time) int64 {
	if d.journal == nil {
		return 0
	}
	id, err := d.journal.Begin(invocationID, name, at)
	if err != nil {
		d.logger.Warn("journal: begin %s: %v", name, err)
		return 0
	}
	return id
}

func (d *Dispatcher) finish(id int64, status domain.RunStatus, runErr error) {
	if d.journal == nil || id == 0 {
		return
	}
	if err := d.journal.Finish(id, status, runErr, d.now()); err != nil {
		d.logger.Warn("journal: finish run %d: %v", id, err)
	}
}
