package reporting

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
)

// Options configures the Sentry reporter.
type Options struct {
	DSN         string
	Environment string
	Release     string
	// BeforeSend, when set, is called for every event; returning nil drops it.
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// Sentry reports to a Sentry project through its own hub, so that nothing in
// the process depends on the SDK's global state.
type Sentry struct {
	hub *sentry.Hub
}

// NewSentry creates a reporter for the given DSN.
func NewSentry(opts Options) (*Sentry, error) {
	if opts.DSN == "" {
		return nil, errors.New("sentry: empty DSN")
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		BeforeSend:       opts.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureError reports err with the given tags.
func (s *Sentry) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value with the given tags.
func (s *Sentry) CapturePanic(value any, tags map[string]string) {
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelFatal)
		s.hub.Recover(value)
	})
}

// Flush waits for buffered events to be sent.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

var _ domain.Reporter = (*Sentry)(nil)
