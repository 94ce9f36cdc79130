// Package entrypoints exposes one named function per command, each a thin
// wrapper over Dispatch with a fixed name. Runtimes that bind a handler by
// name (the Lambda runtime, the CLI) resolve through this set.
package entrypoints

import (
	"context"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/backportrecords"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/blockpages"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/publishdafsa"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/refreshsignature"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/syncmegaphone"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
)

// Func is the signature shared by every entrypoint.
type Func func(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error)

// Set binds the entrypoints to a dispatcher.
type Set struct {
	d *dispatchers.Dispatcher
}

// New returns the entrypoints dispatching through d.
func New(d *dispatchers.Dispatcher) *Set {
	return &Set{d: d}
}

// BackportRecords dispatches backport_records.
func (s *Set) BackportRecords(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	return s.d.Dispatch(ctx, backportrecords.Name, event, ictx)
}

// BlockpagesGenerator dispatches blockpages_generator.
func (s *Set) BlockpagesGenerator(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	return s.d.Dispatch(ctx, blockpages.Name, event, ictx)
}

// PublishDafsa dispatches publish_dafsa.
func (s *Set) PublishDafsa(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	return s.d.Dispatch(ctx, publishdafsa.Name, event, ictx)
}

// RefreshSignature dispatches refresh_signature.
func (s *Set) RefreshSignature(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	return s.d.Dispatch(ctx, refreshsignature.Name, event, ictx)
}

// SyncMegaphone dispatches sync_megaphone.
func (s *Set) SyncMegaphone(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	return s.d.Dispatch(ctx, syncmegaphone.Name, event, ictx)
}

func (s *Set) table() map[string]Func {
	return map[string]Func{
		backportrecords.Name:  s.BackportRecords,
		blockpages.Name:       s.BlockpagesGenerator,
		publishdafsa.Name:     s.PublishDafsa,
		refreshsignature.Name: s.RefreshSignature,
		syncmegaphone.Name:    s.SyncMegaphone,
	}
}

// Lookup returns the entrypoint named name.
func (s *Set) Lookup(name string) (Func, bool) {
	f, ok := s.table()[name]
	return f, ok
}

// Names returns the entrypoint names in listing order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.table()))
	for _, c := range s.d.Registry().List() {
		if _, ok := s.Lookup(c.Name); ok {
			names = append(names, c.Name)
		}
	}
	return names
}
