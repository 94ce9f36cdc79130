// Package commands is the static collection of Remote Settings lambdas.
package commands

import (
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/backportrecords"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/blockpages"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/publishdafsa"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/refreshsignature"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands/syncmegaphone"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
)

// All returns every command, sorted by name.
func All() []dispatchers.Command {
	return []dispatchers.Command{
		{Name: backportrecords.Name, Summary: backportrecords.Summary, Handler: backportrecords.Handler},
		{Name: blockpages.Name, Summary: blockpages.Summary, Handler: blockpages.Handler},
		{Name: publishdafsa.Name, Summary: publishdafsa.Summary, Handler: publishdafsa.Handler},
		{Name: refreshsignature.Name, Summary: refreshsignature.Summary, Handler: refreshsignature.Handler},
		{Name: syncmegaphone.Name, Summary: syncmegaphone.Summary, Handler: syncmegaphone.Handler},
	}
}

// Registry returns a fresh registry holding All.
func Registry() *dispatchers.Registry {
	return dispatchers.NewRegistry(All()...)
}
