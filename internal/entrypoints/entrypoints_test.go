package entrypoints

import (
	"context"
	"testing"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/commands"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/stretchr/testify/require"
)

type call struct {
	name  string
	event invocation.Event
	ictx  *invocation.Context
}

// stubRegistry mirrors the real command names with recording handlers.
func stubRegistry(calls *[]call) *dispatchers.Registry {
	r := dispatchers.NewRegistry()
	for _, c := range commands.All() {
		name := c.Name
		r.Register(dispatchers.Command{
			Name:    name,
			Summary: c.Summary,
			Handler: func(_ context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
				*calls = append(*calls, call{name, event, ictx})
				return name + " result", nil
			},
		})
	}
	return r
}

func TestEntrypoints_EquivalentToDispatch(t *testing.T) {
	var calls []call
	d := dispatchers.New(stubRegistry(&calls), dispatchers.WithServer("http://rs.test/v1"))
	set := New(d)

	for _, name := range set.Names() {
		t.Run(name, func(t *testing.T) {
			calls = nil
			f, ok := set.Lookup(name)
			require.True(t, ok)

			viaEntrypoint, err := f(context.Background(), nil, nil)
			require.NoError(t, err)
			viaDispatch, err := d.Dispatch(context.Background(), name, nil, nil)
			require.NoError(t, err)

			require.Equal(t, viaDispatch, viaEntrypoint)
			require.Len(t, calls, 2)
			require.Equal(t, name, calls[0].name)
			require.Equal(t, calls[1].event, calls[0].event)
			require.Equal(t, invocation.Event{"server": "http://rs.test/v1"}, calls[0].event)
			require.NotNil(t, calls[0].ictx.Reporter)
		})
	}
}

func TestEntrypoints_NamedMethods(t *testing.T) {
	var calls []call
	set := New(dispatchers.New(stubRegistry(&calls)))
	ctx := context.Background()

	_, _ = set.BackportRecords(ctx, nil, nil)
	_, _ = set.BlockpagesGenerator(ctx, nil, nil)
	_, _ = set.PublishDafsa(ctx, nil, nil)
	_, _ = set.RefreshSignature(ctx, nil, nil)
	_, _ = set.SyncMegaphone(ctx, nil, nil)

	var names []string
	for _, c := range calls {
		names = append(names, c.name)
	}
	require.Equal(t, []string{
		"backport_records", "blockpages_generator", "publish_dafsa", "refresh_signature", "sync_megaphone",
	}, names)
}

func TestEntrypoints_Names(t *testing.T) {
	set := New(dispatchers.New(commands.Registry()))
	require.Equal(t, commands.Registry().Names(), set.Names())

	_, ok := set.Lookup("bogus")
	require.False(t, ok)
}
