package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/reporting"
	"github.com/stretchr/testify/require"
)

func echoRegistry() *dispatchers.Registry {
	return dispatchers.NewRegistry(dispatchers.Command{
		Name:    "refresh_signature",
		Summary: "Echo the event.",
		Handler: func(_ context.Context, event invocation.Event, _ *invocation.Context) (any, error) {
			return event, nil
		},
	})
}

func TestNew_Defaults(t *testing.T) {
	var stderr bytes.Buffer
	a, err := New(domain.Settings{Server: "http://rs.test/v1", LogLevel: "info"}, Options{Stderr: &stderr, Registry: echoRegistry()})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	require.IsType(t, reporting.Nop{}, a.Reporter)
	require.Nil(t, a.Journal)
	require.False(t, a.Styler.Enabled())

	result, err := a.Entrypoints.RefreshSignature(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, invocation.Event{"server": "http://rs.test/v1"}, result)
	require.Contains(t, stderr.String(), "refresh_signature: started")
}

func TestNew_WithSentry(t *testing.T) {
	a, err := New(domain.Settings{SentryDSN: "https://key@sentry.example.com/1", SentryEnv: "test"}, Options{Registry: echoRegistry()})
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	require.IsType(t, &reporting.Sentry{}, a.Reporter)
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(domain.Settings{SentryDSN: "not a dsn"}, Options{Registry: echoRegistry()})
	require.Error(t, err)
}

func TestNew_WithJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	a, err := New(domain.Settings{JournalPath: path}, Options{Registry: echoRegistry()})
	require.NoError(t, err)

	_, err = a.Dispatcher.Dispatch(context.Background(), "refresh_signature", nil, nil)
	require.NoError(t, err)

	runs, err := a.Journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "refresh_signature", runs[0].Command)
	require.Equal(t, domain.RunSucceeded, runs[0].Status)

	require.NoError(t, a.Close())
}

func TestNewForTesting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	a := NewForTesting(&stdout, &stderr, nil)

	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Reporter)
	require.NotNil(t, a.Styler)
	require.Equal(t, []string{
		"backport_records", "blockpages_generator", "publish_dafsa", "refresh_signature", "sync_megaphone",
	}, a.Entrypoints.Names())
	require.NoError(t, a.Close())
}

func TestClose_Nil(t *testing.T) {
	var a *App
	require.NoError(t, a.Close())
}
