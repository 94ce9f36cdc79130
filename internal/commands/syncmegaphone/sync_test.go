package syncmegaphone

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/stretchr/testify/require"
)

func remoteSettings(t *testing.T, timestamp string) *kinto.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/buckets/monitor/collections/changes/changeset", r.URL.Path)
		_, _ = io.WriteString(w, `{"metadata": {}, "changes": [], "timestamp": `+timestamp+`}`)
	}))
	t.Cleanup(srv.Close)

	c, err := kinto.New(srv.URL + "/v1")
	require.NoError(t, err)
	return c
}

type megaphoneServer struct {
	current string
	puts    []string
}

func (s *megaphoneServer) start(t *testing.T) *Megaphone {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/broadcasts":
			require.Equal(t, "Bearer reader", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"broadcasts": {"remote-settings/monitor_changes": "\"`+s.current+`\""}, "code": 200}`)
		case r.Method == http.MethodPut && r.URL.Path == "/v1/broadcasts/remote-settings/monitor_changes":
			require.Equal(t, "Bearer broadcaster", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			s.puts = append(s.puts, string(body))
			_, _ = io.WriteString(w, `{"code": 200}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return &Megaphone{
		URL:             srv.URL,
		ReaderAuth:      "reader",
		BroadcasterAuth: "broadcaster",
		BroadcastID:     "remote-settings/monitor_changes",
	}
}

func TestSync_UpToDate(t *testing.T) {
	mp := &megaphoneServer{current: "1500"}
	m := mp.start(t)

	result, err := Sync(context.Background(), remoteSettings(t, "1500"), m, log.NopLogger{})
	require.NoError(t, err)
	require.False(t, result.Updated)
	require.Empty(t, mp.puts)
}

func TestSync_SendsNewVersion(t *testing.T) {
	mp := &megaphoneServer{current: "1400"}
	m := mp.start(t)

	result, err := Sync(context.Background(), remoteSettings(t, "1500"), m, log.NopLogger{})
	require.NoError(t, err)
	require.True(t, result.Updated)
	require.Equal(t, "1400", result.Megaphone)
	require.Equal(t, []string{`"1500"`}, mp.puts)
}

func TestMegaphone_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := &Megaphone{URL: srv.URL, BroadcastID: "a/b"}
	_, err := m.Version(context.Background())
	require.ErrorContains(t, err, "HTTP 401")
}

func TestHandler_RequiresMegaphoneURL(t *testing.T) {
	t.Setenv("MEGAPHONE_URL", "")
	_, err := Handler(context.Background(), map[string]any{"server": "http://localhost:8888/v1"}, nil)
	require.ErrorContains(t, err, "MEGAPHONE_URL")
}

func TestHandler_EventOverridesEnvironment(t *testing.T) {
	var agent string
	rs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"metadata": {}, "changes": [], "timestamp": 1700}`)
	}))
	defer rs.Close()

	var gets int
	var putPath, putAuth, putBody string
	mp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			require.Equal(t, "Bearer event-reader", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"broadcasts": {}}`)
		case http.MethodPut:
			putPath = r.URL.Path
			putAuth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			putBody = string(body)
			_, _ = io.WriteString(w, `{"code": 200}`)
		}
	}))
	defer mp.Close()

	t.Setenv("MEGAPHONE_URL", "http://127.0.0.1:1")
	t.Setenv("MEGAPHONE_READER_AUTH", "env-reader")
	t.Setenv("MEGAPHONE_BROADCASTER_AUTH", "env-broadcaster")
	for _, name := range []string{"BROADCASTER_ID", "CHANNEL_ID"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	ictx := invocation.NewContext(nil, log.NopLogger{})
	out, err := Handler(context.Background(), invocation.Event{
		"server":                     rs.URL + "/v1",
		"megaphone_url":              mp.URL,
		"megaphone_reader_auth":      "event-reader",
		"megaphone_broadcaster_auth": "event-broadcaster",
	}, ictx)
	require.NoError(t, err)

	result := out.(*Result)
	require.True(t, result.Updated)
	require.Equal(t, "1700", result.RemoteSettings)
	require.Equal(t, 1, gets)
	require.Equal(t, "/v1/broadcasts/remote-settings/monitor_changes", putPath)
	require.Equal(t, "Bearer event-broadcaster", putAuth)
	require.Equal(t, `"1700"`, putBody)
	require.Equal(t, "remote-settings-lambdas/sync_megaphone", agent)

	t.Setenv("BROADCASTER_ID", "env-broadcaster-id")
	_, err = Handler(context.Background(), invocation.Event{
		"server":                rs.URL + "/v1",
		"megaphone_url":         mp.URL,
		"megaphone_reader_auth": "event-reader",
		"channel_id":            "custom",
	}, ictx)
	require.NoError(t, err)
	require.Equal(t, "/v1/broadcasts/env-broadcaster-id/custom", putPath)
	require.Equal(t, "Bearer env-broadcaster", putAuth)
}
