package refreshsignature

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeServer struct {
	mu          sync.Mutex
	collections map[string]string
	patched     []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/v1/" {
		_, _ = io.WriteString(w, `{"capabilities": {"signer": {"resources": [
			{"source": {"bucket": "main-workspace", "collection": "fresh"}, "destination": {"bucket": "main", "collection": "fresh"}},
			{"source": {"bucket": "main-workspace", "collection": "stale"}, "destination": {"bucket": "main", "collection": "stale"}},
			{"source": {"bucket": "main-workspace", "collection": "wip"}, "destination": {"bucket": "main", "collection": "wip"}},
			{"source": {"bucket": "main-workspace", "collection": "broken"}, "destination": {"bucket": "main", "collection": "broken"}}
		]}}}`)
		return
	}

	body, ok := f.collections[r.URL.Path]
	if !ok {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodPatch {
		var payload map[string]map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["data"]["status"] == "to-resign" {
			f.patched = append(f.patched, r.URL.Path)
		}
	}
	_, _ = io.WriteString(w, body)
}

func TestRefresher_Run(t *testing.T) {
	fake := &fakeServer{collections: map[string]string{
		"/v1/buckets/main-workspace/collections/fresh": `{"data": {"status": "signed", "last_signature_date": "2024-03-08T10:00:00+00:00"}}`,
		"/v1/buckets/main-workspace/collections/stale": `{"data": {"status": "signed", "last_signature_date": "2024-02-20T10:00:00.123456"}}`,
		"/v1/buckets/main-workspace/collections/wip":   `{"data": {"status": "work-in-progress"}}`,
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := kinto.New(srv.URL + "/v1")
	require.NoError(t, err)

	r := &Refresher{
		Client: client,
		MaxAge: 7 * 24 * time.Hour,
		Now:    func() time.Time { return now },
		Logger: log.NopLogger{},
	}

	result, err := r.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "main-workspace/broken")

	require.Equal(t, 4, result.Checked)
	require.Equal(t, []string{"main-workspace/stale"}, result.Refreshed)
	require.Equal(t, []string{"main-workspace/fresh", "main-workspace/wip"}, result.Skipped)
	require.Equal(t, []string{"/v1/buckets/main-workspace/collections/stale"}, fake.patched)
}

func TestRefresher_NoSigner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"capabilities": {}}`)
	}))
	defer srv.Close()

	client, err := kinto.New(srv.URL)
	require.NoError(t, err)

	_, err = (&Refresher{Client: client, Now: time.Now, Logger: log.NopLogger{}}).Run(context.Background())
	require.ErrorContains(t, err, "no signer capability")
}

func TestParseSignatureDate(t *testing.T) {
	got, err := parseSignatureDate("2024-02-20T10:00:00.123456")
	require.NoError(t, err)
	require.Equal(t, 2024, got.Year())

	_, err = parseSignatureDate("yesterday")
	require.Error(t, err)
}
