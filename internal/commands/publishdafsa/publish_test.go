package publishdafsa

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	published string
	uploaded  []byte
	reviewed  bool
}

func (f *fixture) start(t *testing.T, prepare string) *Publisher {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/github/repos/publicsuffix/list/commits", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "public_suffix_list.dat", r.URL.Query().Get("path"))
		_, _ = io.WriteString(w, `[{"sha": "abc123"}]`)
	})
	mux.HandleFunc("/list.dat", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "com\norg\n")
	})
	mux.HandleFunc("/v1/buckets/main-workspace/collections/public-suffix-list/records/tld-dafsa", func(w http.ResponseWriter, r *http.Request) {
		if f.published == "" {
			http.Error(w, `{"code": 404}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"data": {"id": "tld-dafsa", "commit-hash": "`+f.published+`"}}`)
	})
	mux.HandleFunc("/v1/buckets/main-workspace/collections/public-suffix-list/records/tld-dafsa/attachment", func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("attachment")
		require.NoError(t, err)
		f.uploaded, _ = io.ReadAll(file)
		require.JSONEq(t, `{"commit-hash": "abc123"}`, r.FormValue("data"))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/v1/buckets/main-workspace/collections/public-suffix-list", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		f.reviewed = true
		_, _ = io.WriteString(w, `{"data": {}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p, err := FromConfig(srv.URL+"/v1", Config{
		GitHubAPIURL:       srv.URL + "/github",
		ListURL:            srv.URL + "/list.dat",
		PrepareTLDsCommand: prepare,
		WorkDir:            t.TempDir(),
	})
	require.NoError(t, err)
	p.Logger = log.NopLogger{}
	return p
}

// writeScript creates a converter that copies its input to the --bin output.
func writeScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	path := filepath.Join(t.TempDir(), "prepare.sh")
	script := "#!/bin/sh\n[ \"$2\" = \"--bin\" ] || exit 3\ncp \"$1\" \"$3\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRun_UpToDate(t *testing.T) {
	f := &fixture{published: "abc123"}
	p := f.start(t, "false")

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Published)
	require.Nil(t, f.uploaded)
	require.False(t, f.reviewed)
}

func TestRun_Publishes(t *testing.T) {
	f := &fixture{}
	p := f.start(t, "sh "+writeScript(t))

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, "abc123", result.CommitHash)
	require.Equal(t, "com\norg\n", string(f.uploaded))
	require.True(t, f.reviewed)
}

func TestRun_ConverterFailure(t *testing.T) {
	f := &fixture{published: "old"}
	p := f.start(t, "sh -c 'echo broken >&2; exit 1' converter")

	_, err := p.Run(context.Background())
	require.ErrorContains(t, err, "broken")
	require.Nil(t, f.uploaded)
}

func TestFromConfig_EmptyCommand(t *testing.T) {
	_, err := FromConfig("http://localhost:8888/v1", Config{PrepareTLDsCommand: "  "})
	require.ErrorContains(t, err, "PREPARE_TLDS_COMMAND")
}
