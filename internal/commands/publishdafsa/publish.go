// Package publishdafsa publishes the Public Suffix List to Remote Settings as
// a DAFSA binary whenever the list changes upstream.
package publishdafsa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v70/github"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
	"github.com/mattn/go-shellwords"
)

const (
	Name    = "publish_dafsa"
	Summary = "Publish the Public Suffix List as a DAFSA binary when it changes upstream."
)

const (
	pslOwner    = "publicsuffix"
	pslRepo     = "list"
	pslFile     = "public_suffix_list.dat"
	recordID    = "tld-dafsa"
	commitField = "commit-hash"
)

// Destination is the collection holding the DAFSA record.
var Destination = kinto.CollectionRef{Bucket: "main-workspace", Collection: "public-suffix-list"}

// Config is read from the environment.
type Config struct {
	Auth               string `env:"AUTH"`
	GitHubToken        string `env:"GITHUB_TOKEN"`
	GitHubAPIURL       string `env:"PUBLISH_DAFSA_GITHUB_API_URL"`
	ListURL            string `env:"PUBLISH_DAFSA_LIST_URL" envDefault:"https://raw.githubusercontent.com/publicsuffix/list/main/public_suffix_list.dat"`
	PrepareTLDsCommand string `env:"PREPARE_TLDS_COMMAND" envDefault:"python3 prepare_tlds.py"`
	WorkDir            string `env:"PUBLISH_DAFSA_WORK_DIR"`
}

// Result summarizes one run.
type Result struct {
	CommitHash string `json:"commit_hash"`
	Published  bool   `json:"published"`
}

// Handler is the command entry.
func Handler(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}

	server, err := event.Server()
	if err != nil {
		return nil, err
	}

	p, err := FromConfig(server, cfg)
	if err != nil {
		return nil, err
	}
	p.Logger = ictx.Logger
	return p.Run(ctx)
}

// Publisher holds the dependencies of one run.
type Publisher struct {
	Kinto   *kinto.Client
	GitHub  *github.Client
	HTTP    *http.Client
	ListURL string
	// Prepare is the converter command line; the input list path, "--bin"
	// and the output path are appended.
	Prepare []string
	WorkDir string
	Logger  domain.Logger
}

// FromConfig builds a Publisher talking to server.
func FromConfig(server string, cfg Config) (*Publisher, error) {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	client, err := kinto.New(server,
		kinto.WithAuth(cfg.Auth),
		kinto.WithHTTPClient(httpClient),
		kinto.WithUserAgent(kinto.UserAgent(Name)),
	)
	if err != nil {
		return nil, err
	}

	gh := github.NewClient(httpClient)
	if cfg.GitHubToken != "" {
		gh = gh.WithAuthToken(cfg.GitHubToken)
	}
	if cfg.GitHubAPIURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.GitHubAPIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid PUBLISH_DAFSA_GITHUB_API_URL: %w", err)
		}
		gh.BaseURL = base
	}

	prepare, err := shellwords.Parse(cfg.PrepareTLDsCommand)
	if err != nil {
		return nil, fmt.Errorf("invalid PREPARE_TLDS_COMMAND: %w", err)
	}
	if len(prepare) == 0 {
		return nil, errors.New("PREPARE_TLDS_COMMAND is empty")
	}

	return &Publisher{
		Kinto:   client,
		GitHub:  gh,
		HTTP:    httpClient,
		ListURL: cfg.ListURL,
		Prepare: prepare,
		WorkDir: cfg.WorkDir,
	}, nil
}

// LatestCommit returns the hash of the last commit touching the list file.
func (p *Publisher) LatestCommit(ctx context.Context) (string, error) {
	commits, _, err := p.GitHub.Repositories.ListCommits(ctx, pslOwner, pslRepo, &github.CommitsListOptions{
		Path:        pslFile,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return "", fmt.Errorf("list %s commits: %w", pslFile, err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("no commit found for %s", pslFile)
	}
	return commits[0].GetSHA(), nil
}

// PublishedCommit returns the commit hash of the published record, "" when
// nothing was published yet.
func (p *Publisher) PublishedCommit(ctx context.Context) (string, error) {
	record, err := p.Kinto.Record(ctx, Destination, recordID)
	if errors.Is(err, kinto.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s record: %w", recordID, err)
	}
	return record.String(commitField), nil
}

// Run publishes a new DAFSA if the upstream list changed.
func (p *Publisher) Run(ctx context.Context) (*Result, error) {
	latest, err := p.LatestCommit(ctx)
	if err != nil {
		return nil, err
	}
	published, err := p.PublishedCommit(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{CommitHash: latest}
	if published == latest {
		p.Logger.Info("%s is up to date (%s)", Destination, latest)
		return result, nil
	}

	dir, err := os.MkdirTemp(p.WorkDir, "dafsa-")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	listPath := filepath.Join(dir, pslFile)
	if err := p.download(ctx, listPath); err != nil {
		return nil, err
	}

	outputPath := filepath.Join(dir, "dafsa.bin")
	if err := p.prepare(ctx, listPath, outputPath); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read dafsa: %w", err)
	}

	p.Logger.Info("publishing dafsa for commit %s (%d bytes)", latest, len(content))
	err = p.Kinto.UploadAttachment(ctx, Destination, recordID, "dafsa.bin",
		"application/octet-stream", content, map[string]any{commitField: latest})
	if err != nil {
		return nil, fmt.Errorf("upload dafsa: %w", err)
	}
	if err := p.Kinto.RequestReview(ctx, Destination, ""); err != nil {
		return nil, fmt.Errorf("request review: %w", err)
	}

	result.Published = true
	return result, nil
}

func (p *Publisher) download(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ListURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("download list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download list: HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("download list: %w", err)
	}
	return f.Close()
}

func (p *Publisher) prepare(ctx context.Context, input, output string) error {
	args := append(append([]string(nil), p.Prepare[1:]...), input, "--bin", output)
	cmd := exec.CommandContext(ctx, p.Prepare[0], args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.Prepare[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
