// Package blockpages renders the public pages describing each blocked add-on.
package blockpages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
)

const (
	Name    = "blockpages_generator"
	Summary = "Generate the blocked add-ons pages from the blocklist records."
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Record IDs become file names, so only plain IDs get a page.
var pageID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const indexPage = "index"

// Config is read from the environment.
type Config struct {
	Bucket     string `env:"BLOCKPAGES_BUCKET" envDefault:"blocklists"`
	Collection string `env:"BLOCKPAGES_COLLECTION" envDefault:"addons"`
	OutputDir  string `env:"BLOCKPAGES_OUTPUT_DIR" envDefault:"blockpages"`
}

// Entry is one blocked add-on as rendered.
type Entry struct {
	ID      string
	GUID    string
	Name    string
	Why     string
	Who     string
	Bug     string
	Created string
	Page    string
}

// Result summarizes one run.
type Result struct {
	OutputDir string `json:"output_dir"`
	Pages     int    `json:"pages"`
	Skipped   int    `json:"skipped"`
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
	client, err := kinto.New(server, kinto.WithUserAgent(kinto.UserAgent(Name)))
	if err != nil {
		return nil, err
	}

	g := &Generator{
		Client:    client,
		Source:    kinto.CollectionRef{Bucket: cfg.Bucket, Collection: cfg.Collection},
		OutputDir: event.String("output_dir", cfg.OutputDir),
		Now:       time.Now,
		Logger:    ictx.Logger,
	}
	return g.Run(ctx)
}

// Generator holds the dependencies of one run.
type Generator struct {
	Client    *kinto.Client
	Source    kinto.CollectionRef
	OutputDir string
	Now       func() time.Time
	Logger    domain.Logger
}

// Run fetches the blocklist and writes index.html plus one page per entry.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	records, err := g.Client.Records(ctx, g.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.Source, err)
	}

	entries := make([]Entry, 0, len(records))
	skipped := 0
	for _, r := range records {
		if !validPageID(r.ID()) {
			g.Logger.Warn("skipping record with unusable id %q", r.ID())
			skipped++
			continue
		}
		entries = append(entries, toEntry(r))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	if err := os.MkdirAll(g.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	for _, e := range entries {
		if err := render(filepath.Join(g.OutputDir, e.Page), "entry.html", e); err != nil {
			return nil, err
		}
	}

	index := struct {
		GeneratedAt time.Time
		Entries     []Entry
	}{g.Now().UTC(), entries}
	if err := render(filepath.Join(g.OutputDir, "index.html"), "index.html", index); err != nil {
		return nil, err
	}

	g.Logger.Info("rendered %d pages into %s", len(entries), g.OutputDir)
	return &Result{OutputDir: g.OutputDir, Pages: len(entries) + 1, Skipped: skipped}, nil
}

func validPageID(id string) bool {
	return id != indexPage && pageID.MatchString(id)
}

func toEntry(r kinto.Record) Entry {
	details, _ := r["details"].(map[string]any)
	str := func(key string) string {
		s, _ := details[key].(string)
		return s
	}

	e := Entry{
		ID:      r.ID(),
		GUID:    r.String("guid"),
		Name:    str("name"),
		Why:     str("why"),
		Who:     str("who"),
		Bug:     str("bug"),
		Created: str("created"),
		Page:    r.ID() + ".html",
	}
	if e.Name == "" {
		e.Name = e.GUID
	}
	if e.Name == "" {
		e.Name = e.ID
	}
	return e
}

func render(path, name string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := templates.ExecuteTemplate(f, name, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
