// Package backportrecords copies the records of one collection into another,
// for example to keep a legacy collection in sync with its replacement.
package backportrecords

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
)

const (
	Name    = "backport_records"
	Summary = "Backport records creations, updates and deletions from one collection to another."
)

// Config is read from the environment. The destination defaults to the
// source bucket and collection when unset.
type Config struct {
	SourceAuth       string `env:"BACKPORT_RECORDS_SOURCE_AUTH"`
	SourceBucket     string `env:"BACKPORT_RECORDS_SOURCE_BUCKET,required"`
	SourceCollection string `env:"BACKPORT_RECORDS_SOURCE_COLLECTION,required"`
	SourceFilters    string `env:"BACKPORT_RECORDS_SOURCE_FILTERS" envDefault:"{}"`
	DestAuth         string `env:"BACKPORT_RECORDS_DEST_AUTH"`
	DestBucket       string `env:"BACKPORT_RECORDS_DEST_BUCKET"`
	DestCollection   string `env:"BACKPORT_RECORDS_DEST_COLLECTION"`
	RequestReview    bool   `env:"BACKPORT_RECORDS_REQUEST_REVIEW" envDefault:"true"`
}

// Result summarizes one run.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// Changed reports whether anything was written.
func (r Result) Changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
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

	b, err := FromConfig(server, cfg)
	if err != nil {
		return nil, err
	}
	b.Logger = ictx.Logger
	return b.Run(ctx)
}

// Backporter holds the dependencies of one run.
type Backporter struct {
	Source        *kinto.Client
	SourceRef     kinto.CollectionRef
	Filters       url.Values
	Dest          *kinto.Client
	DestRef       kinto.CollectionRef
	RequestReview bool
	Logger        domain.Logger
}

// FromConfig builds a Backporter talking to server.
func FromConfig(server string, cfg Config) (*Backporter, error) {
	filters, err := parseFilters(cfg.SourceFilters)
	if err != nil {
		return nil, err
	}

	destAuth := cfg.DestAuth
	if destAuth == "" {
		destAuth = cfg.SourceAuth
	}
	source, err := kinto.New(server, kinto.WithAuth(cfg.SourceAuth), kinto.WithUserAgent(kinto.UserAgent(Name)))
	if err != nil {
		return nil, err
	}
	dest, err := kinto.New(server, kinto.WithAuth(destAuth), kinto.WithUserAgent(kinto.UserAgent(Name)))
	if err != nil {
		return nil, err
	}

	destRef := kinto.CollectionRef{Bucket: cfg.DestBucket, Collection: cfg.DestCollection}
	if destRef.Bucket == "" {
		destRef.Bucket = cfg.SourceBucket
	}
	if destRef.Collection == "" {
		destRef.Collection = cfg.SourceCollection
	}
	sourceRef := kinto.CollectionRef{Bucket: cfg.SourceBucket, Collection: cfg.SourceCollection}
	if sourceRef == destRef {
		return nil, fmt.Errorf("%s: source and destination are both %s", Name, sourceRef)
	}

	return &Backporter{
		Source:        source,
		SourceRef:     sourceRef,
		Filters:       filters,
		Dest:          dest,
		DestRef:       destRef,
		RequestReview: cfg.RequestReview,
	}, nil
}

// parseFilters turns a JSON object into query parameters.
func parseFilters(raw string) (url.Values, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("invalid BACKPORT_RECORDS_SOURCE_FILTERS: %w", err)
	}
	values := url.Values{}
	for k, v := range obj {
		switch v := v.(type) {
		case string:
			values.Set(k, v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			values.Set(k, string(encoded))
		}
	}
	return values, nil
}

// Run applies the differences between source and destination.
func (b *Backporter) Run(ctx context.Context) (*Result, error) {
	sourceRecords, err := b.Source.Records(ctx, b.SourceRef, b.Filters)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.SourceRef, err)
	}
	destRecords, err := b.Dest.Records(ctx, b.DestRef, nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.DestRef, err)
	}

	requests, result := diff(b.DestRef, sourceRecords, destRecords)
	if !result.Changed() {
		b.Logger.Info("%s is in sync with %s", b.DestRef, b.SourceRef)
		return result, nil
	}

	b.Logger.Info("backporting %d created, %d updated, %d deleted records to %s",
		result.Created, result.Updated, result.Deleted, b.DestRef)
	if err := b.Dest.Batch(ctx, requests); err != nil {
		return nil, fmt.Errorf("write %s: %w", b.DestRef, err)
	}

	if b.RequestReview {
		if err := b.Dest.RequestReview(ctx, b.DestRef, "Backported from "+b.SourceRef.String()); err != nil {
			return nil, fmt.Errorf("request review of %s: %w", b.DestRef, err)
		}
	}
	return result, nil
}

// diff returns the batch requests that make dest equal to source.
func diff(destRef kinto.CollectionRef, source, dest []kinto.Record) ([]kinto.BatchRequest, *Result) {
	existing := make(map[string]kinto.Record, len(dest))
	for _, r := range dest {
		existing[r.ID()] = r
	}

	result := &Result{}
	var requests []kinto.BatchRequest
	seen := make(map[string]bool, len(source))
	for _, r := range source {
		seen[r.ID()] = true
		old, ok := existing[r.ID()]
		switch {
		case !ok:
			result.Created++
		case !sameContent(old, r):
			result.Updated++
		default:
			continue
		}
		requests = append(requests, kinto.PutRecord(destRef, r))
	}

	var deleted []string
	for id := range existing {
		if !seen[id] {
			deleted = append(deleted, id)
		}
	}
	sort.Strings(deleted)
	for _, id := range deleted {
		requests = append(requests, kinto.DeleteRecord(destRef, id))
		result.Deleted++
	}
	return requests, result
}

// Server-managed fields are ignored when comparing.
var ignoredFields = map[string]bool{"last_modified": true, "schema": true}

func sameContent(a, b kinto.Record) bool {
	return reflect.DeepEqual(strip(a), strip(b))
}

func strip(r kinto.Record) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if !ignoredFields[k] {
			out[k] = v
		}
	}
	return out
}
