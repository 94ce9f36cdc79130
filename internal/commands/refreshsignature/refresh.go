// Package refreshsignature asks Remote Settings to re-sign collections whose
// signature is getting old, so that clients never see an expired one.
package refreshsignature

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
)

const (
	Name    = "refresh_signature"
	Summary = "Refresh the signatures of each collection."
)

// Config is read from the environment.
type Config struct {
	Auth            string `env:"REFRESH_SIGNATURE_AUTH"`
	MaxSignatureAge int    `env:"MAX_SIGNATURE_AGE" envDefault:"7"`
}

// Result summarizes one run.
type Result struct {
	Checked   int      `json:"checked"`
	Refreshed []string `json:"refreshed"`
	Skipped   []string `json:"skipped"`
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
	client, err := kinto.New(server, kinto.WithAuth(cfg.Auth), kinto.WithUserAgent(kinto.UserAgent(Name)))
	if err != nil {
		return nil, err
	}

	r := &Refresher{
		Client: client,
		MaxAge: time.Duration(cfg.MaxSignatureAge) * 24 * time.Hour,
		Now:    time.Now,
		Logger: ictx.Logger,
	}
	return r.Run(ctx)
}

// Refresher holds the dependencies of one run.
type Refresher struct {
	Client *kinto.Client
	MaxAge time.Duration
	Now    func() time.Time
	Logger domain.Logger
}

// Run checks every signed source collection and requests a re-signature of
// those signed more than MaxAge ago. Failures on one collection do not stop
// the others; they are joined into the returned error.
func (r *Refresher) Run(ctx context.Context) (*Result, error) {
	info, err := r.Client.ServerInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("read server capabilities: %w", err)
	}

	resources := info.SignerResources()
	if resources == nil {
		return nil, errors.New("server has no signer capability")
	}

	result := &Result{Refreshed: []string{}, Skipped: []string{}}
	var errs []error
	for _, res := range resources {
		result.Checked++
		refreshed, err := r.refresh(ctx, res.Source)
		switch {
		case err != nil:
			r.Logger.Error("%s: %v", res.Source, err)
			errs = append(errs, fmt.Errorf("%s: %w", res.Source, err))
		case refreshed:
			result.Refreshed = append(result.Refreshed, res.Source.String())
		default:
			result.Skipped = append(result.Skipped, res.Source.String())
		}
	}
	return result, errors.Join(errs...)
}

func (r *Refresher) refresh(ctx context.Context, ref kinto.CollectionRef) (bool, error) {
	metadata, err := r.Client.Collection(ctx, ref)
	if err != nil {
		return false, err
	}

	if status := metadata.String("status"); status != "signed" {
		r.Logger.Info("%s: status is %q, leaving it alone", ref, status)
		return false, nil
	}

	if raw := metadata.String("last_signature_date"); raw != "" {
		signedAt, err := parseSignatureDate(raw)
		if err != nil {
			return false, err
		}
		age := r.Now().Sub(signedAt)
		if age < r.MaxAge {
			r.Logger.Debug("%s: signed %s ago", ref, age.Round(time.Minute))
			return false, nil
		}
	}

	r.Logger.Info("%s: refreshing signature", ref)
	if err := r.Client.PatchCollection(ctx, ref, map[string]any{"status": "to-resign"}); err != nil {
		return false, err
	}
	return true, nil
}

// parseSignatureDate accepts RFC 3339 timestamps with or without a zone.
func parseSignatureDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_signature_date %q", s)
}
