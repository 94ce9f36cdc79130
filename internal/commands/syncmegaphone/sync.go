// Package syncmegaphone keeps the Megaphone broadcast of Remote Settings in
// step with the server's monitor/changes timestamp, so that push clients are
// told to sync.
package syncmegaphone

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/config"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/kinto"
)

const (
	Name    = "sync_megaphone"
	Summary = "Send the Remote Settings changes timestamp to Megaphone."
)

// MonitorChanges is the collection whose timestamp is broadcast.
var MonitorChanges = kinto.CollectionRef{Bucket: "monitor", Collection: "changes"}

// Config is read from the environment. Event keys of the same name in lower
// case take precedence.
type Config struct {
	MegaphoneURL             string `env:"MEGAPHONE_URL"`
	MegaphoneReaderAuth      string `env:"MEGAPHONE_READER_AUTH"`
	MegaphoneBroadcasterAuth string `env:"MEGAPHONE_BROADCASTER_AUTH"`
	BroadcasterID            string `env:"BROADCASTER_ID" envDefault:"remote-settings"`
	ChannelID                string `env:"CHANNEL_ID" envDefault:"monitor_changes"`
}

// Result summarizes one run.
type Result struct {
	RemoteSettings string `json:"remote_settings"`
	Megaphone      string `json:"megaphone"`
	Updated        bool   `json:"updated"`
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

	megaphoneURL := event.String("megaphone_url", cfg.MegaphoneURL)
	if megaphoneURL == "" {
		return nil, fmt.Errorf("%s: MEGAPHONE_URL is not set", Name)
	}

	broadcaster := event.String("broadcaster_id", cfg.BroadcasterID)
	channel := event.String("channel_id", cfg.ChannelID)
	m := &Megaphone{
		URL:             megaphoneURL,
		ReaderAuth:      event.String("megaphone_reader_auth", cfg.MegaphoneReaderAuth),
		BroadcasterAuth: event.String("megaphone_broadcaster_auth", cfg.MegaphoneBroadcasterAuth),
		BroadcastID:     broadcaster + "/" + channel,
	}
	return Sync(ctx, client, m, ictx.Logger)
}

// Sync compares both versions and pushes the Remote Settings one when they
// differ.
func Sync(ctx context.Context, client *kinto.Client, m *Megaphone, logger domain.Logger) (*Result, error) {
	changeset, err := client.Changeset(ctx, MonitorChanges, 0)
	if err != nil {
		return nil, fmt.Errorf("read %s timestamp: %w", MonitorChanges, err)
	}
	rsVersion := strconv.FormatInt(changeset.Timestamp, 10)

	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{RemoteSettings: rsVersion, Megaphone: current}
	if current == rsVersion {
		logger.Info("megaphone is up to date (%s)", rsVersion)
		return result, nil
	}

	logger.Info("megaphone is at %q, sending %s", current, rsVersion)
	if err := m.SetVersion(ctx, rsVersion); err != nil {
		return nil, err
	}
	result.Updated = true
	return result, nil
}
