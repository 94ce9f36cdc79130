// Package invocation defines the payload and auxiliary context handed to
// every command.
package invocation

import (
	"fmt"
	"os"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
)

// ServerKey is the event key holding the Remote Settings base URL.
const ServerKey = "server"

// Event is the opaque input payload of a command invocation.
type Event map[string]any

// DefaultEvent returns the event used when the caller supplies none.
// server falls back to SERVER, then to domain.DefaultServer.
func DefaultEvent(server string) Event {
	if server == "" {
		server = os.Getenv("SERVER")
	}
	if server == "" {
		server = domain.DefaultServer
	}
	return Event{ServerKey: server}
}

// String returns the value at key as a string, or def if absent or not a string.
func (e Event) String(key, def string) string {
	v, ok := e[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// Server returns the Remote Settings base URL carried by the event.
func (e Event) Server() (string, error) {
	s := e.String(ServerKey, "")
	if s == "" {
		return "", fmt.Errorf("event: missing %q", ServerKey)
	}
	return s, nil
}
