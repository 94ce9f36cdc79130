package dispatchers

import (
	"context"
	"fmt"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/invocation"
)

// Handler performs one command. Its result is returned to the caller of
// Dispatch unchanged.
type Handler func(ctx context.Context, event invocation.Event, ictx *invocation.Context) (any, error)

// Command binds a name to its handler and the one-line summary shown in help.
type Command struct {
	Name    string
	Summary string
	Handler Handler
}

func (c Command) label() string {
	if c.Name == "" {
		return "(anonymous)"
	}
	return c.Name
}

// Registry is the static set of known commands, in registration order.
type Registry struct {
	commands map[string]Command
	order    []string
}

// NewRegistry creates a registry holding cmds. It panics like Register.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	for _, c := range cmds {
		r.Register(c)
	}
	return r
}

// Register adds cmd. It panics if cmd has no name, handler or summary, or if
// the name is already registered: the registry is built at startup and a bad
// entry is a programming error.
func (r *Registry) Register(cmd Command) {
	switch {
	case cmd.Name == "":
		panic("dispatchers: command without a name")
	case cmd.Handler == nil:
		panic(fmt.Sprintf("dispatchers: command %s has no handler", cmd.Name))
	case cmd.Summary == "":
		panic(fmt.Sprintf("dispatchers: command %s has no summary", cmd.Name))
	}
	if _, exists := r.commands[cmd.Name]; exists {
		panic(fmt.Sprintf("dispatchers: command %s already registered", cmd.Name))
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// List returns all commands in registration order.
func (r *Registry) List() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Names returns all command names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
