// Package cli implements the rslambdas command line: help, the interactive
// picker, and running one command by name.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/app"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/completions"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/dispatchers"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/format"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/ui/picker"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/usage"
	"golang.org/x/term"
)

// Version is set at build time.
var Version = "dev"

// Deps are the process facilities Run needs.
type Deps struct {
	Stdout     io.Writer
	Stderr     io.Writer
	IsTerminal func() bool
	NewApp     func(app.Options) (*app.App, error)
	Pick       func([]picker.Item) (string, error)
}

// DefaultDeps wires Run to the process terminal and the interactive picker.
func DefaultDeps() Deps {
	return Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		NewApp: app.Load,
		Pick: func(items []picker.Item) (string, error) {
			return picker.Run(items, os.Stdin, os.Stdout)
		},
	}
}

// Main runs the command line and returns the process exit code.
func Main(argv []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, argv, DefaultDeps())
}

// Run is Main with explicit dependencies. argv[0] names the command to run;
// an empty argv, "help", "--help" and "-h" print the help, and the root
// flags --version, --interactive, --completions and --history are honored
// only in that position. Any other first token is an unknown command.
func Run(ctx context.Context, argv []string, deps Deps) int {
	head, rest := splitArgs(argv)
	flags := dispatchers.NewParsedFlags(extractFlags(rest))

	if bad, ok := flags.Validate(validFlags()); !ok {
		return fail(deps.Stderr, usage.InvalidFlag(bad))
	}
	format := flags.String("--format", dispatchers.FormatText)
	if !dispatchers.IsHelpFormat(format) {
		return fail(deps.Stderr, usage.InvalidFormat(format, dispatchers.HelpFormats...))
	}

	if head == "--version" || head == "-v" {
		_, _ = fmt.Fprintf(deps.Stdout, "rslambdas version %s\n", Version)
		return 0
	}

	a, err := deps.NewApp(app.Options{
		Stdout:       deps.Stdout,
		Stderr:       deps.Stderr,
		ColorEnabled: deps.IsTerminal() && !flags.Has("--no-color"),
		Release:      Version,
	})
	if err != nil {
		return fail(deps.Stderr, err)
	}
	defer func() { _ = a.Close() }()

	helpOpts := dispatchers.HelpOptions{Format: format, Styler: a.Styler}
	registry := a.Dispatcher.Registry()
	root := dispatchers.NewParsedFlags([]string{head})

	switch {
	case len(argv) == 0 || isHelp(head):
		if flags.Has("--interactive") || flags.Has("-i") {
			return interactive(ctx, a, deps)
		}
		if _, err := dispatchers.ListCommands(a.Stdout, registry, helpOpts); err != nil {
			return fail(a.Stderr, err)
		}
		return 0
	case head == "--interactive" || head == "-i":
		return interactive(ctx, a, deps)
	case root.Has("--completions") || flagHasValue(root, "--completions"):
		return printCompletions(a, root)
	case root.Has("--history") || flagHasValue(root, "--history"):
		return history(a, root)
	}

	if _, ok := a.Entrypoints.Lookup(head); !ok {
		suggestions := dispatchers.FindSimilarCommands(head, a.Entrypoints.Names(), 3)
		ue := usage.UnknownCommand(head, suggestions...)
		_, _ = fmt.Fprintln(a.Stderr, a.Styler.Error(ue.Error()))
		_, _ = dispatchers.ListCommands(a.Stdout, registry, helpOpts)
		return ue.ExitCode()
	}
	return invoke(ctx, a, head)
}

func invoke(ctx context.Context, a *app.App, name string) int {
	entry, _ := a.Entrypoints.Lookup(name)

	result, err := entry(ctx, nil, nil)
	if err != nil {
		_, _ = fmt.Fprintln(a.Stderr, a.Styler.Error(fmt.Sprintf("rslambdas: %s: %v", name, err)))
		return 1
	}
	if result == nil {
		return 0
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fail(a.Stderr, fmt.Errorf("encode %s result: %w", name, err))
	}
	_, _ = fmt.Fprintln(a.Stdout, string(out))
	return 0
}

func interactive(ctx context.Context, a *app.App, deps Deps) int {
	if !deps.IsTerminal() {
		return fail(a.Stderr, usage.NotATerminal("help --interactive"))
	}

	cmds := a.Dispatcher.Registry().List()
	items := make([]picker.Item, len(cmds))
	for i, c := range cmds {
		items[i] = picker.Item{Name: c.Name, Summary: c.Summary}
	}

	chosen, err := deps.Pick(items)
	if errors.Is(err, picker.ErrCancelled) {
		return 0
	}
	if err != nil {
		return fail(a.Stderr, err)
	}
	return invoke(ctx, a, chosen)
}

func history(a *app.App, flags *dispatchers.ParsedFlags) int {
	if a.Journal == nil {
		return fail(a.Stderr, errors.New("rslambdas: --history requires JOURNAL_PATH"))
	}

	limit := 20
	if raw := flags.String("--history", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fail(a.Stderr, usage.InvalidFlag("--history="+raw))
		}
		limit = n
	}

	runs, err := a.Journal.Recent(limit)
	if err != nil {
		return fail(a.Stderr, err)
	}
	f := format.New(a.Settings.DisplayDate, a.Settings.DisplayTime)
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-22s %-8s %s", f.Full(r.StartedAt.Local()), r.Command, r.Status, format.Duration(r.Duration()))
		if r.Error != "" {
			line += "  " + a.Styler.Muted(r.Error)
		}
		_, _ = fmt.Fprintln(a.Stdout, line)
	}
	return 0
}

func printCompletions(a *app.App, flags *dispatchers.ParsedFlags) int {
	shell := completions.Shell(flags.String("--completions", string(completions.RunningShell())))

	def := completions.Definition{Binary: "rslambdas"}
	for _, c := range a.Dispatcher.Registry().List() {
		def.Commands = append(def.Commands, completions.CommandInfo{Name: c.Name, Summary: c.Summary})
	}
	for _, f := range RootFlags {
		def.Flags = append(def.Flags, completions.FlagInfo{Names: f.Names, Description: f.Description, HasValue: f.ValueHint != ""})
	}

	script, err := completions.Generate(shell, def)
	if err != nil {
		return fail(a.Stderr, usage.InvalidFlag("--completions="+string(shell)))
	}
	_, _ = fmt.Fprint(a.Stdout, script)
	return 0
}

func flagHasValue(flags *dispatchers.ParsedFlags, name string) bool {
	return flags.String(name, "") != ""
}

func fail(w io.Writer, err error) int {
	_, _ = fmt.Fprintln(w, err.Error())
	var ue *usage.Error
	if errors.As(err, &ue) {
		return ue.ExitCode()
	}
	return 1
}
