package dispatchers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/ui/style"
	"gopkg.in/yaml.v3"
)

// Help output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// HelpFormats lists the values accepted by --format.
var HelpFormats = []string{FormatText, FormatYAML}

// IsHelpFormat reports whether f is a supported help format.
func IsHelpFormat(f string) bool {
	for _, known := range HelpFormats {
		if f == known {
			return true
		}
	}
	return false
}

// HelpOptions configures ListCommands.
type HelpOptions struct {
	// Format is FormatText (default) or FormatYAML.
	Format string
	// Styler renders command names; nil means style.NopStyler.
	Styler domain.Styler
}

type listedCommand struct {
	Name    string `yaml:"name"`
	Summary string `yaml:"summary"`
}

// ListCommands writes the help block for every registered command to w and
// returns the commands in the order they were listed.
func ListCommands(w io.Writer, r *Registry, opts HelpOptions) ([]Command, error) {
	cmds := r.List()

	var out bytes.Buffer
	switch opts.Format {
	case FormatYAML:
		listed := make([]listedCommand, len(cmds))
		for i, c := range cmds {
			listed[i] = listedCommand{Name: c.Name, Summary: c.Summary}
		}
		enc := yaml.NewEncoder(&out)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"commands": listed}); err != nil {
			return nil, fmt.Errorf("encode help: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode help: %w", err)
		}
	case FormatText, "":
		styler := opts.Styler
		if styler == nil {
			styler = style.NopStyler{}
		}

		out.WriteString("\nRemote Settings lambdas.\n\n")
		out.WriteString("Available commands:\n\n")
		for _, c := range cmds {
			fmt.Fprintf(&out, " - %s: %s\n", styler.Command(c.Name), c.Summary)
		}
		out.WriteString("\n")
	default:
		return nil, fmt.Errorf("help: unknown format %q", opts.Format)
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return nil, err
	}
	return cmds, nil
}
