// Package completions generates shell completion scripts for rslambdas.
package completions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Shell names a supported shell.
type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// Shells lists the supported shells.
var Shells = []Shell{ShellBash, ShellZsh, ShellFish}

// CommandInfo is one completable command.
type CommandInfo struct {
	Name    string
	Summary string
}

// FlagInfo is one completable flag.
type FlagInfo struct {
	Names       []string
	Description string
	HasValue    bool
}

// Definition is everything a script completes.
type Definition struct {
	Binary   string
	Commands []CommandInfo
	Flags    []FlagInfo
}

// RunningShell guesses the user's shell from $SHELL, defaulting to bash.
func RunningShell() Shell {
	switch filepath.Base(os.Getenv("SHELL")) {
	case "zsh":
		return ShellZsh
	case "fish":
		return ShellFish
	default:
		return ShellBash
	}
}

// Generate returns the completion script for shell.
func Generate(shell Shell, def Definition) (string, error) {
	if def.Binary == "" {
		def.Binary = "rslambdas"
	}
	switch shell {
	case ShellBash:
		return GenerateBash(def), nil
	case ShellZsh:
		return GenerateZsh(def), nil
	case ShellFish:
		return GenerateFish(def), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s", shell)
	}
}

func (s Definition) words() []string {
	words := []string{"help"}
	for _, c := range s.Commands {
		words = append(words, c.Name)
	}
	return words
}

func (s Definition) flagWords() []string {
	var words []string
	for _, f := range s.Flags {
		for _, n := range f.Names {
			if f.HasValue {
				n += "="
			}
			words = append(words, n)
		}
	}
	return words
}

func funcName(binary string) string {
	return "_" + strings.NewReplacer("-", "_", ".", "_").Replace(binary)
}

// GenerateBash returns a bash completion script.
func GenerateBash(s Definition) string {
	fn := funcName(s.Binary) + "_completions"

	var b strings.Builder
	fmt.Fprintf(&b, "# %s bash completion script\n\n", s.Binary)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(s.flagWords(), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(s.words(), " "))
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "complete -F %s %s\n", fn, s.Binary)
	return b.String()
}

func zshEscape(s string) string {
	return strings.NewReplacer(`'`, `'\''`, ":", `\:`, "[", `\[`, "]", `\]`).Replace(s)
}

// GenerateZsh returns a zsh completion script.
func GenerateZsh(s Definition) string {
	fn := funcName(s.Binary)

	var b strings.Builder
	fmt.Fprintf(&b, "#compdef %s\n\n", s.Binary)
	fmt.Fprintf(&b, "%s() {\n", fn)
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	b.WriteString("        'help:Show available commands'\n")
	for _, c := range s.Commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", zshEscape(c.Name), zshEscape(c.Summary))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    _arguments \\\n")
	for _, f := range s.Flags {
		for _, n := range f.Names {
			value := ""
			if f.HasValue {
				value = "=-:value:"
			}
			fmt.Fprintf(&b, "        '%s[%s]%s' \\\n", n, zshEscape(f.Description), value)
		}
	}
	b.WriteString("        '1: :->command'\n\n")
	b.WriteString("    case $state in\n")
	b.WriteString("        command) _describe 'command' commands ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "compdef %s %s\n", fn, s.Binary)
	return b.String()
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// GenerateFish returns a fish completion script.
func GenerateFish(s Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s fish completion script\n\n", s.Binary)
	fmt.Fprintf(&b, "complete -c %s -f\n", s.Binary)
	fmt.Fprintf(&b, "complete -c %s -n '__fish_use_subcommand' -a help -d 'Show available commands'\n", s.Binary)
	for _, c := range s.Commands {
		fmt.Fprintf(&b, "complete -c %s -n '__fish_use_subcommand' -a %s -d '%s'\n", s.Binary, c.Name, fishEscape(c.Summary))
	}
	for _, f := range s.Flags {
		var opts []string
		for _, n := range f.Names {
			switch {
			case strings.HasPrefix(n, "--"):
				opts = append(opts, "-l "+strings.TrimPrefix(n, "--"))
			case strings.HasPrefix(n, "-"):
				opts = append(opts, "-s "+strings.TrimPrefix(n, "-"))
			}
		}
		if f.HasValue {
			opts = append(opts, "-r")
		}
		fmt.Fprintf(&b, "complete -c %s %s -d '%s'\n", s.Binary, strings.Join(opts, " "), fishEscape(f.Description))
	}
	return b.String()
}
