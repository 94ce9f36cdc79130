package cli

// FlagDescriptor documents one accepted flag.
type FlagDescriptor struct {
	Names       []string
	ValueHint   string
	Description string
}

// RootFlags lists every flag the command line accepts.
var RootFlags = []FlagDescriptor{
	{
		Names:       []string{"--help", "-h"},
		Description: "Show help",
	},
	{
		Names:       []string{"--version", "-v"},
		Description: "Show version",
	},
	{
		Names:       []string{"--no-color"},
		Description: "Disable colored output",
	},
	{
		Names:       []string{"--format"},
		ValueHint:   "<text|yaml>",
		Description: "Help output format",
	},
	{
		Names:       []string{"--interactive", "-i"},
		Description: "Pick the command to run from a list (with help)",
	},
	{
		Names:       []string{"--completions"},
		ValueHint:   "<bash|zsh|fish>",
		Description: "Print the shell completion script",
	},
	{
		Names:       []string{"--history"},
		ValueHint:   "<n>",
		Description: "Show the last invocations recorded in JOURNAL_PATH",
	},
}

func validFlags() map[string]bool {
	valid := make(map[string]bool)
	for _, f := range RootFlags {
		for _, name := range f.Names {
			valid[name] = true
		}
	}
	return valid
}
