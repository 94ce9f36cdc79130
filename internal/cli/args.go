package cli

// splitArgs separates the command name from the tokens that follow it.
// The first token is taken as is, even when empty or dash-prefixed.
func splitArgs(argv []string) (head string, rest []string) {
	if len(argv) == 0 {
		return "", []string{}
	}
	return argv[0], append([]string{}, argv[1:]...)
}

func extractFlags(args []string) []string {
	flags := []string{}
	for _, a := range args {
		if len(a) > 0 && a[0] == '-' {
			flags = append(flags, a)
		}
	}
	return flags
}

func isHelp(head string) bool {
	return head == "help" || head == "--help" || head == "-h"
}
