package usage

import (
	"fmt"
	"strings"
)

// UnknownCommand is returned when the first token does not name a known command.
// Suggestions, when given, are appended as a "did you mean" hint.
func UnknownCommand(command string, suggestions ...string) *Error {
	msg := fmt.Sprintf("rslambdas: unknown command '%s'. See 'rslambdas --help'.", command)
	if len(suggestions) > 0 {
		msg += "\n\nThe most similar commands are:\n\t" + strings.Join(suggestions, "\n\t")
	}
	return &Error{
		Kind:    ErrUnknownCommand,
		Message: msg,
		Subject: command,
	}
}
