package usage

import "fmt"

// InvalidFlag is returned when a flag is not valid in the current context.
func InvalidFlag(flag string) *Error {
	return &Error{
		Kind:    ErrInvalidFlag,
		Message: fmt.Sprintf("rslambdas: invalid flag '%s'", flag),
		Subject: flag,
	}
}

// InvalidFormat is returned when --format names an unsupported output format.
func InvalidFormat(format string, supported ...string) *Error {
	return &Error{
		Kind:    ErrInvalidFormat,
		Message: fmt.Sprintf("rslambdas: unsupported format '%s' (expected one of %v)", format, supported),
		Subject: format,
	}
}

// NotATerminal is returned when an interactive mode is requested without a TTY.
func NotATerminal(feature string) *Error {
	return &Error{
		Kind:    ErrNotATerminal,
		Message: fmt.Sprintf("rslambdas: %s requires an interactive terminal", feature),
	}
}
