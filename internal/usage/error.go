package usage

// ErrorKind represents the type of usage error.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrInvalidFlag
	ErrUnknownCommand
	ErrInvalidFormat
	ErrNotATerminal
)

// Exit codes:
//
//	Exit 1: lookup errors
//	  - Unknown errors
//	  - Unknown command
//	  - Not a terminal
//
//	Exit 2: User input errors
//	  - Invalid flag
//	  - Invalid output format
var exitCodes = map[ErrorKind]int{
	ErrUnknown:        1,
	ErrInvalidFlag:    2,
	ErrUnknownCommand: 1,
	ErrInvalidFormat:  2,
	ErrNotATerminal:   1,
}

// Error represents a user-facing usage error with semantic type information.
type Error struct {
	Kind    ErrorKind
	Message string
	// Subject is the offending token (command name, flag) as typed by the user.
	Subject string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ExitCode returns the process exit code for this error, derived from Kind.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return 1
}

var _ error = (*Error)(nil)
