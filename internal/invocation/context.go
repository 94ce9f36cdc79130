package invocation

import (
	"github.com/google/uuid"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/log"
	"github.com/leplatrem-circleci/remote-settings-lambdas/internal/reporting"
)

// Context is the auxiliary data made available to a command alongside its
// event. It is distinct from context.Context, which carries cancellation.
type Context struct {
	// Reporter is the error-reporting handle. Never nil once defaulted.
	Reporter domain.Reporter
	// InvocationID identifies this run in logs, reports and the journal.
	InvocationID string
	// Logger is scoped to this invocation.
	Logger domain.Logger
}

// NewContext builds a context around the given reporter and logger,
// with a fresh invocation ID.
func NewContext(reporter domain.Reporter, logger domain.Logger) *Context {
	return &Context{
		Reporter:     reporting.OrNop(reporter),
		InvocationID: uuid.NewString(),
		Logger:       orNopLogger(logger),
	}
}

// Fill replaces zero fields of c with defaults and returns c.
func (c *Context) Fill(reporter domain.Reporter, logger domain.Logger) *Context {
	if c.Reporter == nil {
		c.Reporter = reporting.OrNop(reporter)
	}
	if c.InvocationID == "" {
		c.InvocationID = uuid.NewString()
	}
	if c.Logger == nil {
		c.Logger = orNopLogger(logger)
	}
	return c
}

// Tags returns the reporting tags identifying this invocation of command.
func (c *Context) Tags(command string) map[string]string {
	return map[string]string{
		"command":       command,
		"invocation_id": c.InvocationID,
	}
}

func orNopLogger(l domain.Logger) domain.Logger {
	if l == nil {
		return log.NopLogger{}
	}
	return l
}
