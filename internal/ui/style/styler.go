package style

import "github.com/leplatrem-circleci/remote-settings-lambdas/internal/domain"

// Styler implements domain.Styler using the package-level style functions.
type Styler struct{}

// NewStyler creates a new Styler instance.
func NewStyler() *Styler {
	return &Styler{}
}

func (s *Styler) Enabled() bool              { return Enabled() }
func (s *Styler) Command(text string) string { return Command(text) }
func (s *Styler) Error(text string) string   { return Error(text) }
func (s *Styler) Muted(text string) string   { return Muted(text) }

// NopStyler is a no-op styler that returns text unchanged.
// Useful for testing or when styling is disabled.
type NopStyler struct{}

func (NopStyler) Enabled() bool              { return false }
func (NopStyler) Command(text string) string { return text }
func (NopStyler) Error(text string) string   { return text }
func (NopStyler) Muted(text string) string   { return text }

var _ domain.Styler = (*Styler)(nil)
var _ domain.Styler = NopStyler{}
