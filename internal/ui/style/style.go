// Package style provides semantic terminal styling using lipgloss.
//
// This package is the only place where lipgloss color profiles are set. All
// styling is semantic (Command, Error, Muted) rather than visual.
//
// When disabled, all helpers return the input string unchanged with no ANSI codes.
package style

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	mu      sync.RWMutex
	enabled bool

	// Only used when enabled is true.
	commandStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Init enables or disables styling. It also respects the NO_COLOR
// convention: if set to any non-empty value, styling stays disabled
// regardless of enable.
//
// This function should be called once from main before any output.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	if os.Getenv("NO_COLOR") != "" {
		enabled = false
		return
	}

	enabled = enable
	if enabled {
		// All colors above are from the 16-color palette.
		lipgloss.SetColorProfile(termenv.ANSI)
	}
}

// Enabled returns whether styling is currently enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

func render(s lipgloss.Style, text string) string {
	if !Enabled() {
		return text
	}
	return s.Render(text)
}

// Command styles a command name (bold white).
func Command(text string) string {
	return render(commandStyle, text)
}

// Error styles text for error messages.
func Error(text string) string {
	return render(errorStyle, text)
}

// Muted styles text for less important or secondary information.
func Muted(text string) string {
	return render(mutedStyle, text)
}
