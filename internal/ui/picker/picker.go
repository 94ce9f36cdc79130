// Package picker is an interactive terminal list for choosing a command.
package picker

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user quits without choosing.
var ErrCancelled = errors.New("picker: cancelled")

// Item is one selectable entry.
type Item struct {
	Name    string
	Summary string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	First  key.Binding
	Last   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.First, k.Last}, {k.Choose, k.Quit}}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	First:  key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Choose: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("Enter", "run")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	items     []Item
	cursor    int
	width     int
	chosen    string
	cancelled bool
	help      help.Model
}

func newModel(items []Item) model {
	return model{items: items, help: help.New()}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		last := len(m.items) - 1
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = last
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < last {
				m.cursor++
			} else {
				m.cursor = 0
			}
		case key.Matches(msg, keys.First):
			m.cursor = 0
		case key.Matches(msg, keys.Last):
			m.cursor = last
		case key.Matches(msg, keys.Choose):
			if len(m.items) > 0 {
				m.chosen = m.items[m.cursor].Name
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Remote Settings lambdas"))
	b.WriteString("\n\n")

	nameWidth := 0
	for _, it := range m.items {
		nameWidth = max(nameWidth, lipgloss.Width(it.Name))
	}

	for i, it := range m.items {
		prefix := "   "
		name := lipgloss.NewStyle().Width(nameWidth).Render(it.Name)
		if i == m.cursor {
			prefix = " → "
			name = cursorStyle.Render(name)
		}
		b.WriteString(prefix + name + "  " + summaryStyle.Render(it.Summary) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// Run shows the picker on the given terminal streams and returns the chosen
// item name. Quitting returns ErrCancelled.
func Run(items []Item, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newModel(items), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	fm := final.(model)
	if fm.cancelled || fm.chosen == "" {
		return "", ErrCancelled
	}
	return fm.chosen, nil
}
