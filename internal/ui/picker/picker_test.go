package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var items = []Item{
	{Name: "backport_records", Summary: "Backport."},
	{Name: "refresh_signature", Summary: "Refresh."},
	{Name: "sync_megaphone", Summary: "Sync."},
}

func press(m model, k tea.KeyMsg) (model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(items)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.cursor)

	m, _ = press(m, runes("j"))
	m, _ = press(m, runes("j"))
	require.Equal(t, 0, m.cursor, "wraps to the top")

	m, _ = press(m, runes("k"))
	require.Equal(t, 2, m.cursor, "wraps to the bottom")

	m, _ = press(m, runes("g"))
	require.Equal(t, 0, m.cursor)

	m, _ = press(m, runes("G"))
	require.Equal(t, 2, m.cursor)
}

func TestModel_Choose(t *testing.T) {
	m := newModel(items)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, "refresh_signature", m.chosen)
	require.False(t, m.cancelled)
	require.NotNil(t, cmd)
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m, cmd := press(newModel(items), k)
		require.True(t, m.cancelled, k.String())
		require.Empty(t, m.chosen)
		require.NotNil(t, cmd)
	}
}

func TestModel_View(t *testing.T) {
	m := newModel(items)
	view := m.View()

	require.Contains(t, view, "Remote Settings lambdas")
	require.Contains(t, view, " → ")
	require.Contains(t, view, "refresh_signature")
	require.Contains(t, view, "Sync.")
}
