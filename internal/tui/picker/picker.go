// Package picker is the interactive fuzzy picker over recently modified notes.
package picker

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-notetree/pkg/recent"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#005F87"})
	docStyle = lipgloss.NewStyle().Margin(1, 2)
)

type item struct {
	entry recent.Entry
	now   time.Time
}

func (i item) FilterValue() string { return i.entry.RelPath }
func (i item) Title() string       { return i.entry.RelPath }
func (i item) Description() string { return "modified " + formatRelativeTime(i.now, i.entry.ModTime) }

var openKey = key.NewBinding(
	key.WithKeys("enter"),
	key.WithHelp("enter", "open note"),
)

// Model lists recent notes with fuzzy filtering.
type Model struct {
	list   list.Model
	chosen *recent.Entry
}

// New builds a picker over entries, which are shown in the given order.
func New(entries []recent.Entry) Model {
	now := time.Now()
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, item{entry: e, now: now})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recent notes"
	l.Styles.Title = titleStyle
	l.SetStatusBarItemName("note", "notes")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{openKey}
	}
	return Model{list: l}
}

// Chosen returns the selected entry, or nil when the picker was dismissed.
func (m Model) Chosen() *recent.Entry {
	return m.chosen
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, openKey):
			if it, ok := m.list.SelectedItem().(item); ok {
				entry := it.entry
				m.chosen = &entry
			}
			return m, tea.Quit
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return docStyle.Render(m.list.View())
}

// Run shows the picker and returns the chosen entry, or nil if dismissed.
func Run(entries []recent.Entry) (*recent.Entry, error) {
	final, err := tea.NewProgram(New(entries), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("error running picker: %w", err)
	}
	return final.(Model).Chosen(), nil
}

func formatRelativeTime(now, t time.Time) string {
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	}
	if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
