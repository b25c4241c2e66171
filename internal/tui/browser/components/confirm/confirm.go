// Package confirm is a yes/no dialog. Destructive requests are drawn in red
// and only accept an explicit "y".
package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmedMsg is sent when the user approves the request.
type ConfirmedMsg struct{}

// CancelledMsg is sent when the user declines the request.
type CancelledMsg struct{}

// Request is what the dialog asks.
type Request struct {
	Title       string
	Prompt      string
	Destructive bool
}

type Model struct {
	Active  bool
	Request Request
	keys    keyMap
}

func New() Model {
	return Model{keys: defaultKeyMap}
}

// Activate shows the dialog for r.
func (m *Model) Activate(r Request) {
	m.Request = r
	m.Active = true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.Active || !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes),
		!m.Request.Destructive && key.Matches(keyMsg, m.keys.Accept):
		m.Active = false
		return m, func() tea.Msg { return ConfirmedMsg{} }
	case key.Matches(keyMsg, m.keys.No):
		m.Active = false
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

var (
	cautionColor = lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FFAF5F"}
	dangerColor  = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
)

func (m Model) View() string {
	if !m.Active {
		return ""
	}

	color := cautionColor
	hint := "y/enter confirm · n/esc cancel"
	if m.Request.Destructive {
		color = dangerColor
		hint = "y delete · n/esc keep"
	}

	body := m.Request.Prompt
	if m.Request.Title != "" {
		title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(m.Request.Title)
		body = lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Render(body)

	help := lipgloss.NewStyle().
		Faint(true).
		Width(lipgloss.Width(box)).
		Align(lipgloss.Center).
		Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left, box, help)
}

type keyMap struct {
	Yes    key.Binding
	Accept key.Binding
	No     key.Binding
}

var defaultKeyMap = keyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	No:     key.NewBinding(key.WithKeys("n", "N", "esc", "ctrl+c"), key.WithHelp("n/esc", "cancel")),
}
