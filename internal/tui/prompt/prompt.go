// Package prompt runs small one-question terminal dialogs.
package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-notetree/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

var questionStyle = lipgloss.NewStyle().Bold(true)

// inputModel asks for one line of text.
type inputModel struct {
	question  string
	input     textinput.Model
	submitted bool
}

func newInput(question, initial, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()
	return inputModel{question: question, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return fmt.Sprintf("%s\n%s\n\n%s\n",
		questionStyle.Render(m.question),
		m.input.View(),
		lipgloss.NewStyle().Faint(true).Render("enter to accept, esc to cancel"))
}

// Value returns the text entered, or "" if the dialog was cancelled.
func (m inputModel) Value() string {
	if !m.submitted {
		return ""
	}
	return m.input.Value()
}

// Ask shows question with initial pre-filled. A cancelled dialog returns "".
func Ask(question, initial, placeholder string) (string, error) {
	final, err := tea.NewProgram(newInput(question, initial, placeholder)).Run()
	if err != nil {
		return "", fmt.Errorf("error running prompt: %w", err)
	}
	return final.(inputModel).Value(), nil
}

// confirmModel hosts the confirm dialog on its own.
type confirmModel struct {
	dialog   confirm.Model
	answered bool
	ok       bool
}

func newConfirm(q tree.Question) confirmModel {
	d := confirm.New()
	d.Activate(confirm.Request(q))
	return confirmModel{dialog: d}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case confirm.ConfirmedMsg:
		m.answered, m.ok = true, true
		return m, tea.Quit
	case confirm.CancelledMsg:
		m.answered = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	return m, cmd
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return m.dialog.View() + "\n"
}

// Confirmer asks yes/no questions on the terminal. It satisfies
// tree.Confirmer.
type Confirmer struct{}

func (Confirmer) Confirm(ctx context.Context, q tree.Question) (bool, error) {
	final, err := tea.NewProgram(newConfirm(q), tea.WithContext(ctx)).Run()
	if err != nil {
		return false, fmt.Errorf("error running prompt: %w", err)
	}
	return final.(confirmModel).ok, nil
}
