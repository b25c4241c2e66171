package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FD7FF"})
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#AF005F", Dark: "#FF87AF"})
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"})
)

var icons = map[tree.Icon]string{
	tree.IconTag:       "#",
	tree.IconDirectory: "▸",
	tree.IconFile:      "▢",
}

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + m.help.View(m.keys)
	}

	if m.confirm.Active {
		return "\n" + m.confirm.View()
	}

	var body string
	switch {
	case m.previewing:
		body = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render(m.previewTitle),
			m.preview.View(),
		)
	case m.renaming:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderTree(),
			"",
			"Rename: "+m.renameInput.View(),
		)
	default:
		body = m.renderTree()
	}

	header := headerStyle.Render("Notes") + mutedStyle.Render("  "+shortenPath(m.root, m.svc.Config.Home))

	status := m.statusMessage
	if strings.HasPrefix(status, "Error") {
		status = errorStyle.Render(status)
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		status,
		m.help.View(m.keys),
	)
}

func (m Model) renderTree() string {
	if len(m.rows) == 0 {
		return mutedStyle.Render("Nothing to show.")
	}

	var b strings.Builder
	height := m.viewportHeight()
	start := m.scrollOffset
	end := start + height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = highlightStyle.Render("▶ ")
		}

		fold := "  "
		switch r.item.State {
		case tree.Expanded, tree.Collapsed:
			if m.expanded[r.id] {
				fold = "▼ "
			} else {
				fold = "▶ "
			}
		}

		label := fmt.Sprintf("%s %s", icons[r.item.Icon], r.item.Label)
		if m.loading[r.id] {
			label += mutedStyle.Render(" …")
		}
		if i == m.cursor {
			label = selectedStyle.Render(label)
		}

		b.WriteString(cursor + strings.Repeat("  ", r.depth) + fold + label)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if len(m.rows) > height {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.rows))))
	}
	return b.String()
}
