package picker

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notetree/pkg/recent"
)

func TestEnterChoosesSelectedEntry(t *testing.T) {
	entries := []recent.Entry{
		{RelPath: "newest.md", Path: "/notes/newest.md"},
		{RelPath: "older.md", Path: "/notes/older.md"},
	}
	var m tea.Model = New(entries)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	chosen := m.(Model).Chosen()
	require.NotNil(t, chosen)
	assert.Equal(t, "/notes/older.md", chosen.Path)
}

func TestDismissChoosesNothing(t *testing.T) {
	var m tea.Model = New([]recent.Entry{{RelPath: "a.md"}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, m.(Model).Chosen())
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "2024-05-11"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRelativeTime(now, now.Add(-tt.ago)))
	}
}
