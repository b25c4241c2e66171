package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-notetree/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadRootsCmd(m.provider),
		waitForRefreshCmd(m.refreshes),
		waitForConfirmCmd(m.ctx, m.confirmer),
		waitForChangeCmd(m.watcher),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.preview.Width = msg.Width
		m.preview.Height = m.viewportHeight()
		m.clampScroll()
		return m, nil

	case rootsLoadedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.roots = msg.roots
		var cmds []tea.Cmd
		for _, n := range m.roots {
			id := nodeID("", n)
			m.known[id] = n
			if _, seen := m.expanded[id]; !seen && m.provider.Item(n).State == tree.Expanded {
				m.expanded[id] = true
			}
			if m.expanded[id] {
				cmds = append(cmds, m.loadChildren(id, n))
			}
		}
		m.rebuildRows()
		return m, tea.Batch(cmds...)

	case childrenLoadedMsg:
		delete(m.loading, msg.id)
		if msg.generation != m.provider.Generation() || isStale(msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
			m.children[msg.id] = nil
			m.rebuildRows()
			return m, nil
		}
		m.children[msg.id] = msg.nodes
		var cmds []tea.Cmd
		for _, n := range msg.nodes {
			id := nodeID(msg.id, n)
			m.known[id] = n
			if m.expanded[id] {
				cmds = append(cmds, m.loadChildren(id, n))
			}
		}
		m.rebuildRows()
		return m, tea.Batch(cmds...)

	case refreshedMsg:
		// Drop every cached level; expanded levels reload as their parents arrive.
		m.children = make(map[string][]tree.Node)
		m.loading = make(map[string]bool)
		return m, tea.Batch(loadRootsCmd(m.provider), waitForRefreshCmd(m.refreshes))

	case fsChangedMsg:
		m.provider.Refresh()
		return m, waitForChangeCmd(m.watcher)

	case confirmRequestMsg:
		m.pendingConfirm = msg.req
		m.confirm.Activate(confirm.Request(msg.req.question))
		return m, waitForConfirmCmd(m.ctx, m.confirmer)

	case confirm.ConfirmedMsg:
		return m.answerConfirm(true), nil

	case confirm.CancelledMsg:
		return m.answerConfirm(false), nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMessage = msg.status
		}
		return m, nil

	case hiddenToggledMsg:
		switch {
		case msg.err != nil:
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
		case msg.on:
			m.statusMessage = "Hidden files included"
		default:
			m.statusMessage = "Hidden files excluded"
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error opening editor: %v", msg.err)
		}
		return m, nil

	case pathCopiedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error copying path: %v", msg.err)
		} else {
			m.statusMessage = "Copied " + shortenPath(msg.path, m.svc.Config.Home)
		}
		return m, nil

	case previewLoadedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.previewing = true
		m.previewTitle = msg.title
		m.preview.SetContent(msg.rendered)
		m.preview.GotoTop()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) answerConfirm(ok bool) Model {
	if m.pendingConfirm != nil {
		m.pendingConfirm.reply <- ok
		m.pendingConfirm = nil
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm.Active {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(msg)
		return m, cmd
	}

	if m.renaming {
		switch msg.String() {
		case "enter":
			m.renaming = false
			name := m.renameInput.Value()
			target := m.renameTarget
			m.renameTarget = nil
			return m, renameCmd(m.ctx, m.provider, target, name)
		case "esc", "ctrl+c":
			m.renaming = false
			m.renameTarget = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		return m, cmd
	}

	if m.previewing {
		switch {
		case key.Matches(msg, m.keys.Preview), msg.String() == "esc", msg.String() == "q":
			m.previewing = false
			return m, nil
		}
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}

	if m.help.ShowAll && !key.Matches(msg, m.keys.Quit) {
		m.help.ShowAll = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.viewportHeight() / 2)

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.viewportHeight() / 2)

	case key.Matches(msg, m.keys.GoToTop):
		m.cursor = 0
		m.clampScroll()

	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = len(m.rows) - 1
		m.clampScroll()

	case key.Matches(msg, m.keys.Expand):
		return m.activate()

	case key.Matches(msg, m.keys.Collapse):
		m.collapseOrParent()

	case key.Matches(msg, m.keys.Rename):
		if entry := m.selectedEntry(); entry != nil {
			m.renaming = true
			m.renameTarget = entry
			m.renameInput.SetValue(entry.Name)
			m.renameInput.CursorEnd()
			m.renameInput.Focus()
			return m, nil
		}
		m.statusMessage = "Only files and directories can be renamed"

	case key.Matches(msg, m.keys.Delete):
		if entry := m.selectedEntry(); entry != nil {
			return m, removeCmd(m.ctx, m.provider, entry)
		}
		m.statusMessage = "Only files and directories can be deleted"

	case key.Matches(msg, m.keys.CopyPath):
		if entry := m.selectedEntry(); entry != nil {
			return m, copyPathCmd(entry.Path)
		}

	case key.Matches(msg, m.keys.Preview):
		if entry := m.selectedEntry(); entry != nil && !entry.IsDir {
			width := m.width
			if width < 24 {
				width = 80
			}
			return m, previewCmd(m.svc, entry.Path, width)
		}

	case key.Matches(msg, m.keys.Refresh):
		m.provider.Refresh()

	case key.Matches(msg, m.keys.ToggleHidden):
		return m, toggleHiddenCmd(m.svc, m.provider)
	}

	return m, nil
}

// activate opens a file or toggles a collapsible node.
func (m Model) activate() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}
	if r.item.Command != nil && r.item.Command.Name == tree.CommandOpen {
		return m, openInEditorCmd(m.svc, r.item.Command.Path)
	}
	if r.item.State == tree.None {
		return m, nil
	}

	if m.expanded[r.id] {
		m.expanded[r.id] = false
		m.rebuildRows()
		return m, nil
	}
	m.expanded[r.id] = true
	var cmd tea.Cmd
	if _, cached := m.children[r.id]; !cached {
		cmd = m.loadChildren(r.id, r.node)
	}
	m.rebuildRows()
	return m, cmd
}

func (m *Model) collapseOrParent() {
	r, ok := m.selected()
	if !ok {
		return
	}
	if m.expanded[r.id] {
		m.expanded[r.id] = false
		m.rebuildRows()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].id == r.parent {
			m.cursor = i
			m.clampScroll()
			return
		}
	}
}

func (m *Model) loadChildren(id string, n tree.Node) tea.Cmd {
	if m.loading[id] {
		return nil
	}
	m.loading[id] = true
	return loadChildrenCmd(m.ctx, m.provider, id, n)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m *Model) selectedEntry() *tree.Entry {
	r, ok := m.selected()
	if !ok {
		return nil
	}
	entry, _ := r.node.(*tree.Entry)
	return entry
}
