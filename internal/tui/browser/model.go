package browser

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

var log = logging.NewLogger("notetree.browser")

// row is a single visible line of the tree.
type row struct {
	id     string
	parent string
	node   tree.Node
	item   tree.Item
	depth  int
}

// Model is the main model for the notes tree browser
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	svc      *service.Service
	provider *tree.Provider
	root     string

	confirmer   *dialogConfirmer
	refreshes   <-chan uint64
	unsubscribe func()
	watcher     *Watcher

	roots    []tree.Node
	children map[string][]tree.Node // loaded children by node id
	known    map[string]tree.Node   // last seen node for each id
	expanded map[string]bool
	loading  map[string]bool
	rows     []row

	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	confirm        confirm.Model
	pendingConfirm *confirmRequest

	renaming     bool
	renameInput  textinput.Model
	renameTarget *tree.Entry

	previewing   bool
	previewTitle string
	preview      viewport.Model

	statusMessage string
}

// New creates a new TUI model. The watcher may be nil.
func New(svc *service.Service, root string, watcher *Watcher) Model {
	ctx, cancel := context.WithCancel(context.Background())
	confirmer := newDialogConfirmer()
	provider := svc.Provider(confirmer)
	refreshes, unsubscribe := provider.Subscribe()

	renameInput := textinput.New()
	renameInput.Placeholder = "New name..."
	renameInput.CharLimit = 255
	renameInput.Width = 60

	return Model{
		ctx:         ctx,
		cancel:      cancel,
		svc:         svc,
		provider:    provider,
		root:        root,
		confirmer:   confirmer,
		refreshes:   refreshes,
		unsubscribe: unsubscribe,
		watcher:     watcher,
		children:    make(map[string][]tree.Node),
		known:       make(map[string]tree.Node),
		expanded:    make(map[string]bool),
		loading:     make(map[string]bool),
		keys:        keys,
		help:        help.New(),
		confirm:     confirm.New(),
		renameInput: renameInput,
		preview:     viewport.New(80, 20),
	}
}

// Close releases the refresh subscription and the watcher.
func (m Model) Close() error {
	m.cancel()
	m.unsubscribe()
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// nodeID identifies a node by its position in the tree so expansion state
// survives a refresh.
func nodeID(parent string, n tree.Node) string {
	switch n := n.(type) {
	case tree.FilesRoot:
		return "files"
	case tree.TagsRoot:
		return "tags"
	case *tree.Tag:
		return parent + "\x00tag:" + n.Name
	case *tree.Entry:
		return parent + "\x00" + n.Name
	default:
		panic("browser: unknown node type")
	}
}

func (m *Model) rebuildRows() {
	rows := make([]row, 0, len(m.rows))
	var walk func(parent string, nodes []tree.Node, depth int)
	walk = func(parent string, nodes []tree.Node, depth int) {
		for _, n := range nodes {
			id := nodeID(parent, n)
			rows = append(rows, row{id: id, parent: parent, node: n, item: m.provider.Item(n), depth: depth})
			if !m.expanded[id] {
				continue
			}
			if kids, ok := m.children[id]; ok {
				walk(id, kids, depth+1)
			}
		}
	}
	walk("", m.roots, 0)
	m.rows = rows

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.clampScroll()
}

func (m *Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) viewportHeight() int {
	// header, blank, blank, status, help
	h := m.height - 6
	if h < 1 {
		return 10
	}
	return h
}

func (m *Model) clampScroll() {
	h := m.viewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+h {
		m.scrollOffset = m.cursor - h + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
