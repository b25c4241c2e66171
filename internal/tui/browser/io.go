package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

type rootsLoadedMsg struct {
	roots []tree.Node
	err   error
}

type childrenLoadedMsg struct {
	id         string
	generation uint64
	nodes      []tree.Node
	err        error
}

type refreshedMsg struct {
	generation uint64
}

type fsChangedMsg struct{}

type confirmRequestMsg struct {
	req *confirmRequest
}

type mutationDoneMsg struct {
	status string
	err    error
}

type hiddenToggledMsg struct {
	on  bool
	err error
}

type editorFinishedMsg struct {
	err error
}

type previewLoadedMsg struct {
	title    string
	rendered string
	err      error
}

type pathCopiedMsg struct {
	path string
	err  error
}

// confirmRequest carries a question from a provider goroutine to the
// update loop and the answer back.
type confirmRequest struct {
	question tree.Question
	reply    chan bool
}

// dialogConfirmer implements tree.Confirmer by routing the question through
// the confirm dialog.
type dialogConfirmer struct {
	requests chan *confirmRequest
}

func newDialogConfirmer() *dialogConfirmer {
	return &dialogConfirmer{requests: make(chan *confirmRequest)}
}

func (c *dialogConfirmer) Confirm(ctx context.Context, q tree.Question) (bool, error) {
	req := &confirmRequest{question: q, reply: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func waitForConfirmCmd(ctx context.Context, c *dialogConfirmer) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-c.requests:
			return confirmRequestMsg{req: req}
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForRefreshCmd(ch <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		gen, ok := <-ch
		if !ok {
			return nil
		}
		return refreshedMsg{generation: gen}
	}
}

func waitForChangeCmd(w *Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return fsChangedMsg{}
	}
}

func loadRootsCmd(p *tree.Provider) tea.Cmd {
	return func() tea.Msg {
		roots, err := p.Roots()
		return rootsLoadedMsg{roots: roots, err: err}
	}
}

func loadChildrenCmd(ctx context.Context, p *tree.Provider, id string, n tree.Node) tea.Cmd {
	return func() tea.Msg {
		gen := p.Generation()
		nodes, err := p.Children(ctx, n)
		return childrenLoadedMsg{id: id, generation: gen, nodes: nodes, err: err}
	}
}

func renameCmd(ctx context.Context, p *tree.Provider, entry *tree.Entry, name string) tea.Cmd {
	return func() tea.Msg {
		if err := p.Rename(ctx, entry, name); err != nil {
			return mutationDoneMsg{err: err}
		}
		if name == "" || name == entry.Name {
			return mutationDoneMsg{}
		}
		return mutationDoneMsg{status: fmt.Sprintf("Renamed %s to %s", entry.Name, name)}
	}
}

func removeCmd(ctx context.Context, p *tree.Provider, entry *tree.Entry) tea.Cmd {
	return func() tea.Msg {
		before := p.Generation()
		if err := p.Remove(ctx, entry); err != nil {
			return mutationDoneMsg{err: err}
		}
		if p.Generation() == before {
			return mutationDoneMsg{}
		}
		return mutationDoneMsg{status: "Deleted " + entry.Name}
	}
}

func toggleHiddenCmd(svc *service.Service, p *tree.Provider) tea.Cmd {
	return func() tea.Msg {
		on, err := svc.ToggleIncludeHidden()
		if err == nil {
			p.Refresh()
		}
		return hiddenToggledMsg{on: on, err: err}
	}
}

func openInEditorCmd(svc *service.Service, path string) tea.Cmd {
	return tea.ExecProcess(svc.OpenCommand(path), func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

func copyPathCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return pathCopiedMsg{path: path, err: clipboard.WriteAll(path)}
	}
}

func previewCmd(svc *service.Service, path string, width int) tea.Cmd {
	return func() tea.Msg {
		note, err := svc.ReadNote(path)
		if err != nil {
			return previewLoadedMsg{err: err}
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-4),
		)
		if err != nil {
			return previewLoadedMsg{err: err}
		}
		out, err := r.Render(note.Body)
		if err != nil {
			return previewLoadedMsg{err: err}
		}

		title := note.Title
		if len(note.Tags) > 0 {
			title += "  #" + strings.Join(note.Tags, " #")
		}
		return previewLoadedMsg{title: title, rendered: out}
	}
}

func isStale(err error) bool {
	return errors.Is(err, tree.ErrStale) || errors.Is(err, context.Canceled)
}
