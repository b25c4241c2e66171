package tree

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/tags"
)

var log = logging.NewLogger("notetree.tree")

var (
	// ErrStale is returned by a tag build that was overtaken by a refresh.
	// Hosts drop the result and re-query.
	ErrStale = errors.New("tree: superseded by a newer refresh")
	// ErrNotEntry is returned when renaming or removing a root or tag node.
	ErrNotEntry = errors.New("only files and directories can be renamed or deleted")
	// ErrInvalidName rejects names that would leave the parent directory.
	ErrInvalidName = errors.New("invalid name")
	// ErrExists rejects a rename onto an existing entry.
	ErrExists = errors.New("target already exists")
)

// SettingsSource yields the current configuration. It is consulted at the
// start of every operation.
type SettingsSource interface {
	Load() (config.Settings, error)
}

// RootFunc resolves the notes folder.
type RootFunc func() (string, error)

// Question is put to a Confirmer before a mutation.
type Question struct {
	Title  string
	Prompt string
	// Destructive marks actions that cannot be undone.
	Destructive bool
}

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(ctx context.Context, q Question) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, q Question) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, q Question) (bool, error) {
	return f(ctx, q)
}

// Provider serves the notes tree to a rendering host. Children are computed
// on demand; Refresh is a single global invalidation.
type Provider struct {
	fs       afero.Fs
	settings SettingsSource
	root     RootFunc
	confirm  Confirmer

	// Concurrency bounds parallel reads during tag builds.
	Concurrency int

	mu         sync.Mutex
	generation uint64
	inflight   map[*build]context.CancelFunc
	subs       map[int]chan uint64
	nextSub    int
}

type build struct{}

// NewProvider creates a provider. A nil confirmer declines every deletion.
func NewProvider(fs afero.Fs, settings SettingsSource, root RootFunc, confirm Confirmer) *Provider {
	return &Provider{
		fs:       fs,
		settings: settings,
		root:     root,
		confirm:  confirm,
		inflight: make(map[*build]context.CancelFunc),
		subs:     make(map[int]chan uint64),
	}
}

// Roots returns the top-level nodes, honouring the hide flags.
func (p *Provider) Roots() ([]Node, error) {
	settings, err := p.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var nodes []Node
	if !settings.HideFiles {
		nodes = append(nodes, FilesRoot{})
	}
	if !settings.HideTags {
		nodes = append(nodes, TagsRoot{})
	}
	return nodes, nil
}

// Children returns the children of n.
func (p *Provider) Children(ctx context.Context, n Node) ([]Node, error) {
	switch n := n.(type) {
	case FilesRoot:
		root, err := p.root()
		if err != nil {
			return nil, err
		}
		return p.directory(root), nil
	case TagsRoot:
		return p.tags(ctx)
	case *Tag:
		nodes := make([]Node, 0, len(n.Files))
		for _, f := range n.Files {
			nodes = append(nodes, f)
		}
		return nodes, nil
	case *Entry:
		if !n.IsDir {
			return nil, nil
		}
		return p.directory(n.Path), nil
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}

// Item maps a node to its display representation.
func (p *Provider) Item(n Node) Item {
	return ItemFor(n)
}

func (p *Provider) directory(dir string) []Node {
	entries, err := notefs.ReadDir(p.fs, dir)
	if err != nil {
		log.WithError(err).WithField("path", dir).Error("read directory contents")
		return []Node{}
	}
	nodes := make([]Node, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, NewEntry(e))
	}
	return nodes
}

func (p *Provider) tags(ctx context.Context) ([]Node, error) {
	settings, err := p.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	filter, err := settings.Filter()
	if err != nil {
		return nil, err
	}
	root, err := p.root()
	if err != nil {
		return nil, err
	}

	gen, buildCtx, done := p.beginBuild(ctx)
	defer done()

	index, err := tags.Build(buildCtx, p.fs, root, tags.Options{
		Filter:      filter,
		Concurrency: p.Concurrency,
	})
	if p.Generation() != gen {
		return nil, ErrStale
	}
	if err != nil {
		log.WithError(err).WithField("root", root).Error("walk notes folder for tags")
		return nil, err
	}

	nodes := make([]Node, 0, len(index))
	for _, t := range index {
		tag := &Tag{Name: t.Name, Files: make([]*Entry, 0, len(t.Files))}
		for _, f := range t.Files {
			tag.Files = append(tag.Files, NewEntry(f))
		}
		nodes = append(nodes, tag)
	}
	return nodes, nil
}

func (p *Provider) beginBuild(ctx context.Context) (uint64, context.Context, func()) {
	buildCtx, cancel := context.WithCancel(ctx)
	token := &build{}

	p.mu.Lock()
	gen := p.generation
	p.inflight[token] = cancel
	p.mu.Unlock()

	return gen, buildCtx, func() {
		p.mu.Lock()
		delete(p.inflight, token)
		p.mu.Unlock()
		cancel()
	}
}

// Rename renames an entry within its parent directory and refreshes. An empty
// name means the prompt was dismissed and nothing happens.
func (p *Provider) Rename(ctx context.Context, n Node, newName string) error {
	entry, ok := n.(*Entry)
	if !ok {
		return ErrNotEntry
	}
	if newName == "" || newName == entry.Name {
		return nil
	}
	if newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}

	target := filepath.Join(filepath.Dir(entry.Path), newName)
	exists, err := afero.Exists(p.fs, target)
	if err != nil {
		return fmt.Errorf("check %s: %w", target, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, target)
	}
	if err := p.fs.Rename(entry.Path, target); err != nil {
		return fmt.Errorf("rename %s: %w", entry.Path, err)
	}

	log.WithField("from", entry.Path).WithField("to", target).Debug("renamed")
	p.Refresh()
	return nil
}

// Remove deletes an entry, recursively for directories, after confirmation.
// A declined confirmation leaves the filesystem untouched.
func (p *Provider) Remove(ctx context.Context, n Node) error {
	entry, ok := n.(*Entry)
	if !ok {
		return ErrNotEntry
	}
	if p.confirm == nil {
		return nil
	}

	confirmed, err := p.confirm.Confirm(ctx, deleteQuestion(entry))
	if err != nil {
		return fmt.Errorf("confirm delete: %w", err)
	}
	if !confirmed {
		return nil
	}

	if err := p.fs.RemoveAll(entry.Path); err != nil {
		return fmt.Errorf("delete %s: %w", entry.Path, err)
	}

	log.WithField("path", entry.Path).Debug("deleted")
	p.Refresh()
	return nil
}

func deleteQuestion(entry *Entry) Question {
	title := "Delete note"
	if entry.IsDir {
		title = "Delete folder"
	}
	return Question{
		Title:       title,
		Prompt:      fmt.Sprintf("Are you sure you want to delete %s?", entry.Name),
		Destructive: true,
	}
}

// Generation returns the current refresh generation.
func (p *Provider) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Refresh invalidates the whole tree: in-flight tag builds are cancelled and
// subscribers receive the new generation.
func (p *Provider) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++
	for token, cancel := range p.inflight {
		cancel()
		delete(p.inflight, token)
	}
	for _, ch := range p.subs {
		select {
		case ch <- p.generation:
		default:
			// keep only the latest generation for slow subscribers
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- p.generation:
			default:
			}
		}
	}
}

// Subscribe returns a channel of refresh generations and a function that
// ends the subscription.
func (p *Provider) Subscribe() (<-chan uint64, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan uint64, 1)
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subs, id)
			close(ch)
		})
	}
}
