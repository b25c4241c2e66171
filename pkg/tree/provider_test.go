package tree

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notetree/pkg/config"
)

const root = "/notes"

type staticSettings config.Settings

func (s *staticSettings) Load() (config.Settings, error) { return config.Settings(*s), nil }

func newProvider(t *testing.T, files map[string]string, settings *staticSettings, confirm Confirmer) (*Provider, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(root, 0755))
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	if settings == nil {
		settings = &staticSettings{}
	}
	rootFn := func() (string, error) { return root, nil }
	return NewProvider(fs, settings, rootFn, confirm), fs
}

func labels(p *Provider, nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, p.Item(n).Label)
	}
	return out
}

func TestRootsHonourHideFlags(t *testing.T) {
	settings := &staticSettings{}
	p, _ := newProvider(t, nil, settings, nil)

	roots, err := p.Roots()
	require.NoError(t, err)
	assert.Equal(t, []Node{FilesRoot{}, TagsRoot{}}, roots)

	settings.HideTags = true
	roots, err = p.Roots()
	require.NoError(t, err)
	assert.Equal(t, []Node{FilesRoot{}}, roots)

	settings.HideFiles = true
	roots, err = p.Roots()
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestChildrenOfFilesRoot(t *testing.T) {
	p, _ := newProvider(t, map[string]string{
		"a.md":     "# a",
		"sub/b.md": "# b",
		".hidden":  "",
	}, nil, nil)

	children, err := p.Children(context.Background(), FilesRoot{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.md", "sub", ".hidden"}, labels(p, children))

	var sub *Entry
	for _, c := range children {
		if e := c.(*Entry); e.Name == "sub" {
			sub = e
		}
	}
	require.NotNil(t, sub)
	assert.True(t, sub.IsDir)

	grandchildren, err := p.Children(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, labels(p, grandchildren))
}

func TestChildrenOfMissingDirectoryIsEmpty(t *testing.T) {
	p, _ := newProvider(t, nil, nil, nil)

	children, err := p.Children(context.Background(), &Entry{Name: "gone", Path: "/notes/gone", IsDir: true})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestChildrenOfTagsRoot(t *testing.T) {
	p, _ := newProvider(t, map[string]string{
		"a.md":       "---\ntags: [work, ideas]\n---\n",
		"b.md":       "---\ntags: [work]\n---\n",
		".secret.md": "---\ntags: [hidden]\n---\n",
	}, nil, nil)

	tagNodes, err := p.Children(context.Background(), TagsRoot{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ideas", "work"}, labels(p, tagNodes))

	work := tagNodes[1].(*Tag)
	files, err := p.Children(context.Background(), work)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, labels(p, files))

	item := p.Item(files[0])
	require.NotNil(t, item.Command)
	assert.Equal(t, CommandOpen, item.Command.Name)
	assert.Equal(t, filepath.Join(root, "a.md"), item.Command.Path)
}

func TestChildrenOfTagsRootReadsSettingsFresh(t *testing.T) {
	settings := &staticSettings{}
	p, _ := newProvider(t, map[string]string{
		"draft.tmp": "---\ntags: [draft]\n---\n",
	}, settings, nil)

	tagNodes, err := p.Children(context.Background(), TagsRoot{})
	require.NoError(t, err)
	assert.Equal(t, []string{"draft"}, labels(p, tagNodes))

	settings.IgnorePatterns = []string{`\.tmp$`}
	tagNodes, err = p.Children(context.Background(), TagsRoot{})
	require.NoError(t, err)
	assert.Empty(t, tagNodes)
}

func TestMalformedFrontmatterIsUntaggedButBrowsable(t *testing.T) {
	p, _ := newProvider(t, map[string]string{
		"good.md":   "---\ntags: [work]\n---\n",
		"broken.md": "---\ntags: [work\n---\n",
	}, nil, nil)
	ctx := context.Background()

	tagNodes, err := p.Children(ctx, TagsRoot{})
	require.NoError(t, err)
	require.Equal(t, []string{"work"}, labels(p, tagNodes))
	for _, n := range tagNodes {
		files, err := p.Children(ctx, n.(*Tag))
		require.NoError(t, err)
		assert.NotContains(t, labels(p, files), "broken.md")
	}

	children, err := p.Children(ctx, FilesRoot{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"good.md", "broken.md"}, labels(p, children))
}

func TestChildrenOfTagsRootWalkError(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewProvider(fs, &staticSettings{}, func() (string, error) { return "/missing", nil }, nil)

	_, err := p.Children(context.Background(), TagsRoot{})
	require.Error(t, err)

	// the files root keeps working
	children, err := p.Children(context.Background(), FilesRoot{})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestChildrenOfFileIsEmpty(t *testing.T) {
	p, _ := newProvider(t, nil, nil, nil)
	children, err := p.Children(context.Background(), &Entry{Name: "a.md", Path: "/notes/a.md"})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestItemFor(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Item
	}{
		{
			name: "files root",
			node: FilesRoot{},
			want: Item{Label: "Files", State: Expanded, Icon: IconDirectory, ContextValue: "rootFile"},
		},
		{
			name: "tags root",
			node: TagsRoot{},
			want: Item{Label: "Tags", State: Expanded, Icon: IconTag, ContextValue: "rootTag"},
		},
		{
			name: "tag",
			node: &Tag{Name: "work"},
			want: Item{Label: "work", State: Collapsed, Icon: IconTag, ContextValue: "tag"},
		},
		{
			name: "directory",
			node: &Entry{Name: "sub", Path: "/notes/sub", IsDir: true},
			want: Item{Label: "sub", State: Collapsed, Icon: IconDirectory, ContextValue: "file"},
		},
		{
			name: "file",
			node: &Entry{Name: "a.md", Path: "/notes/a.md"},
			want: Item{
				Label:        "a.md",
				State:        None,
				Icon:         IconFile,
				ContextValue: "file",
				Command:      &Command{Name: CommandOpen, Path: "/notes/a.md"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ItemFor(tt.node))
		})
	}
}

func TestRename(t *testing.T) {
	p, fs := newProvider(t, map[string]string{"a.md": "x", "b.md": "y"}, nil, nil)
	entry := &Entry{Name: "a.md", Path: filepath.Join(root, "a.md")}
	before := p.Generation()

	require.NoError(t, p.Rename(context.Background(), entry, "c.md"))
	assert.Equal(t, before+1, p.Generation())

	exists, _ := afero.Exists(fs, filepath.Join(root, "c.md"))
	assert.True(t, exists)
	exists, _ = afero.Exists(fs, filepath.Join(root, "a.md"))
	assert.False(t, exists)

	t.Run("empty name is a no-op", func(t *testing.T) {
		gen := p.Generation()
		require.NoError(t, p.Rename(context.Background(), &Entry{Name: "b.md", Path: filepath.Join(root, "b.md")}, ""))
		assert.Equal(t, gen, p.Generation())
	})

	t.Run("existing target", func(t *testing.T) {
		err := p.Rename(context.Background(), &Entry{Name: "b.md", Path: filepath.Join(root, "b.md")}, "c.md")
		assert.ErrorIs(t, err, ErrExists)
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"..", ".", "x/y", `x\y`} {
			err := p.Rename(context.Background(), &Entry{Name: "b.md", Path: filepath.Join(root, "b.md")}, name)
			assert.ErrorIs(t, err, ErrInvalidName, name)
		}
	})

	t.Run("roots and tags are rejected", func(t *testing.T) {
		assert.ErrorIs(t, p.Rename(context.Background(), TagsRoot{}, "x"), ErrNotEntry)
		assert.ErrorIs(t, p.Rename(context.Background(), &Tag{Name: "t"}, "x"), ErrNotEntry)
	})
}

func TestRemoveConfirmed(t *testing.T) {
	var asked Question
	confirm := ConfirmFunc(func(_ context.Context, q Question) (bool, error) {
		asked = q
		return true, nil
	})
	p, fs := newProvider(t, map[string]string{"sub/a.md": "x", "keep.md": "y"}, nil, confirm)

	sub := &Entry{Name: "sub", Path: filepath.Join(root, "sub"), IsDir: true}
	require.NoError(t, p.Remove(context.Background(), sub))
	assert.Equal(t, Question{
		Title:       "Delete folder",
		Prompt:      "Are you sure you want to delete sub?",
		Destructive: true,
	}, asked)

	exists, _ := afero.Exists(fs, filepath.Join(root, "sub", "a.md"))
	assert.False(t, exists)

	children, err := p.Children(context.Background(), FilesRoot{})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.md"}, labels(p, children))
}

func TestRemoveDeclined(t *testing.T) {
	confirm := ConfirmFunc(func(context.Context, Question) (bool, error) { return false, nil })
	p, fs := newProvider(t, map[string]string{"a.md": "x"}, nil, confirm)
	before := p.Generation()

	require.NoError(t, p.Remove(context.Background(), &Entry{Name: "a.md", Path: filepath.Join(root, "a.md")}))

	exists, _ := afero.Exists(fs, filepath.Join(root, "a.md"))
	assert.True(t, exists)
	assert.Equal(t, before, p.Generation())
}

func TestRemoveConfirmError(t *testing.T) {
	boom := errors.New("boom")
	confirm := ConfirmFunc(func(context.Context, Question) (bool, error) { return false, boom })
	p, _ := newProvider(t, map[string]string{"a.md": "x"}, nil, confirm)

	err := p.Remove(context.Background(), &Entry{Name: "a.md", Path: filepath.Join(root, "a.md")})
	assert.ErrorIs(t, err, boom)
}

func TestRefreshNotifiesSubscribers(t *testing.T) {
	p, _ := newProvider(t, nil, nil, nil)
	events, unsubscribe := p.Subscribe()
	defer unsubscribe()

	p.Refresh()
	p.Refresh()
	p.Refresh()

	// notifications coalesce to the latest generation
	assert.Equal(t, uint64(3), <-events)
	select {
	case g := <-events:
		t.Fatalf("unexpected extra notification %d", g)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p, _ := newProvider(t, nil, nil, nil)
	events, unsubscribe := p.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-events
	assert.False(t, ok)
	p.Refresh()
}

// refreshingFs triggers a refresh the first time a file is opened, simulating
// an invalidation that lands while a tag build is running.
type refreshingFs struct {
	afero.Fs
	p     *Provider
	fired bool
}

func (r *refreshingFs) Open(name string) (afero.File, error) {
	if !r.fired && filepath.Ext(name) == ".md" {
		r.fired = true
		r.p.Refresh()
	}
	return r.Fs.Open(name)
}

func TestTagBuildOvertakenByRefreshIsStale(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/notes/a.md", []byte("---\ntags: [x]\n---\n"), 0644))

	rfs := &refreshingFs{Fs: base}
	p := NewProvider(rfs, &staticSettings{}, func() (string, error) { return root, nil }, nil)
	p.Concurrency = 1
	rfs.p = p

	_, err := p.Children(context.Background(), TagsRoot{})
	assert.ErrorIs(t, err, ErrStale)

	tagNodes, err := p.Children(context.Background(), TagsRoot{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, labels(p, tagNodes))
}
