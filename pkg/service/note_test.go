package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

const (
	home       = "/home/user"
	globalFile = "/home/user/.config/notetree/config.yaml"
)

func newService(t *testing.T) *Service {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := New(fs, config.NewStore(fs, globalFile, "/work"), &Config{Home: home, Editor: "nano"})
	require.NoError(t, err)
	return svc
}

func writeNote(t *testing.T, svc *Service, path, content string) {
	t.Helper()
	require.NoError(t, svc.Fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(svc.Fs, path, []byte(content), 0644))
}

func TestNotesRootDefaultIsPersisted(t *testing.T) {
	svc := newService(t)

	root, err := svc.NotesRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Documents", "Notes"), root)

	isDir, err := afero.IsDir(svc.Fs, root)
	require.NoError(t, err)
	assert.True(t, isDir)

	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, root, settings.NotesPath)
}

func TestSetup(t *testing.T) {
	svc := newService(t)

	dir, err := svc.Setup("")
	require.NoError(t, err)
	assert.Empty(t, dir, "empty selection is a cancel")
	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Empty(t, settings.NotesPath)

	dir, err = svc.Setup("~/notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), dir)

	root, err := svc.NotesRoot()
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestToggleIncludeHidden(t *testing.T) {
	svc := newService(t)
	_, err := svc.Setup("/notes")
	require.NoError(t, err)
	writeNote(t, svc, "/notes/visible.md", "---\ntags: [a]\n---\n")
	writeNote(t, svc, "/notes/.hidden.md", "---\ntags: [b]\n---\n")

	index, err := svc.Tags(context.Background())
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, "a", index[0].Name)

	on, err := svc.ToggleIncludeHidden()
	require.NoError(t, err)
	assert.True(t, on)

	index, err = svc.Tags(context.Background())
	require.NoError(t, err)
	assert.Len(t, index, 2)

	on, err = svc.ToggleIncludeHidden()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestRecentUsesConfiguredLimit(t *testing.T) {
	svc := newService(t)
	_, err := svc.Setup("/notes")
	require.NoError(t, err)
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeNote(t, svc, "/notes/"+name, "# "+name)
	}
	require.NoError(t, svc.Set(config.KeyListRecentLimit, []string{"2"}, config.ScopeWorkspace))

	entries, err := svc.Recent(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSetRejectsUnknownKey(t *testing.T) {
	svc := newService(t)
	require.Error(t, svc.Set("editor", []string{"vim"}, config.ScopeGlobal))
}

func TestSetIgnorePatternsKeepsFragmentsIntact(t *testing.T) {
	svc := newService(t)
	patterns := []string{`^log-\d{2,4}\.md$`, `\.tmp$`}
	require.NoError(t, svc.Set(config.KeyIgnorePatterns, patterns, config.ScopeGlobal))

	settings, err := svc.Settings()
	require.NoError(t, err)
	assert.Equal(t, patterns, settings.IgnorePatterns)
}

func TestFilesSortsDirectoriesFirst(t *testing.T) {
	svc := newService(t)
	_, err := svc.Setup("/notes")
	require.NoError(t, err)
	writeNote(t, svc, "/notes/b.md", "")
	writeNote(t, svc, "/notes/a.md", "")
	writeNote(t, svc, "/notes/zeta/c.md", "")

	entries, err := svc.Files("")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"zeta", "a.md", "b.md"}, names)

	entries, err = svc.Files("zeta")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/notes/zeta/c.md", entries[0].Path)
}

func TestProviderRemoveThroughService(t *testing.T) {
	svc := newService(t)
	_, err := svc.Setup("/notes")
	require.NoError(t, err)
	writeNote(t, svc, "/notes/gone.md", "")

	entry, err := svc.Entry("gone.md")
	require.NoError(t, err)

	yes := tree.ConfirmFunc(func(context.Context, tree.Question) (bool, error) { return true, nil })
	require.NoError(t, svc.Provider(yes).Remove(context.Background(), entry))

	_, err = svc.Entry("gone.md")
	require.Error(t, err)
}

func TestOpenCommand(t *testing.T) {
	svc := newService(t)
	cmd := svc.OpenCommand("/notes/a.md")
	assert.Equal(t, []string{"nano", "/notes/a.md"}, cmd.Args)

	svc.Config.Editor = "code --wait"
	cmd = svc.OpenCommand("/notes/a.md")
	assert.Equal(t, []string{"code", "--wait", "/notes/a.md"}, cmd.Args)

	svc.Config.Editor = ""
	t.Setenv("EDITOR", "")
	cmd = svc.OpenCommand("/notes/a.md")
	assert.Equal(t, []string{"vim", "/notes/a.md"}, cmd.Args)
}

func TestReadNote(t *testing.T) {
	svc := newService(t)
	writeNote(t, svc, "/notes/plan.md", `---
title: Release Plan
tags: [work, q3]
---

# Heading

Ship it.
`)
	writeNote(t, svc, "/notes/plain.md", "# Plain Title\n\nbody words here\n")
	writeNote(t, svc, "/notes/broken.md", "---\ntags: [x\n---\nraw\n")

	note, err := svc.ReadNote("/notes/plan.md")
	require.NoError(t, err)
	assert.Equal(t, "Release Plan", note.Title)
	assert.Equal(t, []string{"work", "q3"}, note.Tags)
	assert.NotContains(t, note.Body, "tags:")
	assert.Equal(t, 4, note.WordCount)

	note, err = svc.ReadNote("/notes/plain.md")
	require.NoError(t, err)
	assert.Equal(t, "Plain Title", note.Title)
	assert.Empty(t, note.Tags)

	note, err = svc.ReadNote("/notes/broken.md")
	require.NoError(t, err)
	assert.Equal(t, "broken", note.Title)
	assert.Contains(t, note.Body, "tags: [x")

	_, err = svc.ReadNote("/notes")
	require.Error(t, err)
}

// unlistableFs fails to open one directory, which breaks any walk through it.
type unlistableFs struct {
	afero.Fs
	dir string
}

func (u unlistableFs) Open(name string) (afero.File, error) {
	if name == u.dir {
		return nil, errors.New("permission denied")
	}
	return u.Fs.Open(name)
}

func TestWalkErrorsAreReturnedAndLogged(t *testing.T) {
	var out bytes.Buffer
	logging.SetOutput(&out)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	svc := newService(t)
	_, err := svc.Setup("/notes")
	require.NoError(t, err)
	writeNote(t, svc, "/notes/locked/a.md", "---\ntags: [x]\n---\n")
	svc.Fs = unlistableFs{Fs: svc.Fs, dir: "/notes/locked"}

	_, err = svc.Tags(context.Background())
	var walkErr *notefs.WalkError
	require.ErrorAs(t, err, &walkErr)
	assert.Contains(t, out.String(), "tag index failed")

	out.Reset()
	_, err = svc.Recent(context.Background())
	require.ErrorAs(t, err, &walkErr)
	assert.Contains(t, out.String(), "recent notes failed")
}
