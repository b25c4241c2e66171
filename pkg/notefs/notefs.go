// Package notefs enumerates the notes folder. All access goes through an
// afero.Fs so callers can swap the OS filesystem for an in-memory one.
package notefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/models"
)

var log = logging.NewLogger("notetree.notefs")

// WalkError reports a directory that could not be enumerated.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Path, e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }

// Filter decides which files take part in indexing and the recent list.
type Filter struct {
	// Ignore is matched against the slash-separated path relative to the
	// notes root. Nil ignores nothing.
	Ignore        *regexp.Regexp
	IncludeHidden bool
}

// Excludes reports whether the entry at rel (relative to the root) is filtered out.
func (f Filter) Excludes(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !f.IncludeHidden && models.IsHiddenName(filepath.Base(rel)) {
		return true
	}
	return f.Ignore != nil && f.Ignore.MatchString(rel)
}

// CompileIgnore joins the configured fragments into one alternation. An empty
// list yields nil, which ignores nothing.
func CompileIgnore(patterns []string) (*regexp.Regexp, error) {
	var groups []string
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		groups = append(groups, "(?:"+p+")")
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return regexp.Compile(strings.Join(groups, "|"))
}

// WalkFunc is called for every entry below the root, in lexical order.
// Returning filepath.SkipDir for a directory skips its contents.
type WalkFunc func(file models.NoteFile) error

// Walk enumerates root recursively. The first directory that cannot be read
// stops the walk with a *WalkError.
func Walk(ctx context.Context, fs afero.Fs, root string, fn WalkFunc) error {
	return afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return &WalkError{Path: path, Err: err}
		}
		if path == root {
			return nil
		}
		return fn(models.NoteFile{
			Path:    path,
			Name:    info.Name(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		})
	})
}

// Files returns the non-directory entries below root that pass the filter,
// in discovery order.
func Files(ctx context.Context, fs afero.Fs, root string, filter Filter) ([]models.NoteFile, error) {
	var files []models.NoteFile
	err := Walk(ctx, fs, root, func(file models.NoteFile) error {
		if file.IsDir {
			if !filter.IncludeHidden && file.IsHidden() {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.Excludes(file.RelPath(root)) {
			return nil
		}
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadDir lists the immediate entries of dir with one stat per entry, in the
// order the underlying listing returns them. Entries that vanish or cannot be
// stat'ed between listing and stat are skipped.
func ReadDir(fs afero.Fs, dir string) ([]models.NoteFile, error) {
	f, err := fs.Open(dir)
	if err != nil {
		return nil, err
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil {
		return nil, err
	}

	entries := make([]models.NoteFile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := fs.Stat(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("stat directory entry")
			continue
		}
		entries = append(entries, models.NoteFile{
			Path:    path,
			Name:    name,
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}
