// Package recent lists the most recently modified notes.
package recent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

var log = logging.NewLogger("notetree.recent")

// Entry is one row of the recent list.
type Entry struct {
	RelPath string    `json:"path"`
	Path    string    `json:"absolute_path"`
	ModTime time.Time `json:"modified_at"`
}

// Options controls filtering and the size of the list.
type Options struct {
	Filter notefs.Filter
	// Limit caps the result. Zero or negative means config.DefaultListRecentLimit.
	Limit int
}

// Collect walks root with the tag index filter rules and returns the newest
// files first. Files with equal modification times keep their walk order.
func Collect(ctx context.Context, fs afero.Fs, root string, opts Options) ([]Entry, error) {
	files, err := notefs.Files(ctx, fs, root, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("list recent notes under %s: %w", root, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = config.DefaultListRecentLimit
	}
	if len(files) > limit {
		files = files[:limit]
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{RelPath: f.RelPath(root), Path: f.Path, ModTime: f.ModTime})
	}
	log.WithField("count", len(entries)).Debug("collected recent notes")
	return entries, nil
}

// Match keeps the entries whose relative path contains the query's characters
// in order, ignoring case. An empty query keeps everything.
func Match(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}
	fold := cases.Fold()
	needle := []rune(fold.String(query))

	var out []Entry
	for _, e := range entries {
		if subsequence([]rune(fold.String(e.RelPath)), needle) {
			out = append(out, e)
		}
	}
	return out
}

func subsequence(haystack, needle []rune) bool {
	i := 0
	for _, r := range haystack {
		if i == len(needle) {
			break
		}
		if r == needle[i] {
			i++
		}
	}
	return i == len(needle)
}
