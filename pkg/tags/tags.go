// Package tags builds the tag index: a mapping from tag name to the notes
// whose front matter declares it.
package tags

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/frontmatter"
	"github.com/mattsolo1/grove-notetree/pkg/models"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

var log = logging.NewLogger("notetree.tags")

// Tag is one bucket of the index.
type Tag struct {
	Name  string
	Files []models.NoteFile
}

// Options controls which files are indexed and how many are read at once.
type Options struct {
	Filter notefs.Filter
	// Concurrency bounds parallel file reads. Zero means GOMAXPROCS.
	Concurrency int
}

// Build walks root and returns one Tag per distinct tag, sorted by byte-wise
// comparison of the name. Files keep their discovery order within a bucket.
// Unreadable files and malformed front matter are logged and treated as
// untagged; a directory that cannot be enumerated fails the whole build.
func Build(ctx context.Context, fs afero.Fs, root string, opts Options) ([]Tag, error) {
	files, err := notefs.Files(ctx, fs, root, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("index tags under %s: %w", root, err)
	}

	mapper := iter.Mapper[models.NoteFile, []string]{MaxGoroutines: opts.Concurrency}
	fileTags := mapper.Map(files, func(f *models.NoteFile) []string {
		return readTags(ctx, fs, *f)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := make(map[string][]models.NoteFile)
	for i, file := range files {
		for _, tag := range fileTags[i] {
			index[tag] = append(index[tag], file)
		}
	}

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Tag, 0, len(names))
	for _, name := range names {
		result = append(result, Tag{Name: name, Files: index[name]})
	}

	log.WithField("root", root).
		WithField("files", len(files)).
		WithField("tags", len(result)).
		Debug("tag index built")
	return result, nil
}

func readTags(ctx context.Context, fs afero.Fs, file models.NoteFile) []string {
	if ctx.Err() != nil {
		return nil
	}

	content, err := afero.ReadFile(fs, file.Path)
	if err != nil {
		log.WithError(err).WithField("path", file.Path).Warn("read note")
		return nil
	}

	doc, err := frontmatter.Parse(string(content))
	if err != nil {
		msg := "parse front matter"
		if errors.Is(err, frontmatter.ErrNotObject) {
			msg = "front matter is not an object"
		}
		log.WithError(err).WithField("path", file.Path).Warn(msg)
		return nil
	}
	return doc.Tags()
}
