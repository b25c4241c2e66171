package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/pkg/frontmatter"
	"github.com/mattsolo1/grove-notetree/pkg/models"
)

// ReadNote reads and parses a note file
func (s *Service) ReadNote(path string) (*models.Note, error) {
	info, err := s.Fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	content, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return nil, err
	}
	contentStr := string(content)

	note := &models.Note{
		Path:       path,
		Body:       contentStr,
		ModifiedAt: info.ModTime(),
	}

	doc, err := frontmatter.Parse(contentStr)
	switch {
	case err == nil:
		note.Body = doc.Body
		note.Tags = doc.Tags()
		if title, ok := doc.Data["title"].(string); ok && strings.TrimSpace(title) != "" {
			note.Title = strings.TrimSpace(title)
		}
	case errors.Is(err, frontmatter.ErrMalformed), errors.Is(err, frontmatter.ErrNotObject):
		// Show the raw file; the tag index skips it anyway.
		log.WithError(err).WithField("path", path).Debug("preview without front matter")
	default:
		return nil, err
	}

	if note.Title == "" {
		note.Title = extractTitle(note.Body)
	}
	if note.Title == "" {
		note.Title = strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
	}
	note.WordCount = countWords(note.Body)
	return note, nil
}

// extractTitle gets the title from markdown content
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func countWords(content string) int {
	return len(strings.Fields(content))
}

// sortEntries puts directories first, then files, each by name.
func sortEntries(entries []models.NoteFile) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
}
