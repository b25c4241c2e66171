package models

import (
	"path/filepath"
	"strings"
	"time"
)

// NoteFile is a single filesystem entry found below the notes root.
type NoteFile struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	IsDir   bool      `json:"is_dir"`
	ModTime time.Time `json:"modified_at"`
}

// IsHidden reports whether the entry's base name carries the hidden-file marker.
func (f NoteFile) IsHidden() bool {
	return IsHiddenName(f.Name)
}

// IsHiddenName reports whether a base name starts with a dot.
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// RelPath returns the slash-separated path of f relative to root.
func (f NoteFile) RelPath(root string) string {
	rel, err := filepath.Rel(root, f.Path)
	if err != nil {
		return filepath.ToSlash(f.Path)
	}
	return filepath.ToSlash(rel)
}

// Note is a parsed markdown file, as shown in previews.
type Note struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags,omitempty"`
	Body       string    `json:"-"`
	WordCount  int       `json:"word_count"`
	ModifiedAt time.Time `json:"modified_at"`
}
