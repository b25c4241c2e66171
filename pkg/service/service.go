package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/models"
	"github.com/mattsolo1/grove-notetree/pkg/notefs"
	"github.com/mattsolo1/grove-notetree/pkg/recent"
	"github.com/mattsolo1/grove-notetree/pkg/tags"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

var log = logging.NewLogger("notetree.service")

// Service is the core note service
type Service struct {
	Fs     afero.Fs
	Store  *config.Store
	Config *Config
}

// Config holds service configuration
type Config struct {
	// Editor overrides $EDITOR.
	Editor string
	// Home is used for the default notes folder and for "~" expansion.
	Home string
	// Concurrency bounds parallel file reads while indexing tags.
	Concurrency int
}

// New creates a new note service
func New(fs afero.Fs, store *config.Store, cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.Home = home
	}
	return &Service{Fs: fs, Store: store, Config: cfg}, nil
}

// Settings loads the current configuration.
func (s *Service) Settings() (config.Settings, error) {
	return s.Store.Load()
}

// DefaultNotesPath is the folder used until one is configured.
func (s *Service) DefaultNotesPath() string {
	return filepath.Join(s.Config.Home, "Documents", "Notes")
}

// NotesRoot returns the configured notes folder, creating it if missing.
// When nothing is configured the default folder is persisted globally.
func (s *Service) NotesRoot() (string, error) {
	settings, err := s.Store.Load()
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	root := settings.NotesPath
	if root == "" {
		root = s.DefaultNotesPath()
		if err := s.Store.Update(config.KeyDefaultNotePath, root, config.ScopeGlobal); err != nil {
			return "", fmt.Errorf("persist default notes path: %w", err)
		}
		log.WithField("path", root).Info("using default notes folder")
	}
	root = s.expandHome(root)

	if err := s.Fs.MkdirAll(root, 0755); err != nil {
		return "", fmt.Errorf("ensure notes folder: %w", err)
	}
	return root, nil
}

// Setup persists dir as the notes folder in the global scope and returns the
// normalised path. An empty dir is a cancelled selection and changes nothing.
func (s *Service) Setup(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", nil
	}

	dir = s.expandHome(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := s.Store.Update(config.KeyDefaultNotePath, abs, config.ScopeGlobal); err != nil {
		return "", err
	}
	return abs, nil
}

// ToggleIncludeHidden flips include_hidden_files in the global scope and
// returns the new value.
func (s *Service) ToggleIncludeHidden() (bool, error) {
	settings, err := s.Store.Load()
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	next := !settings.IncludeHiddenFiles
	if err := s.Store.Update(config.KeyIncludeHiddenFiles, next, config.ScopeGlobal); err != nil {
		return false, err
	}
	return next, nil
}

// Set parses values for key and writes the result to the given scope.
func (s *Service) Set(key string, values []string, scope config.Scope) error {
	value, err := config.ParseValue(key, values)
	if err != nil {
		return err
	}
	return s.Store.Update(key, value, scope)
}

// Provider returns a tree provider over the notes folder.
func (s *Service) Provider(confirm tree.Confirmer) *tree.Provider {
	p := tree.NewProvider(s.Fs, s.Store, s.NotesRoot, confirm)
	p.Concurrency = s.Config.Concurrency
	return p
}

// Tags builds the tag index of the notes folder.
func (s *Service) Tags(ctx context.Context) ([]tags.Tag, error) {
	_, root, filter, err := s.prepare()
	if err != nil {
		return nil, err
	}
	index, err := tags.Build(ctx, s.Fs, root, tags.Options{Filter: filter, Concurrency: s.Config.Concurrency})
	if err != nil {
		log.WithError(err).WithField("root", root).Error("tag index failed")
		return nil, err
	}
	return index, nil
}

// Recent lists the most recently modified notes, up to the configured limit.
func (s *Service) Recent(ctx context.Context) ([]recent.Entry, error) {
	settings, root, filter, err := s.prepare()
	if err != nil {
		return nil, err
	}
	entries, err := recent.Collect(ctx, s.Fs, root, recent.Options{Filter: filter, Limit: settings.ListRecentLimit})
	if err != nil {
		log.WithError(err).WithField("root", root).Error("recent notes failed")
		return nil, err
	}
	return entries, nil
}

// Files lists the immediate entries of dir, which may be relative to the
// notes folder. Directories come first, then files, each sorted by name.
func (s *Service) Files(dir string) ([]models.NoteFile, error) {
	path, err := s.Resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := notefs.ReadDir(s.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sortEntries(entries)
	return entries, nil
}

// Resolve turns a path relative to the notes folder into an absolute one.
// Absolute paths are returned unchanged.
func (s *Service) Resolve(path string) (string, error) {
	root, err := s.NotesRoot()
	if err != nil {
		return "", err
	}
	path = s.expandHome(path)
	if path == "" {
		return root, nil
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(root, path), nil
}

// Entry stats path and returns it as a tree node for rename and delete.
func (s *Service) Entry(path string) (*tree.Entry, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := s.Fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	return tree.NewEntry(models.NoteFile{
		Path:    abs,
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}), nil
}

// OpenCommand returns the editor invocation for path without running it.
func (s *Service) OpenCommand(path string) *exec.Cmd {
	editor := s.Config.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	// EDITOR may carry arguments, e.g. "code --wait".
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"vim"} // fallback
	}
	args := append(fields[1:], path)
	return exec.Command(fields[0], args...)
}

// Open opens a file in the configured editor attached to the terminal.
func (s *Service) Open(path string) error {
	cmd := s.OpenCommand(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (s *Service) prepare() (config.Settings, string, notefs.Filter, error) {
	settings, err := s.Store.Load()
	if err != nil {
		return config.Settings{}, "", notefs.Filter{}, fmt.Errorf("load settings: %w", err)
	}
	filter, err := settings.Filter()
	if err != nil {
		return config.Settings{}, "", notefs.Filter{}, err
	}
	root, err := s.NotesRoot()
	if err != nil {
		return config.Settings{}, "", notefs.Filter{}, err
	}
	return settings, root, filter, nil
}

func (s *Service) expandHome(path string) string {
	if path == "~" {
		return s.Config.Home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(s.Config.Home, path[2:])
	}
	return path
}
