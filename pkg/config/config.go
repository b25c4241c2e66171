package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

// Recognised configuration keys.
const (
	KeyDefaultNotePath    = "default_note_path"
	KeyListRecentLimit    = "list_recent_limit"
	KeyIgnorePatterns     = "ignore_patterns"
	KeyIncludeHiddenFiles = "include_hidden_files"
	KeyTreeviewHideTags   = "treeview_hide_tags"
	KeyTreeviewHideFiles  = "treeview_hide_files"
)

// Keys lists every recognised key in display order.
var Keys = []string{
	KeyDefaultNotePath,
	KeyListRecentLimit,
	KeyIgnorePatterns,
	KeyIncludeHiddenFiles,
	KeyTreeviewHideTags,
	KeyTreeviewHideFiles,
}

// DefaultListRecentLimit applies when the limit is unset or not positive.
const DefaultListRecentLimit = 10

const (
	envPrefix         = "NOTETREE"
	workspaceFileName = ".notetree.yaml"
)

// Scope selects which file an update is persisted to.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeWorkspace
)

func (s Scope) String() string {
	if s == ScopeWorkspace {
		return "workspace"
	}
	return "global"
}

// Settings is a snapshot of the configuration taken at the start of an operation.
type Settings struct {
	NotesPath          string   `json:"default_note_path"`
	ListRecentLimit    int      `json:"list_recent_limit"`
	IgnorePatterns     []string `json:"ignore_patterns"`
	IncludeHiddenFiles bool     `json:"include_hidden_files"`
	HideTags           bool     `json:"treeview_hide_tags"`
	HideFiles          bool     `json:"treeview_hide_files"`
}

// IgnorePattern compiles the configured fragments into one expression.
// A nil result ignores nothing.
func (s Settings) IgnorePattern() (*regexp.Regexp, error) {
	return notefs.CompileIgnore(s.IgnorePatterns)
}

// Filter builds the walk filter shared by the tag index and the recent list.
func (s Settings) Filter() (notefs.Filter, error) {
	re, err := s.IgnorePattern()
	if err != nil {
		return notefs.Filter{}, err
	}
	return notefs.Filter{Ignore: re, IncludeHidden: s.IncludeHiddenFiles}, nil
}

// Store reads and writes the two configuration files. Nothing is cached:
// every Load re-reads both files so external edits take effect immediately.
type Store struct {
	fs            afero.Fs
	globalFile    string
	workspaceFile string
}

// NewStore creates a store backed by globalFile and, when workspaceDir is not
// empty, a workspace file inside workspaceDir.
func NewStore(fs afero.Fs, globalFile, workspaceDir string) *Store {
	s := &Store{fs: fs, globalFile: globalFile}
	if workspaceDir != "" {
		s.workspaceFile = filepath.Join(workspaceDir, workspaceFileName)
	}
	return s
}

// DefaultGlobalFile returns $XDG_CONFIG_HOME/notetree/config.yaml, falling
// back to ~/.config/notetree/config.yaml.
func DefaultGlobalFile() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "notetree", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "notetree", "config.yaml"), nil
}

// GlobalFile returns the path of the global configuration file.
func (s *Store) GlobalFile() string { return s.globalFile }

// WorkspaceFile returns the path of the workspace configuration file, if any.
func (s *Store) WorkspaceFile() string { return s.workspaceFile }

// Load reads defaults, the global file, the workspace file and the
// environment, in increasing order of precedence.
func (s *Store) Load() (Settings, error) {
	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigType("yaml")

	v.SetDefault(KeyDefaultNotePath, "")
	v.SetDefault(KeyListRecentLimit, DefaultListRecentLimit)
	v.SetDefault(KeyIgnorePatterns, []string{})
	v.SetDefault(KeyIncludeHiddenFiles, false)
	v.SetDefault(KeyTreeviewHideTags, false)
	v.SetDefault(KeyTreeviewHideFiles, false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := s.merge(v, s.globalFile); err != nil {
		return Settings{}, err
	}
	if err := s.merge(v, s.workspaceFile); err != nil {
		return Settings{}, err
	}

	settings := Settings{
		NotesPath:          v.GetString(KeyDefaultNotePath),
		ListRecentLimit:    v.GetInt(KeyListRecentLimit),
		IgnorePatterns:     v.GetStringSlice(KeyIgnorePatterns),
		IncludeHiddenFiles: v.GetBool(KeyIncludeHiddenFiles),
		HideTags:           v.GetBool(KeyTreeviewHideTags),
		HideFiles:          v.GetBool(KeyTreeviewHideFiles),
	}
	if settings.ListRecentLimit <= 0 {
		settings.ListRecentLimit = DefaultListRecentLimit
	}
	return settings, nil
}

func (s *Store) merge(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("check config %s: %w", path, err)
	}
	if !exists {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Update persists a single key to the file of the given scope, keeping the
// other keys of that file.
func (s *Store) Update(key string, value any, scope Scope) error {
	path := s.globalFile
	if scope == ScopeWorkspace {
		path = s.workspaceFile
	}
	if path == "" {
		return fmt.Errorf("no %s configuration file", scope)
	}

	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigType("yaml")
	if err := s.merge(v, path); err != nil {
		return err
	}
	v.Set(key, value)

	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ParseValue converts command-line values to the type stored under key.
// Ignore patterns take one fragment per value, verbatim, and no values clears
// them. Every other key takes exactly one value.
func ParseValue(key string, values []string) (any, error) {
	if key == KeyIgnorePatterns {
		patterns := make([]string, 0, len(values))
		for _, p := range values {
			if p != "" {
				patterns = append(patterns, p)
			}
		}
		if _, err := notefs.CompileIgnore(patterns); err != nil {
			return nil, err
		}
		return patterns, nil
	}

	if !isKey(key) {
		return nil, fmt.Errorf("unknown configuration key %q", key)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s takes exactly one value, got %d", key, len(values))
	}
	raw := values[0]

	switch key {
	case KeyListRecentLimit:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	case KeyIncludeHiddenFiles, KeyTreeviewHideTags, KeyTreeviewHideFiles:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func isKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
