package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var root = newRoot()

func newRoot() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logger
}

// NewLogger returns a logger scoped to a named component, e.g. "notetree.tags".
func NewLogger(component string) *logrus.Entry {
	return root.WithField("component", component)
}

// SetVerbose switches between the quiet default and debug output.
func SetVerbose(verbose bool) {
	if verbose {
		root.SetLevel(logrus.DebugLevel)
		return
	}
	root.SetLevel(logrus.WarnLevel)
}

// SetOutput redirects all component loggers. The TUI uses this to keep log
// lines from tearing the alternate screen.
func SetOutput(w io.Writer) {
	root.SetOutput(w)
}

// DefaultFile returns $XDG_STATE_HOME/notetree/notetree.log, falling back to
// ~/.local/state/notetree/notetree.log.
func DefaultFile() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "notetree", "notetree.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "notetree", "notetree.log"), nil
}

// ToFile appends every component's output to path until restore is called,
// which puts the previous writer back and closes the file.
func ToFile(path string) (restore func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	prev := root.Out
	root.SetOutput(f)
	return func() error {
		root.SetOutput(prev)
		return f.Close()
	}, nil
}
