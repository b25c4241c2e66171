package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	"github.com/mattsolo1/grove-notetree/internal/tui/browser"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

var treeLog = logging.NewLogger("notetree.cmd.tree")

// NewTreeCmd creates the `notetree tree` command.
func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		noWatch bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Browse the notes folder and its tags interactively",
		Long: `Launch an interactive tree with two roots: Files, the notes folder as it
is on disk, and Tags, every tag declared in front matter with the notes
that carry it. Files open in $EDITOR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			s := *svc
			root, err := s.NotesRoot()
			if err != nil {
				return err
			}

			var watcher *browser.Watcher
			if !noWatch {
				watcher, err = browser.NewWatcher(root)
				if err != nil {
					treeLog.WithError(err).Warn("live refresh disabled")
					watcher = nil
				}
			}

			model := browser.New(s, root, watcher)
			defer model.Close()

			// Log lines would tear the alternate screen.
			defer redirectLogs(logFile)()

			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not refresh when files change on disk")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Where to write logs while the browser runs (default is $XDG_STATE_HOME/notetree/notetree.log)")
	return cmd
}

// redirectLogs sends log output to path, or to the default state file when
// path is empty. Logs are discarded when no file can be opened.
func redirectLogs(path string) (restore func()) {
	var err error
	if path == "" {
		path, err = logging.DefaultFile()
	}
	if err == nil {
		var closeFile func() error
		if closeFile, err = logging.ToFile(path); err == nil {
			return func() { _ = closeFile() }
		}
	}

	treeLog.WithError(err).Warn("log file unavailable, discarding logs while the browser runs")
	logging.SetOutput(io.Discard)
	return func() { logging.SetOutput(os.Stderr) }
}
