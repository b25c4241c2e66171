package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/internal/tui/picker"
	"github.com/mattsolo1/grove-notetree/pkg/recent"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

// NewRecentCmd creates the `notetree recent` command.
func NewRecentCmd(svc **service.Service) *cobra.Command {
	var (
		printOnly bool
		query     string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Pick one of the most recently modified notes and open it",
		Long: `List the most recently modified notes, newest first, up to
list_recent_limit entries. The chosen note opens in $EDITOR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			entries, err := s.Recent(cmd.Context())
			if err != nil {
				return err
			}
			entries = recent.Match(entries, query)

			interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
			if printOnly || !interactive {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\n", e.RelPath, e.ModTime.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
				return nil
			}

			chosen, err := picker.Run(entries)
			if err != nil || chosen == nil {
				return err
			}
			return s.Open(chosen.Path)
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the list instead of picking")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Keep only paths matching these characters in order")
	return cmd
}
