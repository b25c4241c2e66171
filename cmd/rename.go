package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/internal/tui/prompt"
	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tree"
)

// NewRenameCmd creates the `notetree rename` command.
func NewRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> [new-name]",
		Short: "Rename a note or directory within its folder",
		Long: `Rename a file or directory. The path may be relative to the notes folder.
Without a new name you are prompted for one.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			entry, err := s.Entry(args[0])
			if err != nil {
				return err
			}

			var name string
			if len(args) == 2 {
				name = args[1]
			} else {
				name, err = prompt.Ask("Rename "+entry.Name, entry.Name, "")
				if err != nil {
					return err
				}
			}

			if err := s.Provider(nil).Rename(cmd.Context(), entry, name); err != nil {
				return err
			}
			if name != "" && name != entry.Name {
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", entry.Name, name)
			}
			return nil
		},
	}
}

// NewRmCmd creates the `notetree rm` command.
func NewRmCmd(svc **service.Service) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a note or directory after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			entry, err := s.Entry(args[0])
			if err != nil {
				return err
			}

			var confirmer tree.Confirmer = prompt.Confirmer{}
			if yes {
				confirmer = tree.ConfirmFunc(func(context.Context, tree.Question) (bool, error) { return true, nil })
			}

			p := s.Provider(confirmer)
			before := p.Generation()
			if err := p.Remove(cmd.Context(), entry); err != nil {
				return err
			}
			if p.Generation() != before {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", entry.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
