package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/internal/tui/prompt"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

// NewSetupCmd creates the `notetree setup` command.
func NewSetupCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "setup [dir]",
		Short: "Choose the notes folder",
		Long: `Store the folder that holds your notes in the global configuration.
Without an argument you are prompted for it; an empty answer changes nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				settings, err := s.Settings()
				if err != nil {
					return err
				}
				initial := settings.NotesPath
				if initial == "" {
					initial = s.DefaultNotesPath()
				}
				dir, err = prompt.Ask("Select notes folder", initial, "path to your notes")
				if err != nil {
					return err
				}
			}

			path, err := s.Setup(dir)
			if err != nil {
				return err
			}
			if path == "" {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note path set to %s\n", path)
			return nil
		},
	}
}
