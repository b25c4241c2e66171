package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/pkg/service"
)

// NewFilesCmd creates the `notetree files` command.
func NewFilesCmd(svc **service.Service) *cobra.Command {
	var filesJSON bool

	cmd := &cobra.Command{
		Use:     "files [dir]",
		Short:   "List the entries of the notes folder or one of its directories",
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			entries, err := s.Files(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if filesJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, e := range entries {
				name := e.Name
				if e.IsDir {
					name += "/"
				}
				fmt.Fprintf(w, "%s\t%s\n", name, e.ModTime.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&filesJSON, "json", false, "Output in JSON format")
	return cmd
}
