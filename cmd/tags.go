package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/pkg/service"
	"github.com/mattsolo1/grove-notetree/pkg/tags"
)

type tagJSON struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// NewTagsCmd creates the `notetree tags` command.
func NewTagsCmd(svc **service.Service) *cobra.Command {
	var tagsJSON bool

	cmd := &cobra.Command{
		Use:   "tags [tag]",
		Short: "Print the tag index",
		Long: `Print every tag found in front matter with the number of notes carrying it.
With a tag argument, print the notes carrying that tag.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			index, err := s.Tags(cmd.Context())
			if err != nil {
				return err
			}
			root, err := s.NotesRoot()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				index = selectTag(index, args[0])
				if len(index) == 0 {
					return fmt.Errorf("no notes tagged %q", args[0])
				}
			}

			out := cmd.OutOrStdout()
			if tagsJSON {
				result := make([]tagJSON, 0, len(index))
				for _, t := range index {
					tj := tagJSON{Name: t.Name, Files: make([]string, 0, len(t.Files))}
					for _, f := range t.Files {
						tj.Files = append(tj.Files, f.RelPath(root))
					}
					result = append(result, tj)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if len(args) == 1 {
				for _, f := range index[0].Files {
					fmt.Fprintln(out, f.RelPath(root))
				}
				return nil
			}
			for _, t := range index {
				fmt.Fprintf(out, "%s (%d)\n", t.Name, len(t.Files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&tagsJSON, "json", false, "Output in JSON format")
	return cmd
}

func selectTag(index []tags.Tag, name string) []tags.Tag {
	for _, t := range index {
		if t.Name == name {
			return []tags.Tag{t}
		}
	}
	return nil
}
