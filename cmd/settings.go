package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	notecfg "github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

// NewConfigCmd creates the `notetree config` command group.
func NewConfigCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd(svc))
	cmd.AddCommand(newConfigToggleHiddenCmd(svc))
	cmd.AddCommand(newConfigSetCmd(svc))
	return cmd
}

type settingsYAML struct {
	NotesPath          string   `yaml:"default_note_path"`
	ListRecentLimit    int      `yaml:"list_recent_limit"`
	IgnorePatterns     []string `yaml:"ignore_patterns"`
	IncludeHiddenFiles bool     `yaml:"include_hidden_files"`
	HideTags           bool     `yaml:"treeview_hide_tags"`
	HideFiles          bool     `yaml:"treeview_hide_files"`
}

func newConfigShowCmd(svc **service.Service) *cobra.Command {
	var showJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings and the files they come from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			settings, err := s.Settings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(settings)
			}

			data, err := yaml.Marshal(settingsYAML(settings))
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			fmt.Fprintf(out, "# global:    %s\n", s.Store.GlobalFile())
			if ws := s.Store.WorkspaceFile(); ws != "" {
				fmt.Fprintf(out, "# workspace: %s\n", ws)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	return cmd
}

func newConfigToggleHiddenCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-hidden",
		Short: "Include or exclude hidden files from tags and recent notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := (*svc).ToggleIncludeHidden()
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintln(cmd.OutOrStdout(), "Hidden files included")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Hidden files excluded")
			}
			return nil
		},
	}
}

func newConfigSetCmd(svc **service.Service) *cobra.Command {
	var workspaceScope bool

	cmd := &cobra.Command{
		Use:   "set <key> [value...]",
		Short: "Persist one setting",
		Long: `Persist one setting. Every key takes one value except ignore_patterns,
which takes one regular expression per argument; none clears the list.

  notetree config set list_recent_limit 20
  notetree config set ignore_patterns '\.tmp$' '^log-\d{2,4}\.md$'`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: notecfg.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := notecfg.ScopeGlobal
			if workspaceScope {
				scope = notecfg.ScopeWorkspace
			}
			if err := (*svc).Set(args[0], args[1:], scope); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s configuration\n", args[0], scope)
			return nil
		},
	}

	cmd.Flags().BoolVar(&workspaceScope, "workspace-scope", false, "Write to the workspace file instead of the global one")
	return cmd
}
