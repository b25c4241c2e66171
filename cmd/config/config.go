package config

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/internal/logging"
	notecfg "github.com/mattsolo1/grove-notetree/pkg/config"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

var (
	cfgFile           string
	WorkspaceOverride string
	Verbose           bool
)

// NewStore builds the configuration store from the global flags. The
// workspace defaults to the current directory.
func NewStore(fs afero.Fs) (*notecfg.Store, error) {
	globalFile := cfgFile
	if globalFile == "" {
		var err error
		globalFile, err = notecfg.DefaultGlobalFile()
		if err != nil {
			return nil, err
		}
	}

	workspaceDir := WorkspaceOverride
	if workspaceDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workspaceDir = wd
	}
	return notecfg.NewStore(fs, globalFile, workspaceDir), nil
}

// InitService wires the service against the OS filesystem.
func InitService() (*service.Service, error) {
	logging.SetVerbose(Verbose)

	fs := afero.NewOsFs()
	store, err := NewStore(fs)
	if err != nil {
		return nil, err
	}

	return service.New(fs, store, &service.Config{
		Editor: os.Getenv("EDITOR"),
	})
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "global config file (default is $XDG_CONFIG_HOME/notetree/config.yaml)")
	cmd.PersistentFlags().StringVarP(&WorkspaceOverride, "workspace", "W", "", "workspace directory holding .notetree.yaml (default is the current directory)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable debug logging")
}
