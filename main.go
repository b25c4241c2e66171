package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notetree/cmd"
	"github.com/mattsolo1/grove-notetree/cmd/config"
	"github.com/mattsolo1/grove-notetree/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:          "notetree",
		Short:        "Browse a folder of markdown notes by file and by tag",
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		var err error
		svc, err = config.InitService()
		return err
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewSetupCmd(&svc))
	rootCmd.AddCommand(cmd.NewTreeCmd(&svc))
	rootCmd.AddCommand(cmd.NewFilesCmd(&svc))
	rootCmd.AddCommand(cmd.NewTagsCmd(&svc))
	rootCmd.AddCommand(cmd.NewRecentCmd(&svc))
	rootCmd.AddCommand(cmd.NewRenameCmd(&svc))
	rootCmd.AddCommand(cmd.NewRmCmd(&svc))
	rootCmd.AddCommand(cmd.NewConfigCmd(&svc))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
