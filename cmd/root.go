// Package cmd implements the fedimapper CLI surface named in spec.md §6,
// grounded on the teacher's cmd package: a single cobra root command with
// subcommands, global config/logging bootstrap, and an Execute entrypoint
// a thin main.go calls. Exit codes follow spec.md §6: 0 on success, 1 on
// any input/operational error.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tedivm/fedimapper/config"
	"github.com/tedivm/fedimapper/logging"
)

var configPath string
var settings config.Settings

var root = &cobra.Command{
	Use:   "fedimapper",
	Short: "A federated-social-network crawler and inventory",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = s
		logging.Init(settings.LogLevel, settings.LogFormat)
		return nil
	},
}

func init() {
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to fedimapper.yaml")
	root.AddCommand(crawlCmd, ingestInstanceCmd, instanceCmd, instanceVersionCmd, instancePeersCmd, instanceBlocksCmd, vacuumDatabaseCmd)
}

// Execute runs the CLI, exiting the process with spec.md §6's exit code
// convention: 0 on success, 1 on any input/operational error.
func Execute() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func backgroundContext() context.Context {
	return context.Background()
}
