package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestInstanceCmd = &cobra.Command{
	Use:   "ingest-instance HOST",
	Short: "Run a single host through the ingest pipeline once and print the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()
		host := args[0]

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		orchestrator := buildOrchestrator(settings, st)

		status, err := orchestrator.IngestHost(ctx, host)
		if err != nil {
			return fmt.Errorf("ingest %v: %w", host, err)
		}

		fmt.Printf("%v: %v\n", host, status)
		return nil
	},
}
