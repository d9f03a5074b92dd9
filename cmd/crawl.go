package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tedivm/fedimapper/fld"
	"github.com/tedivm/fedimapper/ingest"
	"github.com/tedivm/fedimapper/schedule"
	"github.com/tedivm/fedimapper/selection"
)

var numProcesses int

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Start the crawl engine's coordinator and worker pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := backgroundContext()

		st, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer st.Close()

		cfg := settings.Queue
		if numProcesses > 0 {
			cfg.NumProcesses = numProcesses
		}

		policy := selection.New(
			st,
			settings.BootstrapInstances,
			fld.Resolve,
			hoursToDuration(settings.StaleRescanHours),
			hoursToDuration(settings.UnreachableRescanHours),
		)

		runner := schedule.New(cfg, policy, func() *ingest.Orchestrator {
			return buildOrchestrator(settings, st)
		})

		return runner.Run(ctx)
	},
}

func init() {
	crawlCmd.Flags().IntVar(&numProcesses, "num-processes", 0, "override queue.num_processes")
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
