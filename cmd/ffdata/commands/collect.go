package commands

import (
	"yst-fantasy/internal/collector"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/snapshot"

	"github.com/spf13/cobra"
)

var collectNearMiss float64

func init() {
	collectCmd.Flags().Float64Var(&collectNearMiss, "near-miss", reconcile.DefaultNearMissThreshold, "Name similarity (0-1) above which unmerged players on a team are reported, 0 disables.")
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetches every configured provider, merges the players and saves snapshots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd.Context())
		if err != nil {
			return err
		}

		c := collector.NewCollector(collector.Options{
			Fetchers:    newFetchers(cfg),
			Writer:      snapshot.NewWriter(cfg.OutputDir, chrono.NewStandardTime()),
			Reconciler:  reconcile.NewReconciler(reconcile.Options{NearMissThreshold: collectNearMiss}),
			RecordStats: true,
		}, tel)

		summary, err := c.Run(cmd.Context())
		renderSummary(cmd.OutOrStdout(), summary)
		return err
	},
}
