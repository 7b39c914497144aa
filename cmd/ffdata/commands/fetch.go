package commands

import (
	"fmt"
	"yst-fantasy/internal/collector"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/snapshot"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:       "fetch <yahoo|sleeper|tank01>",
	Short:     "Fetches a single provider and saves its players to a raw snapshot.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"yahoo", "sleeper", "tank01"},
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := reconcile.ParseProvider(args[0])
		if err != nil {
			return err
		}
		cfg, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		fetcher, err := newFetcher(cfg, provider)
		if err != nil {
			return err
		}

		c := collector.NewCollector(collector.Options{
			Fetchers: map[reconcile.Provider]collector.Fetcher{provider: fetcher},
			Writer:   snapshot.NewWriter(cfg.OutputDir, chrono.NewStandardTime()),
		}, tel)
		players, path, err := c.Fetch(cmd.Context(), provider)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s players to %s\n", len(players), provider, path)
		return nil
	},
}
