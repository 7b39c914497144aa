package commands

import (
	"fmt"
	"io"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/snapshot"

	"github.com/spf13/cobra"
)

type reconcileFlags struct {
	inputs    map[reconcile.Provider]*string
	outputDir string
	nearMiss  float64
}

var reconcileOpts = reconcileFlags{inputs: map[reconcile.Provider]*string{}}

func init() {
	for _, p := range reconcile.Providers {
		reconcileOpts.inputs[p] = reconcileCmd.Flags().String(p.String(), "", fmt.Sprintf("A raw %s snapshot.", p))
	}
	reconcileCmd.Flags().StringVar(&reconcileOpts.outputDir, "out", "", "If set, the merged players are saved to a snapshot in this directory.")
	reconcileCmd.Flags().Float64Var(&reconcileOpts.nearMiss, "near-miss", reconcile.DefaultNearMissThreshold, "Name similarity (0-1) above which unmerged players on a team are reported, 0 disables.")
	rootCmd.AddCommand(reconcileCmd)
}

// runReconcile merges previously saved raw snapshots, a provider without a snapshot
// is treated as empty.
func runReconcile(out io.Writer, time chrono.TimeAPI, flags reconcileFlags) (reconcile.Result, error) {
	var inputs [3][]reconcile.RawPlayer
	given := 0
	for i, p := range reconcile.Providers {
		path := flags.inputs[p]
		if path == nil || *path == "" {
			continue
		}
		players, err := snapshot.ReadPlayers(*path)
		if err != nil {
			return reconcile.Result{}, err
		}
		inputs[i] = players
		given++
	}
	if given == 0 {
		return reconcile.Result{}, fmt.Errorf("at least one of --yahoo, --sleeper or --tank01 is required")
	}

	result := reconcile.NewReconciler(reconcile.Options{NearMissThreshold: flags.nearMiss}).
		Reconcile(inputs[0], inputs[1], inputs[2])
	renderReport(out, result.Report)

	if flags.outputDir != "" {
		path, err := snapshot.NewWriter(flags.outputDir, time).WriteComprehensive(result)
		if err != nil {
			return reconcile.Result{}, err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return result, nil
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile [--yahoo <file>] [--sleeper <file>] [--tank01 <file>] [--out <dir>]",
	Short: "Merges saved raw snapshots without fetching anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runReconcile(cmd.OutOrStdout(), chrono.NewStandardTime(), reconcileOpts)
		return err
	},
}
