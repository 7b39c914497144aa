package commands

import (
	"context"
	"fmt"
	"time"
	"yst-fantasy/internal/components/serviceutil"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool

	tel       telemetry.API = telemetry.SlogAPI{}
	otelSetup telemetry.Otel
)

var rootCmd = &cobra.Command{
	Use:          "ffdata",
	Short:        "ffdata collects fantasy football players from yahoo, sleeper and tank01 and merges them.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		err := otelSetup.Shutdown(ctx)
		if err != nil {
			tel.ReportWarning("cli.otel-shutdown", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", fmt.Sprintf("The config file, %s is searched for upwards from the cwd by default.", config.DefaultFile))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs.")
}

// setup loads the config and starts exporting telemetry if it is configured.
func setup(ctx context.Context) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	otelSetup, err = telemetry.Setup(ctx, "ffdata", cfg.Telemetry)
	if err != nil {
		return config.Config{}, fmt.Errorf("setup telemetry: %w", err)
	}
	return cfg, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("ffdata", err)
	}
}
