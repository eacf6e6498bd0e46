package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amithcabraal/pt-dashboard-28/pkg/config"
	"github.com/amithcabraal/pt-dashboard-28/pkg/persist"
	"github.com/amithcabraal/pt-dashboard-28/pkg/storage"
	"github.com/amithcabraal/pt-dashboard-28/pkg/tracker"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile  string
	logLevel string
	log      *logrus.Logger
)

func main() {
	log = logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Failed to execute command")
	}
}

var rootCmd = &cobra.Command{
	Use:   "ptdash",
	Short: "Performance test tracking dashboard",
	Long: `Ptdash tracks performance test records (preparation scores, throughput
metrics, status, and test runs) in a single persisted slot, and serves
them to the dashboard views over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}

		log.SetLevel(level)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ptdash %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level ("+strings.Join(logLevels(), ", ")+")")

	rootCmd.AddCommand(versionCmd)
}

func logLevels() []string {
	levels := make([]string, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		levels = append(levels, level.String())
	}

	return levels
}

// loadConfig loads the config file, or defaults when none is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// openTracker builds the slot, adapter, and tracker for the configured
// storage backend and hydrates the collection. The returned cleanup
// closes database-backed slots.
func openTracker(
	ctx context.Context, cfg *config.Config,
) (*tracker.Tracker, func(), error) {
	slot, err := storage.New(log, &cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("creating storage slot: %w", err)
	}

	cleanup := func() {}

	if lc, ok := slot.(storage.Lifecycle); ok {
		if err := lc.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("starting storage slot: %w", err)
		}

		cleanup = func() {
			if err := lc.Stop(); err != nil {
				log.WithError(err).Warn("Storage slot stop error")
			}
		}
	}

	tr := tracker.New(log, persist.NewAdapter(log, slot, nil))

	if err := tr.Load(ctx); err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("loading test collection: %w", err)
	}

	return tr, cleanup, nil
}
