package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the test collection from a JSON file",
	Long: `Replace the entire test collection with the contents of a JSON file
holding a bare test array. The import is all-or-nothing: a file that
fails to parse leaves the current collection untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	tr, cleanup, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tr.ImportFile(ctx, args[0]); err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	log.WithField("tests", len(tr.Tests())).Info("Import complete")

	return nil
}
