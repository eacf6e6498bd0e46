package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amithcabraal/pt-dashboard-28/pkg/upload"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an export snapshot of the test collection",
	Long: `Write the current test collection to a timestamped JSON snapshot,
optionally uploading it to the configured S3 bucket.`,
	RunE: runExport,
}

var (
	exportDir    string
	exportUpload bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportDir, "dir", "",
		"snapshot directory (defaults to export.dir from config)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false,
		"upload the snapshot to the configured S3 bucket")
}

func runExport(_ *cobra.Command, _ []string) error {
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

	dir := exportDir
	if dir == "" {
		dir = cfg.Export.Dir
	}

	path, err := tr.Export(ctx, dir)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	fmt.Println(path)

	if !exportUpload {
		return nil
	}

	if cfg.Upload == nil || !cfg.Upload.Enabled {
		return fmt.Errorf("upload requested but no upload section is enabled in config")
	}

	uploader, err := upload.NewS3Uploader(log, cfg.Upload)
	if err != nil {
		return fmt.Errorf("creating uploader: %w", err)
	}

	if err := uploader.Preflight(ctx); err != nil {
		return fmt.Errorf("upload preflight: %w", err)
	}

	if err := uploader.Upload(ctx, path); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}

	return nil
}
