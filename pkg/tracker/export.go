package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// exportTimeLayout renders the ISO timestamp with colons replaced so
// the filename is safe everywhere, truncated to second precision.
const exportTimeLayout = "2006-01-02T15-04-05"

// ExportFilename returns the snapshot filename for the given instant.
func ExportFilename(at time.Time) string {
	return fmt.Sprintf("performance-tests-%s.json", at.UTC().Format(exportTimeLayout))
}

// ExportJSON reads the persisted tests and returns them pretty-printed,
// together with the filename a download would use. No state is mutated.
func (tr *Tracker) ExportJSON(ctx context.Context) ([]byte, string, error) {
	tests, _, err := tr.adapter.Read(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := json.MarshalIndent(tests, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshaling export: %w", err)
	}

	return data, ExportFilename(tr.adapter.Now()), nil
}

// Export writes the snapshot into dir and returns the written path.
func (tr *Tracker) Export(ctx context.Context, dir string) (string, error) {
	data, filename, err := tr.ExportJSON(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export snapshot: %w", err)
	}

	tr.log.WithField("path", path).Info("Export snapshot written")

	return path, nil
}
