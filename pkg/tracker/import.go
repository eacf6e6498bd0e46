package tracker

import (
	"context"
	"fmt"
	"os"

	"github.com/amithcabraal/pt-dashboard-28/pkg/persist"
)

// Import parses data as a bare test array and replaces the whole
// collection. Import is all-or-nothing: a parse failure returns a
// DeserializationError and leaves the previous in-memory and persisted
// state completely untouched. Imports are deliberately permissive:
// anything that decodes as a test array is accepted verbatim.
func (tr *Tracker) Import(ctx context.Context, data []byte) error {
	tests, err := persist.DecodeTests(data)
	if err != nil {
		return err
	}

	if err := tr.ImportAll(ctx, tests); err != nil {
		return err
	}

	tr.log.WithField("tests", len(tests)).Info("Collection imported")

	return nil
}

// ImportFile imports a user-supplied JSON file.
func (tr *Tracker) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import file: %w", err)
	}

	return tr.Import(ctx, data)
}
