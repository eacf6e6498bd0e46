package storage

import (
	"context"
	"fmt"
	"os"
)

// Compile-time interface check.
var _ Slot = (*fileSlot)(nil)

type fileSlot struct {
	path string
}

// NewFileSlot creates a Slot backed by a single file on disk.
func NewFileSlot(path string) Slot {
	return &fileSlot{path: path}
}

// Read returns the file contents. A missing file is not an error; it
// reports an empty slot.
func (s *fileSlot) Read(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("reading slot file %s: %w", s.path, err)
	}

	return data, true, nil
}

// Write replaces the file contents.
func (s *fileSlot) Write(_ context.Context, data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing slot file %s: %w", s.path, err)
	}

	return nil
}
