// Package storage provides the slot backends the persistence layer
// writes the test collection to. A slot is a single named value in a
// key-value style backend, mirroring the one browser-storage entry the
// dashboard originally persisted into.
package storage

import (
	"context"
	"fmt"

	"github.com/amithcabraal/pt-dashboard-28/pkg/config"
	"github.com/sirupsen/logrus"
)

// Slot provides read/write access to a single named storage slot.
// Implementations must overwrite the previous value wholesale on Write.
type Slot interface {
	// Read returns the stored bytes. found is false when nothing has
	// been written to the slot yet.
	Read(ctx context.Context) (data []byte, found bool, err error)

	// Write replaces the slot contents with data.
	Write(ctx context.Context, data []byte) error
}

// Lifecycle is implemented by slots that hold external resources.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop() error
}

// New creates a Slot for the configured driver. Database-backed slots
// must be started via their Lifecycle before first use.
func New(log logrus.FieldLogger, cfg *config.StorageConfig) (Slot, error) {
	switch cfg.Driver {
	case "file":
		return NewFileSlot(cfg.Path), nil
	case "memory":
		return NewMemorySlot(), nil
	case "sqlite", "postgres":
		return NewDBSlot(log, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
