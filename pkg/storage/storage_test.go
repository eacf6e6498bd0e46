package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amithcabraal/pt-dashboard-28/pkg/config"
	"github.com/amithcabraal/pt-dashboard-28/pkg/storage"
)

func TestFileSlot_ReadWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slot.json")
	slot := storage.NewFileSlot(path)

	// Empty slot before first write.
	_, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, slot.Write(ctx, []byte(`{"tests":[]}`)))

	data, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"tests":[]}`, string(data))

	// Write overwrites wholesale.
	require.NoError(t, slot.Write(ctx, []byte(`[]`)))

	data, found, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(data))
}

func TestFileSlot_WriteToMissingDir(t *testing.T) {
	t.Parallel()

	slot := storage.NewFileSlot(filepath.Join(t.TempDir(), "missing", "slot.json"))

	err := slot.Write(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestMemorySlot_ReadWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slot := storage.NewMemorySlot()

	_, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	payload := []byte(`{"tests":[{"id":"a"}]}`)
	require.NoError(t, slot.Write(ctx, payload))

	data, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload, data)

	// Mutating the returned slice must not affect the stored value.
	data[0] = 'X'

	again, _, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, again)
}

func setupDBSlot(t *testing.T) storage.Slot {
	t.Helper()

	cfg := &config.StorageConfig{
		Driver: "sqlite",
		Key:    "performance-tests",
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	slot := storage.NewDBSlot(log, cfg)

	lc, ok := slot.(storage.Lifecycle)
	require.True(t, ok)
	require.NoError(t, lc.Start(context.Background()))

	t.Cleanup(func() { _ = lc.Stop() })

	return slot
}

func TestDBSlot_ReadWrite(t *testing.T) {
	ctx := context.Background()
	slot := setupDBSlot(t)

	_, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, slot.Write(ctx, []byte(`{"tests":[]}`)))
	require.NoError(t, slot.Write(ctx, []byte(`{"tests":[{"id":"a"}]}`)))

	data, found, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"tests":[{"id":"a"}]}`, string(data))
}

func TestNew_DriverSelection(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	dir := t.TempDir()

	tests := []struct {
		driver  string
		wantErr bool
	}{
		{driver: "file"},
		{driver: "memory"},
		{driver: "sqlite"},
		{driver: "postgres"},
		{driver: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			t.Parallel()

			cfg := &config.StorageConfig{
				Driver: tt.driver,
				Path:   filepath.Join(dir, "slot.json"),
				Key:    "k",
			}

			slot, err := storage.New(log, cfg)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, slot)
		})
	}
}

func TestFileSlot_RoundTripOnDisk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "slot.json")
	slot := storage.NewFileSlot(path)

	require.NoError(t, slot.Write(ctx, []byte("payload")))

	// A fresh slot over the same path sees what was written.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(raw))

	data, found, err := storage.NewFileSlot(path).Read(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", string(data))
}
