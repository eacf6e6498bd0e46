package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	return configPath
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
global: {}
storage: {}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.Global.LogLevel)
	assert.Equal(t, DefaultStorageDriver, cfg.Storage.Driver)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Equal(t, DefaultSlotKey, cfg.Storage.Key)
	assert.Equal(t, DefaultExportDir, cfg.Export.Dir)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
global:
  log_level: debug
storage:
  driver: sqlite
  key: my-tests
  sqlite:
    path: ./slot.db
export:
  dir: ./snapshots
server:
  listen: ":9090"
  cors_origins:
    - https://dashboard.example.com
  rate_limit:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Global.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "my-tests", cfg.Storage.Key)
	assert.Equal(t, "./slot.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, "./snapshots", cfg.Export.Dir)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, []string{"https://dashboard.example.com"}, cfg.Server.CORSOrigins)

	// Rate limit enabled without an explicit rate gets the default.
	assert.Equal(t, 120, cfg.Server.RateLimit.RequestsPerMinute)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "global: [not: a: mapping")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name: "unknown driver",
			mutate: func(cfg *Config) {
				cfg.Storage.Driver = "redis"
			},
			wantErr: "unknown storage driver",
		},
		{
			name: "sqlite driver requires path",
			mutate: func(cfg *Config) {
				cfg.Storage.Driver = "sqlite"
			},
			wantErr: "storage.sqlite.path is required",
		},
		{
			name: "postgres driver requires host",
			mutate: func(cfg *Config) {
				cfg.Storage.Driver = "postgres"
			},
			wantErr: "storage.postgres.host is required",
		},
		{
			name: "auth enabled without users",
			mutate: func(cfg *Config) {
				cfg.Server.Auth.Enabled = true
			},
			wantErr: "at least one auth user",
		},
		{
			name: "duplicate auth username",
			mutate: func(cfg *Config) {
				cfg.Server.Auth.Enabled = true
				cfg.Server.Auth.Users = []BasicAuthUser{
					{Username: "ops", PasswordHash: "x"},
					{Username: "ops", PasswordHash: "y"},
				}
			},
			wantErr: "duplicate username",
		},
		{
			name: "upload enabled requires bucket",
			mutate: func(cfg *Config) {
				cfg.Upload = &S3UploadConfig{Enabled: true}
			},
			wantErr: "upload.bucket is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
