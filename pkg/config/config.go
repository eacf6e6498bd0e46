package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultStorageDriver is the default slot storage driver.
	DefaultStorageDriver = "file"

	// DefaultStoragePath is the default path of the file-backed slot.
	DefaultStoragePath = "./pt-dashboard.json"

	// DefaultSlotKey is the well-known key the test collection is stored
	// under by the database drivers.
	DefaultSlotKey = "performance-tests"

	// DefaultExportDir is the default directory for export snapshots.
	DefaultExportDir = "."

	// DefaultListen is the default HTTP server listen address.
	DefaultListen = ":8080"
)

// Config is the root configuration for ptdash.
type Config struct {
	Global  GlobalConfig    `yaml:"global"`
	Storage StorageConfig   `yaml:"storage"`
	Export  ExportConfig    `yaml:"export"`
	Server  ServerConfig    `yaml:"server"`
	Upload  *S3UploadConfig `yaml:"upload,omitempty"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// StorageConfig selects and configures the slot storage backend.
type StorageConfig struct {
	// Driver is one of "file", "memory", "sqlite", "postgres".
	Driver string `yaml:"driver"`

	// Path is the slot file location for the "file" driver.
	Path string `yaml:"path,omitempty"`

	// Key is the slot name used by the database drivers.
	Key string `yaml:"key,omitempty"`

	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// SQLiteConfig contains SQLite slot database settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains PostgreSQL slot database settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ExportConfig contains export snapshot settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen      string          `yaml:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty"`
	Auth        AuthConfig      `yaml:"auth,omitempty"`
}

// RateLimitConfig contains per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// AuthConfig protects mutating endpoints with basic auth when enabled.
type AuthConfig struct {
	Enabled bool            `yaml:"enabled"`
	Users   []BasicAuthUser `yaml:"users,omitempty"`
}

// BasicAuthUser is a username plus a bcrypt password hash.
type BasicAuthUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// S3UploadConfig contains S3 settings for export snapshot upload.
type S3UploadConfig struct {
	Enabled         bool   `yaml:"enabled"`
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()

	return cfg
}

// ApplyDefaults sets default values for unspecified configuration options.
func (c *Config) ApplyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}

	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath
	}

	if c.Storage.Key == "" {
		c.Storage.Key = DefaultSlotKey
	}

	if c.Storage.Postgres.SSLMode == "" {
		c.Storage.Postgres.SSLMode = "disable"
	}

	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMinute == 0 {
		c.Server.RateLimit.RequestsPerMinute = 120
	}
}

// validDrivers is the list of supported slot storage drivers.
var validDrivers = map[string]struct{}{
	"file":     {},
	"memory":   {},
	"sqlite":   {},
	"postgres": {},
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, ok := validDrivers[c.Storage.Driver]; !ok {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Storage.Driver {
	case "file":
		dir := filepath.Dir(c.Storage.Path)
		if dir != "." && dir != ".." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("storage path parent %q does not exist", dir)
			}
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.Host == "" {
			return fmt.Errorf("storage.postgres.host is required for the postgres driver")
		}

		if c.Storage.Postgres.Database == "" {
			return fmt.Errorf("storage.postgres.database is required for the postgres driver")
		}
	}

	if c.Server.Auth.Enabled && len(c.Server.Auth.Users) == 0 {
		return fmt.Errorf("at least one auth user must be configured when auth is enabled")
	}

	seenUsers := make(map[string]struct{}, len(c.Server.Auth.Users))

	for i, u := range c.Server.Auth.Users {
		if u.Username == "" {
			return fmt.Errorf("auth user %d: username is required", i)
		}

		if _, exists := seenUsers[u.Username]; exists {
			return fmt.Errorf("auth user %d: duplicate username %q", i, u.Username)
		}

		seenUsers[u.Username] = struct{}{}

		if u.PasswordHash == "" {
			return fmt.Errorf("auth user %q: password_hash is required", u.Username)
		}
	}

	if c.Upload != nil && c.Upload.Enabled && c.Upload.Bucket == "" {
		return fmt.Errorf("upload.bucket is required when upload is enabled")
	}

	return nil
}
