package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amithcabraal/pt-dashboard-28/pkg/config"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlotRecord is the single-row table a database-backed slot stores the
// serialized test collection in, keyed by slot name.
type SlotRecord struct {
	Key       string    `gorm:"primaryKey"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time
}

// Compile-time interface checks.
var (
	_ Slot      = (*dbSlot)(nil)
	_ Lifecycle = (*dbSlot)(nil)
)

type dbSlot struct {
	log logrus.FieldLogger
	cfg *config.StorageConfig
	db  *gorm.DB
}

// NewDBSlot creates a Slot backed by the configured database driver.
// Call Start before first use.
func NewDBSlot(
	log logrus.FieldLogger,
	cfg *config.StorageConfig,
) Slot {
	return &dbSlot{
		log: log.WithField("component", "dbslot"),
		cfg: cfg,
	}
}

// Start opens the database connection and runs migrations.
func (s *dbSlot) Start(ctx context.Context) error {
	var dialector gorm.Dialector

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening slot database: %w", err)
	}

	s.db = db

	if err := s.db.WithContext(ctx).AutoMigrate(&SlotRecord{}); err != nil {
		return fmt.Errorf("running slot migrations: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).Info("Slot database connected")

	return nil
}

// Stop closes the underlying database connection.
func (s *dbSlot) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// Read returns the stored slot value by key.
func (s *dbSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var rec SlotRecord
	if err := s.db.WithContext(ctx).
		Where("key = ?", s.cfg.Key).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("reading slot %q: %w", s.cfg.Key, err)
	}

	return rec.Value, true, nil
}

// Write replaces the stored slot value, creating the row if absent.
func (s *dbSlot) Write(ctx context.Context, data []byte) error {
	rec := &SlotRecord{Key: s.cfg.Key, Value: data}

	result := s.db.WithContext(ctx).
		Where("key = ?", s.cfg.Key).
		Assign(SlotRecord{Value: data}).
		FirstOrCreate(rec)
	if result.Error != nil {
		return fmt.Errorf("writing slot %q: %w", s.cfg.Key, result.Error)
	}

	return nil
}
