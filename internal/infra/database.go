package infra

import (
	"fmt"
	"time"

	"github.com/Zeek-James/pem-zee/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens a GORM connection backed by pgx, installs the tracing
// plugin and brings the schema up to date.
func NewDatabase(dsn string, slowQuery time.Duration) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(slowQuery),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		log.Warn().Err(err).Msg("db connected but failed to install otelgorm plugin")
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates all tables, then applies the constraints
// AutoMigrate cannot express. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Permission{},
		&model.Role{},
		&model.User{},
		&model.Harvest{},
		&model.Milling{},
		&model.Storage{},
		&model.Sale{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds CHECK constraints and partial indexes. Each block
// is guarded by an existence check so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"harvest quantities", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_harvests_quantities') THEN
    ALTER TABLE harvests ADD CONSTRAINT chk_harvests_quantities
      CHECK (num_bunches >= 0 AND weight_per_bunch > 0);
  END IF;
END $$`},
		{"milling amounts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_milling_amounts') THEN
    ALTER TABLE milling ADD CONSTRAINT chk_milling_amounts
      CHECK (milling_cost >= 0 AND oil_yield >= 0 AND transport_cost >= 0);
  END IF;
END $$`},
		{"storage quantity", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_storage_quantity') THEN
    ALTER TABLE storage ADD CONSTRAINT chk_storage_quantity CHECK (quantity >= 0);
  END IF;
END $$`},
		{"sale amounts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_amounts') THEN
    ALTER TABLE sales ADD CONSTRAINT chk_sales_amounts
      CHECK (quantity_sold > 0 AND price_per_kg > 0);
  END IF;
END $$`},
		{"unsold storage partial index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_storage_unsold') THEN
    CREATE INDEX idx_storage_unsold ON storage (id) WHERE is_sold = false;
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
