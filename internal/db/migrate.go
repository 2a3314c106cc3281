// Package db opens the database, migrates the schema and imports price
// catalogs into the catalog_rows table.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-quotes/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the given driver ("sqlite" or "postgres"). Postgres
// connections are retried a few times to let the server come up.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	attempts := 1
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(NormalizeDSN(dsn))
		attempts = 5
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var conn *gorm.DB
	var err error
	for i := 0; i < attempts; i++ {
		conn, err = gorm.Open(dialector, cfg)
		if err == nil {
			break
		}
		log.Warn("database connection failed", zap.Int("attempt", i+1), zap.Int("of", attempts), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return conn, nil
}

// Migrate applies the GORM auto-migrations.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.CatalogRow{}); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
