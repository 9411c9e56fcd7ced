package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"redbull-counter-backend/internal/config"
	"redbull-counter-backend/internal/models"
)

// Connect opens the database selected by cfg.DBDriver. Only postgres and
// sqlite are backed by gorm; the memory driver never reaches this function.
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	level := logger.Warn
	if cfg.Development() {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}

	log.Info("database connection successful", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// Migrate creates or updates the session storage table.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running schema migrations")
	if err := db.AutoMigrate(&models.SessionEntry{}); err != nil {
		return fmt.Errorf("schema migration: %w", err)
	}
	log.Info("schema migrations completed")
	return nil
}
