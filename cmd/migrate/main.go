package main

import (
	"log"

	"go.uber.org/zap"

	"redbull-counter-backend/internal/config"
	"redbull-counter-backend/internal/database"
	"redbull-counter-backend/internal/logging"
)

func main() {
	// 1. Load env
	if !config.LoadDotEnv() {
		log.Println("Warning: .env file not found, using system environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DBDriver == config.DriverMemory {
		log.Fatal("nothing to migrate for the memory driver")
	}

	zlog, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Connect Database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// 3. Run migrations
	if err := database.Migrate(db, zlog); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
}
