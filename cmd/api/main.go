package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/config"
	"redbull-counter-backend/internal/database"
	"redbull-counter-backend/internal/export"
	"redbull-counter-backend/internal/handlers"
	"redbull-counter-backend/internal/kv"
	"redbull-counter-backend/internal/ledger"
	"redbull-counter-backend/internal/logging"
	"redbull-counter-backend/internal/session"
)

func main() {
	// 1. Load .env first
	foundEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()
	if !foundEnv {
		zlog.Warn(".env file not found, using system environment")
	}
	ledger.SetLogger(zlog.Named("ledger"))

	// 2. Session storage
	var backend kv.Store
	if cfg.DBDriver == config.DriverMemory {
		zlog.Warn("using in-memory session storage, sales will not survive a restart")
		backend = kv.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.Migrate(db, zlog); err != nil {
			zlog.Fatal("schema migration failed", zap.Error(err))
		}
		backend = kv.NewGormStore(db)
	}

	// 3. Restore the last committed session
	lifecycle := session.NewLifecycle(
		session.NewStore(backend, cfg.StoreKeyPrefix),
		zlog.Named("session"),
		session.Options{SaveRetries: cfg.SaveRetries},
	)
	if err := lifecycle.Restore(context.Background()); err != nil {
		zlog.Fatal("failed to restore session", zap.Error(err))
	}

	// 4. Template engine for the printable receipt
	engine := html.New(cfg.ViewsDir, ".html")
	engine.Reload(cfg.Development())

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	labels := export.DefaultLabels()
	if cfg.DigitalLabel != "" {
		labels.Digital = cfg.DigitalLabel
	}

	handlers.Register(app, handlers.Deps{
		Lifecycle: lifecycle,
		Labels:    labels,
		Logger:    zlog.Named("http"),
		PINHash:   cfg.OperatorPINHash,
		Secret:    []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
	})

	zlog.Info("server listening", zap.String("port", cfg.Port), zap.String("phase", string(lifecycle.Phase())))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
