package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/export"
	"redbull-counter-backend/internal/middleware"
	"redbull-counter-backend/internal/session"
)

// Deps is what the API routes need.
type Deps struct {
	Lifecycle *session.Lifecycle
	Labels    export.Labels
	Logger    *zap.Logger

	// Operator PIN login; leave PINHash empty to run without auth.
	PINHash  string
	Secret   []byte
	TokenTTL time.Duration
}

// Register mounts the API under /api/v1.
func Register(app *fiber.App, deps Deps) {
	sessionHandler := NewSessionHandler(deps.Lifecycle, deps.Logger)
	summaryHandler := NewSummaryHandler(deps.Lifecycle, deps.Labels, deps.Logger)

	api := app.Group("/api/v1")

	// === PUBLIC ROUTES ===
	api.Get("/health", Health)

	// === PROTECTED ROUTES (JWT) ===
	if deps.PINHash != "" {
		authHandler := NewAuthHandler(deps.PINHash, deps.Secret, deps.TokenTTL, deps.Logger)
		api.Post("/login", authHandler.Login)
		api.Use(middleware.JWTProtected(deps.Secret))
	} else {
		deps.Logger.Warn("OPERATOR_PIN_HASH not set, API is unprotected")
	}

	api.Get("/catalog", GetCatalog)

	// Session Routes
	sessions := api.Group("/session")
	sessions.Get("", sessionHandler.GetSession)
	sessions.Delete("", sessionHandler.Reset)
	sessions.Post("/setup", sessionHandler.Setup)
	sessions.Post("/sales", sessionHandler.Adjust)
	sessions.Put("/payment-asset", sessionHandler.ReplacePaymentAsset)
	sessions.Delete("/payment-asset", sessionHandler.ClearPaymentAsset)
	sessions.Post("/end", sessionHandler.EndSales)
	sessions.Post("/resume", sessionHandler.Resume)

	// Summary Routes
	summary := api.Group("/summary")
	summary.Get("", summaryHandler.GetSummary)
	summary.Get("/share", summaryHandler.ShareText)
	summary.Get("/receipt", summaryHandler.Receipt)
}
