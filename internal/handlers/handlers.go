package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
	"redbull-counter-backend/internal/session"
)

// Health reports that the API is up.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "Running", "message": "API Ready"})
}

// GetCatalog returns the flavors in display order.
func GetCatalog(c *fiber.Ctx) error {
	return c.JSON(catalog.Flavors())
}

// rejectionCode names a ledger rejection for clients that disable controls.
func rejectionCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrStockExceeded):
		return "stock_exceeded"
	case errors.Is(err, ledger.ErrNegativeSale):
		return "negative_sale"
	case errors.Is(err, ledger.ErrUnknownFlavor):
		return "unknown_flavor"
	case errors.Is(err, ledger.ErrUnknownChannel):
		return "unknown_channel"
	}
	return ""
}

// requestID tags a log line with the id set by the requestid middleware.
func requestID(c *fiber.Ctx) zap.Field {
	id, _ := c.Locals("requestid").(string)
	return zap.String("request_id", id)
}

// respondError maps lifecycle errors onto HTTP responses.
func respondError(c *fiber.Ctx, log *zap.Logger, lc *session.Lifecycle, err error) error {
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, session.ErrNoSession):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "No active sales session, complete stock setup first",
			"phase": session.PhaseSetup,
		})
	case errors.Is(err, session.ErrReadOnly), errors.Is(err, session.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"phase": lc.Phase(),
		})
	case errors.Is(err, session.ErrPersistenceWrite):
		log.Error("session write failed", requestID(c), zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Failed to save sales session, please retry",
			"retry": true,
		})
	}

	log.Error("unexpected session error", requestID(c), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
