package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/middleware"
)

type AuthHandler struct {
	PINHash  string
	Secret   []byte
	TokenTTL time.Duration
	Logger   *zap.Logger
}

func NewAuthHandler(pinHash string, secret []byte, ttl time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{PINHash: pinHash, Secret: secret, TokenTTL: ttl, Logger: logger}
}

type LoginRequest struct {
	PIN string `json:"pin"`
}

// Login exchanges the operator PIN for a token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := middleware.CheckPIN(req.PIN, h.PINHash); err != nil {
		h.Logger.Warn("operator login failed", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid PIN",
		})
	}

	token, expiresAt, err := middleware.GenerateJWT(h.Secret, h.TokenTTL)
	if err != nil {
		h.Logger.Error("error generating JWT", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error generating authentication token",
		})
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
	})
}
