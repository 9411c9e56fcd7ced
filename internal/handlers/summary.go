package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/aggregate"
	"redbull-counter-backend/internal/export"
	"redbull-counter-backend/internal/session"
)

// SummaryHandler serves the read-only end-of-session views.
type SummaryHandler struct {
	Lifecycle *session.Lifecycle
	Labels    export.Labels
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewSummaryHandler(lc *session.Lifecycle, labels export.Labels, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{Lifecycle: lc, Labels: labels, Logger: logger, Now: time.Now}
}

type SummaryResponse struct {
	Phase        session.Phase     `json:"phase"`
	Summary      aggregate.Summary `json:"summary"`
	CashShare    string            `json:"cash_share_percent"`
	DigitalShare string            `json:"digital_share_percent"`
	Labels       map[string]string `json:"labels"`
}

func (h *SummaryHandler) snapshot() (session.Session, aggregate.Summary, error) {
	sess, _, ok := h.Lifecycle.Snapshot()
	if !ok {
		return session.Session{}, aggregate.Summary{}, session.ErrNoSession
	}
	return sess, aggregate.Summarize(sess.Stock, sess.Sales), nil
}

// GetSummary returns totals, remaining stock and channel shares
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	_, s, err := h.snapshot()
	if err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return c.JSON(SummaryResponse{
		Phase:        h.Lifecycle.Phase(),
		Summary:      s,
		CashShare:    export.Percent(s.CashShare),
		DigitalShare: export.Percent(s.DigitalShare),
		Labels:       map[string]string{"cash": h.Labels.Cash, "digital": h.Labels.Digital},
	})
}

// ShareText returns the plain-text summary for share sheets and the clipboard
func (h *SummaryHandler) ShareText(c *fiber.Ctx) error {
	_, s, err := h.snapshot()
	if err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(export.ShareText(s, h.Labels))
}

// Receipt renders the printable receipt page
func (h *SummaryHandler) Receipt(c *fiber.Ctx) error {
	sess, s, err := h.snapshot()
	if err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return c.Render("receipt", export.NewReceipt(s, h.Labels, sess.PaymentAsset, h.Now()))
}
