package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/aggregate"
	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
	"redbull-counter-backend/internal/session"
)

type SessionHandler struct {
	Lifecycle *session.Lifecycle
	Logger    *zap.Logger
}

func NewSessionHandler(lc *session.Lifecycle, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Lifecycle: lc, Logger: logger}
}

// CounterView is one flavor row of the counter screen.
type CounterView struct {
	Flavor              catalog.Flavor `json:"flavor"`
	Cash                int            `json:"cash"`
	Digital             int            `json:"digital"`
	Remaining           int            `json:"remaining"`
	CanIncrement        bool           `json:"can_increment"`
	CanDecrementCash    bool           `json:"can_decrement_cash"`
	CanDecrementDigital bool           `json:"can_decrement_digital"`
}

type SessionResponse struct {
	Phase        session.Phase    `json:"phase"`
	Session      *session.Session `json:"session,omitempty"`
	Counters     []CounterView    `json:"counters,omitempty"`
	TotalCash    int              `json:"total_cash"`
	TotalDigital int              `json:"total_digital"`
}

func newSessionResponse(sess session.Session, phase session.Phase) SessionResponse {
	resp := SessionResponse{
		Phase:        phase,
		Session:      &sess,
		TotalCash:    aggregate.TotalByChannel(sess.Sales, ledger.Cash),
		TotalDigital: aggregate.TotalByChannel(sess.Sales, ledger.Digital),
	}
	for _, f := range catalog.Flavors() {
		tally := sess.Sales[f.ID]
		remaining := ledger.RemainingStock(sess.Sales, sess.Stock, f.ID)
		resp.Counters = append(resp.Counters, CounterView{
			Flavor:              f,
			Cash:                tally.Cash,
			Digital:             tally.Digital,
			Remaining:           remaining,
			CanIncrement:        phase == session.PhaseActive && remaining > 0,
			CanDecrementCash:    phase == session.PhaseActive && tally.Cash > 0,
			CanDecrementDigital: phase == session.PhaseActive && tally.Digital > 0,
		})
	}
	return resp
}

func (h *SessionHandler) current(c *fiber.Ctx) error {
	sess, phase, ok := h.Lifecycle.Snapshot()
	if !ok {
		return c.JSON(SessionResponse{Phase: phase})
	}
	return c.JSON(newSessionResponse(sess, phase))
}

// GetSession returns the phase and, outside Setup, the counter state.
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	return h.current(c)
}

// Setup handles the stock setup form and starts the session
func (h *SessionHandler) Setup(c *fiber.Ctx) error {
	var req session.Submission
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if _, err := h.Lifecycle.Setup(c.UserContext(), req); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	c.Status(fiber.StatusCreated)
	return h.current(c)
}

type AdjustRequest struct {
	Flavor  string `json:"flavor"`
	Channel string `json:"channel"`
	// Delta defaults to +1 when omitted.
	Delta *int `json:"delta"`
}

// Adjust records a sale (positive delta) or takes one back (negative delta)
func (h *SessionHandler) Adjust(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	flavor, err := catalog.ParseFlavorID(req.Flavor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	channel, err := ledger.ParseChannel(req.Channel)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	delta := 1
	if req.Delta != nil {
		delta = *req.Delta
	}

	sess, err := h.Lifecycle.Adjust(c.UserContext(), flavor, channel, delta)
	if code := rejectionCode(err); code != "" {
		_, phase, _ := h.Lifecycle.Snapshot()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    err.Error(),
			"rejected": code,
			"state":    newSessionResponse(sess, phase),
		})
	}
	if err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}

type PaymentAssetRequest struct {
	PaymentAsset string `json:"payment_asset"`
}

// ReplacePaymentAsset handles "Change QR Code"
func (h *SessionHandler) ReplacePaymentAsset(c *fiber.Ctx) error {
	var req PaymentAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if _, err := h.Lifecycle.ReplacePaymentAsset(c.UserContext(), req.PaymentAsset); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}

func (h *SessionHandler) ClearPaymentAsset(c *fiber.Ctx) error {
	if _, err := h.Lifecycle.ClearPaymentAsset(c.UserContext()); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}

// EndSales moves to the summary
func (h *SessionHandler) EndSales(c *fiber.Ctx) error {
	if err := h.Lifecycle.EndSales(); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}

// Resume goes back to the counter from the summary
func (h *SessionHandler) Resume(c *fiber.Ctx) error {
	if err := h.Lifecycle.BackToCounter(); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}

const resetNotConfirmed = "Starting new sales erases the current session, repeat with confirm=true"

// Reset handles "New Sales". It requires ?confirm=true.
func (h *SessionHandler) Reset(c *fiber.Ctx) error {
	if !c.QueryBool("confirm") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": resetNotConfirmed})
	}
	if err := h.Lifecycle.Reset(c.UserContext()); err != nil {
		return respondError(c, h.Logger, h.Lifecycle, err)
	}
	return h.current(c)
}
