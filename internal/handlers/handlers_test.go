package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redbull-counter-backend/internal/export"
	"redbull-counter-backend/internal/kv"
	"redbull-counter-backend/internal/middleware"
	"redbull-counter-backend/internal/session"
)

type failingStore struct {
	*kv.MemoryStore
	fail bool
}

func (f *failingStore) Commit(ctx context.Context, change kv.Change) error {
	if f.fail {
		return errors.New("database is locked")
	}
	return f.MemoryStore.Commit(ctx, change)
}

func newTestApp(t *testing.T, backend kv.Store, deps Deps) *fiber.App {
	t.Helper()
	lc := session.NewLifecycle(session.NewStore(backend, "redbull"), zap.NewNop(), session.Options{})
	require.NoError(t, lc.Restore(context.Background()))

	deps.Lifecycle = lc
	deps.Logger = zap.NewNop()
	if deps.Labels == (export.Labels{}) {
		deps.Labels = export.DefaultLabels()
	}

	app := fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
	Register(app, deps)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func setupBody(normal int) fiber.Map {
	return fiber.Map{
		"stock": fiber.Map{
			"normal": normal, "sugarfree": 5, "watermelon": 0, "tropical": 2, "curuba": 1,
		},
		"payment_asset": "data:image/png;base64,AAAA",
	}
}

func TestSession_SetupFlow(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), Deps{})

	status, data := do(t, app, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, session.PhaseSetup, decode[SessionResponse](t, data).Phase)

	status, _ = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash"})
	assert.Equal(t, http.StatusConflict, status)

	status, data = do(t, app, http.MethodPost, "/api/v1/session/setup", fiber.Map{
		"stock": fiber.Map{"normal": 3, "sugarfree": -1},
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, data).Fields
	assert.Contains(t, fields, "sugarfree")
	assert.Contains(t, fields, "curuba")
	assert.Contains(t, fields, "payment_asset")

	status, data = do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(2))
	require.Equal(t, http.StatusCreated, status)
	resp := decode[SessionResponse](t, data)
	assert.Equal(t, session.PhaseActive, resp.Phase)
	require.Len(t, resp.Counters, 5)
	assert.Equal(t, 2, resp.Counters[0].Remaining)
	assert.True(t, resp.Counters[0].CanIncrement)
	assert.False(t, resp.Counters[0].CanDecrementCash)
	assert.False(t, resp.Counters[2].CanIncrement)

	status, _ = do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(2))
	assert.Equal(t, http.StatusConflict, status)
}

func TestSession_AdjustAndReject(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), Deps{})
	status, _ := do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(2))
	require.Equal(t, http.StatusCreated, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash"})
	require.Equal(t, http.StatusOK, status)
	status, data := do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "digital", "delta": 1})
	require.Equal(t, http.StatusOK, status)
	resp := decode[SessionResponse](t, data)
	assert.Equal(t, 1, resp.TotalCash)
	assert.Equal(t, 1, resp.TotalDigital)
	assert.Equal(t, 0, resp.Counters[0].Remaining)

	status, data = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash"})
	require.Equal(t, http.StatusConflict, status)
	rejected := decode[struct {
		Rejected string          `json:"rejected"`
		State    SessionResponse `json:"state"`
	}](t, data)
	assert.Equal(t, "stock_exceeded", rejected.Rejected)
	assert.Equal(t, 1, rejected.State.Counters[0].Cash)

	status, data = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "sugarfree", "channel": "cash", "delta": -1})
	require.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(data), "negative_sale")

	status, data = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "sugarfree", "channel": "digital", "delta": math.MaxInt})
	require.Equal(t, http.StatusConflict, status)
	rejected = decode[struct {
		Rejected string          `json:"rejected"`
		State    SessionResponse `json:"state"`
	}](t, data)
	assert.Equal(t, "stock_exceeded", rejected.Rejected)
	assert.Equal(t, 0, rejected.State.Counters[1].Digital)
	assert.Equal(t, 5, rejected.State.Counters[1].Remaining)

	status, _ = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "cola", "channel": "cash"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "card"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSession_SetupRejectsOversizedStock(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), Deps{})

	status, data := do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(math.MaxInt/2))
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(data), `"normal"`)

	status, data = do(t, app, http.MethodGet, "/api/v1/summary", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(data), `"phase":"setup"`)
}

func TestSession_SummaryAndReset(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), Deps{})
	do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(10))
	do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash", "delta": 3})
	do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "tropical", "channel": "digital"})

	status, data := do(t, app, http.MethodPost, "/api/v1/session/end", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, session.PhaseSummary, decode[SessionResponse](t, data).Phase)

	status, data = do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(data), `"phase":"summary"`)

	status, data = do(t, app, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, status)
	summary := decode[SummaryResponse](t, data)
	assert.Equal(t, 4, summary.Summary.TotalSold)
	assert.Equal(t, 14, summary.Summary.TotalRemaining)
	assert.Equal(t, "75.0%", summary.CashShare)
	assert.Equal(t, "25.0%", summary.DigitalShare)

	status, data = do(t, app, http.MethodGet, "/api/v1/summary/share", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasSuffix(string(data), "TOTAL SALES: 4\nCASH: 3\nGPAY: 1\nREMAINING: 14"))

	status, data = do(t, app, http.MethodGet, "/api/v1/summary/receipt", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), "RED BULL SALES RECEIPT")
	assert.Contains(t, string(data), "data:image/png;base64,AAAA")

	status, _ = do(t, app, http.MethodPost, "/api/v1/session/resume", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodDelete, "/api/v1/session", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = do(t, app, http.MethodDelete, "/api/v1/session?confirm=true", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, session.PhaseSetup, decode[SessionResponse](t, data).Phase)

	status, _ = do(t, app, http.MethodGet, "/api/v1/summary", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestSession_PaymentAsset(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), Deps{})
	do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(1))

	status, _ := do(t, app, http.MethodPut, "/api/v1/session/payment-asset", fiber.Map{"payment_asset": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, data := do(t, app, http.MethodPut, "/api/v1/session/payment-asset", fiber.Map{"payment_asset": "data:image/png;base64,BBBB"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "data:image/png;base64,BBBB", decode[SessionResponse](t, data).Session.PaymentAsset)

	status, data = do(t, app, http.MethodDelete, "/api/v1/session/payment-asset", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[SessionResponse](t, data).Session.PaymentAsset)
}

func TestSession_WriteFailureSurfaced(t *testing.T) {
	backend := &failingStore{MemoryStore: kv.NewMemoryStore()}
	app := newTestApp(t, backend, Deps{})
	do(t, app, http.MethodPost, "/api/v1/session/setup", setupBody(4))

	backend.fail = true
	status, data := do(t, app, http.MethodPost, "/api/v1/session/sales", fiber.Map{"flavor": "normal", "channel": "cash"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(data), `"retry":true`)

	backend.fail = false
	status, data = do(t, app, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[SessionResponse](t, data).TotalCash)
}

func TestAuth_OperatorPIN(t *testing.T) {
	hash, err := middleware.HashPIN("4821")
	require.NoError(t, err)
	app := newTestApp(t, kv.NewMemoryStore(), Deps{
		PINHash:  hash,
		Secret:   []byte("secret"),
		TokenTTL: time.Hour,
	})

	status, _ := do(t, app, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"pin": "1111"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, data := do(t, app, http.MethodPost, "/api/v1/login", fiber.Map{"pin": "4821"})
	require.Equal(t, http.StatusOK, status)
	token := decode[struct {
		Token string `json:"token"`
	}](t, data).Token
	require.NotEmpty(t, token)

	status, _ = do(t, app, http.MethodGet, "/api/v1/catalog", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
}
