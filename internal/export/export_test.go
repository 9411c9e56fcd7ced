package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redbull-counter-backend/internal/aggregate"
	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
)

func summary(t *testing.T) aggregate.Summary {
	t.Helper()
	stock := ledger.StockLevel{catalog.Normal: 10, catalog.SugarFree: 5, catalog.Watermelon: 0, catalog.Tropical: 0, catalog.Curuba: 3}
	sales, err := ledger.Initialize(stock)
	require.NoError(t, err)
	sales, err = ledger.Adjust(sales, stock, catalog.Normal, ledger.Cash, 3)
	require.NoError(t, err)
	sales, err = ledger.Adjust(sales, stock, catalog.Normal, ledger.Digital, 5)
	require.NoError(t, err)
	return aggregate.Summarize(stock, sales)
}

func TestShareText(t *testing.T) {
	text := ShareText(summary(t), DefaultLabels())

	assert.True(t, strings.HasPrefix(text, "RED BULL SALES SUMMARY\n\nED:\nStarting: 10\nSold: 8 (Cash: 3, GPay: 5)\nRemaining: 2\n\n"))
	assert.Contains(t, text, "GREEN:\nStarting: 3\nSold: 0 (Cash: 0, GPay: 0)\nRemaining: 3\n\n")
	assert.True(t, strings.HasSuffix(text, "TOTAL SALES: 8\nCASH: 3\nGPAY: 5\nREMAINING: 10"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "37.5%", Percent(0.375))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "100.0%", Percent(1))
}

func TestNewReceipt(t *testing.T) {
	at := time.Date(2026, 10, 18, 21, 5, 9, 0, time.UTC)
	r := NewReceipt(summary(t), Labels{Cash: "Cash", Digital: "UPI"}, "qr", at)

	assert.Equal(t, "2026-10-18", r.Date)
	assert.Equal(t, "21:05:09", r.Time)
	assert.Equal(t, "37.5%", r.CashShare)
	assert.Equal(t, "62.5%", r.DigitalShare)
	assert.Equal(t, "UPI", r.Labels.Digital)
	assert.Empty(t, r.PaymentAsset)
}

func TestNewReceipt_PaymentAsset(t *testing.T) {
	at := time.Now()
	s := summary(t)

	assert.EqualValues(t, "data:image/png;base64,AAAA", NewReceipt(s, DefaultLabels(), "data:image/png;base64,AAAA", at).PaymentAsset)
	assert.EqualValues(t, "https://example.com/qr.png", NewReceipt(s, DefaultLabels(), "https://example.com/qr.png", at).PaymentAsset)
	assert.Empty(t, NewReceipt(s, DefaultLabels(), "javascript:alert(1)", at).PaymentAsset)
}
