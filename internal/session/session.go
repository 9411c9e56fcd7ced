// Package session owns the sales session: its persisted form, and the
// Setup -> Active -> Summary lifecycle that mutates it.
package session

import (
	"fmt"
	"strings"

	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
)

// Phase is the lifecycle state of the program.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseActive  Phase = "active"
	PhaseSummary Phase = "summary"
)

// Session is the full state of one sales run.
type Session struct {
	Stock        ledger.StockLevel `json:"stock"`
	Sales        ledger.SaleCount  `json:"sales"`
	PaymentAsset string            `json:"payment_asset,omitempty"`
}

// Clone returns a deep copy safe to hand to readers.
func (s Session) Clone() Session {
	return Session{
		Stock:        s.Stock.Clone(),
		Sales:        s.Sales.Clone(),
		PaymentAsset: s.PaymentAsset,
	}
}

// Submission is the payload of the setup form. A nil quantity means the
// field was left empty.
type Submission struct {
	Stock        map[string]*int `json:"stock"`
	PaymentAsset string          `json:"payment_asset"`
}

const missingAsset = "please upload a payment QR code"

func blankAsset(asset string) bool {
	return strings.TrimSpace(asset) == ""
}

// Validate converts the submission into a StockLevel or reports every
// problem found.
func (s Submission) Validate() (ledger.StockLevel, error) {
	verr := &ValidationError{}
	stock := make(ledger.StockLevel, catalog.Size())

	for raw := range s.Stock {
		if !catalog.Valid(catalog.FlavorID(raw)) {
			verr.add(raw, "unknown flavor")
		}
	}
	for _, id := range catalog.IDs() {
		qty, ok := s.Stock[string(id)]
		switch {
		case !ok || qty == nil:
			verr.add(string(id), "please enter a valid quantity")
		case *qty < 0:
			verr.add(string(id), fmt.Sprintf("quantity cannot be negative, got %d", *qty))
		case *qty > ledger.MaxStockQuantity:
			verr.add(string(id), fmt.Sprintf("quantity cannot exceed %d, got %d", ledger.MaxStockQuantity, *qty))
		default:
			stock[id] = *qty
		}
	}
	if blankAsset(s.PaymentAsset) {
		verr.add("payment_asset", missingAsset)
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return stock, nil
}
