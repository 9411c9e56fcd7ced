// Package ledger records units sold per flavor and payment channel and keeps
// the sold counts within the starting stock.
package ledger

import (
	"fmt"

	"go.uber.org/zap"

	"redbull-counter-backend/internal/catalog"
)

var logger = zap.NewNop()

// SetLogger replaces the package logger used for data-corruption warnings.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Channel is the payment method a sale was settled with.
type Channel string

const (
	Cash    Channel = "cash"
	Digital Channel = "digital"
)

// Channels lists the payment channels in display order.
func Channels() []Channel {
	return []Channel{Cash, Digital}
}

func ParseChannel(raw string) (Channel, error) {
	switch Channel(raw) {
	case Cash, Digital:
		return Channel(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, raw)
}

func (c Channel) other() Channel {
	if c == Cash {
		return Digital
	}
	return Cash
}

// StockLevel is the starting quantity per flavor.
type StockLevel map[catalog.FlavorID]int

func (s StockLevel) Clone() StockLevel {
	if s == nil {
		return nil
	}
	out := make(StockLevel, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Total is the sum of all starting quantities.
func (s StockLevel) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Tally is the sold count of one flavor split by channel.
type Tally struct {
	Cash    int `json:"cash"`
	Digital int `json:"digital"`
}

func (t Tally) Sold() int {
	return t.Cash + t.Digital
}

func (t Tally) Get(c Channel) int {
	if c == Cash {
		return t.Cash
	}
	return t.Digital
}

func (t Tally) with(c Channel, v int) Tally {
	if c == Cash {
		t.Cash = v
	} else {
		t.Digital = v
	}
	return t
}

// SaleCount is the sold tally per flavor.
type SaleCount map[catalog.FlavorID]Tally

func (s SaleCount) Clone() SaleCount {
	if s == nil {
		return nil
	}
	out := make(SaleCount, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// MaxStockQuantity bounds a single flavor's starting stock so totals never overflow.
const MaxStockQuantity = 1_000_000

// ValidateStock checks that stock covers exactly the catalog with quantities
// in [0, MaxStockQuantity].
func ValidateStock(stock StockLevel) error {
	for id, qty := range stock {
		if !catalog.Valid(id) {
			return fmt.Errorf("%w: %q", ErrUnknownFlavor, id)
		}
		if qty < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeStock, id, qty)
		}
		if qty > MaxStockQuantity {
			return fmt.Errorf("%w: %s=%d", ErrStockTooLarge, id, qty)
		}
	}
	for _, id := range catalog.IDs() {
		if _, ok := stock[id]; !ok {
			return fmt.Errorf("%w: missing %s", ErrIncompleteStock, id)
		}
	}
	return nil
}

// Initialize returns a zero-filled SaleCount for every flavor in stock.
func Initialize(stock StockLevel) (SaleCount, error) {
	if err := ValidateStock(stock); err != nil {
		return nil, err
	}
	sales := make(SaleCount, len(stock))
	for id := range stock {
		sales[id] = Tally{}
	}
	return sales, nil
}

// Adjust applies delta to one channel of one flavor. On rejection the input
// ledger is returned as-is together with the reason; on success a new
// SaleCount is returned and the input is left unmodified.
func Adjust(sales SaleCount, stock StockLevel, flavor catalog.FlavorID, channel Channel, delta int) (SaleCount, error) {
	if channel != Cash && channel != Digital {
		return sales, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	tally, ok := sales[flavor]
	if !ok {
		return sales, fmt.Errorf("%w: %q", ErrUnknownFlavor, flavor)
	}
	limit, ok := stock[flavor]
	if !ok {
		return sales, fmt.Errorf("%w: %q", ErrUnknownFlavor, flavor)
	}

	current, other := tally.Get(channel), tally.Get(channel.other())
	if delta < 0 {
		if delta < -current {
			return sales, ErrNegativeSale
		}
	} else if room := limit - current; other > room || delta > room-other {
		return sales, ErrStockExceeded
	}

	next := sales.Clone()
	next[flavor] = tally.with(channel, current+delta)
	return next, nil
}

// CanAdjust reports whether Adjust would accept the change.
func CanAdjust(sales SaleCount, stock StockLevel, flavor catalog.FlavorID, channel Channel, delta int) bool {
	_, err := Adjust(sales, stock, flavor, channel, delta)
	return err == nil
}

// RemainingStock is the unsold quantity of flavor, never below zero.
func RemainingStock(sales SaleCount, stock StockLevel, flavor catalog.FlavorID) int {
	remaining := stock[flavor] - sales[flavor].Sold()
	if remaining < 0 {
		logger.Warn("sold count exceeds starting stock",
			zap.String("flavor", string(flavor)),
			zap.Int("stock", stock[flavor]),
			zap.Int("sold", sales[flavor].Sold()))
		return 0
	}
	return remaining
}

// Validate checks a stock/sales pair restored from storage against the ledger invariants.
func Validate(stock StockLevel, sales SaleCount) error {
	if err := ValidateStock(stock); err != nil {
		return err
	}
	if len(sales) != len(stock) {
		return fmt.Errorf("%w: got %d entries, want %d", ErrIncompleteSales, len(sales), len(stock))
	}
	for id, tally := range sales {
		limit, ok := stock[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFlavor, id)
		}
		if tally.Cash < 0 || tally.Digital < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeSale, id)
		}
		if tally.Cash > limit || tally.Digital > limit-tally.Cash {
			return fmt.Errorf("%w: %s sold %d cash and %d digital of %d", ErrStockExceeded, id, tally.Cash, tally.Digital, limit)
		}
	}
	return nil
}
