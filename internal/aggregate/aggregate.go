// Package aggregate derives read-only totals from a stock level and its sales.
// Nothing in here mutates its inputs.
package aggregate

import (
	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/ledger"
)

// TotalSold is the number of units sold over all flavors and channels.
func TotalSold(sales ledger.SaleCount) int {
	total := 0
	for _, t := range sales {
		total += t.Sold()
	}
	return total
}

func TotalByChannel(sales ledger.SaleCount, channel ledger.Channel) int {
	total := 0
	for _, t := range sales {
		total += t.Get(channel)
	}
	return total
}

func FlavorSold(sales ledger.SaleCount, flavor catalog.FlavorID) int {
	return sales[flavor].Sold()
}

func TotalRemaining(stock ledger.StockLevel, sales ledger.SaleCount) int {
	total := 0
	for id := range stock {
		total += ledger.RemainingStock(sales, stock, id)
	}
	return total
}

// ChannelShare is the fraction of sold units settled through channel.
// Zero before the first sale.
func ChannelShare(sales ledger.SaleCount, channel ledger.Channel) float64 {
	sold := TotalSold(sales)
	if sold == 0 {
		return 0
	}
	return float64(TotalByChannel(sales, channel)) / float64(sold)
}

// Line is the breakdown of a single flavor.
type Line struct {
	Flavor    catalog.Flavor `json:"flavor"`
	Starting  int            `json:"starting"`
	Cash      int            `json:"cash"`
	Digital   int            `json:"digital"`
	Sold      int            `json:"sold"`
	Remaining int            `json:"remaining"`
}

// Summary is the end-of-session view handed to exports.
type Summary struct {
	Lines          []Line  `json:"lines"`
	TotalStock     int     `json:"total_stock"`
	TotalSold      int     `json:"total_sold"`
	TotalCash      int     `json:"total_cash"`
	TotalDigital   int     `json:"total_digital"`
	TotalRemaining int     `json:"total_remaining"`
	CashShare      float64 `json:"cash_share"`
	DigitalShare   float64 `json:"digital_share"`
}

// Summarize builds the per-flavor breakdown in catalog order plus totals.
func Summarize(stock ledger.StockLevel, sales ledger.SaleCount) Summary {
	lines := make([]Line, 0, catalog.Size())
	for _, f := range catalog.Flavors() {
		t := sales[f.ID]
		lines = append(lines, Line{
			Flavor:    f,
			Starting:  stock[f.ID],
			Cash:      t.Cash,
			Digital:   t.Digital,
			Sold:      t.Sold(),
			Remaining: ledger.RemainingStock(sales, stock, f.ID),
		})
	}
	return Summary{
		Lines:          lines,
		TotalStock:     stock.Total(),
		TotalSold:      TotalSold(sales),
		TotalCash:      TotalByChannel(sales, ledger.Cash),
		TotalDigital:   TotalByChannel(sales, ledger.Digital),
		TotalRemaining: TotalRemaining(stock, sales),
		CashShare:      ChannelShare(sales, ledger.Cash),
		DigitalShare:   ChannelShare(sales, ledger.Digital),
	}
}
