// Package export renders read-only views of an end-of-session summary.
package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"redbull-counter-backend/internal/aggregate"
)

// Labels are the channel names printed in exports.
type Labels struct {
	Cash    string
	Digital string
}

func DefaultLabels() Labels {
	return Labels{Cash: "Cash", Digital: "GPay"}
}

// Percent formats a channel share with one decimal, e.g. 0.375 -> "37.5%".
func Percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// ShareText is the plain-text summary sent through share sheets or the clipboard.
func ShareText(s aggregate.Summary, labels Labels) string {
	var b strings.Builder
	b.WriteString("RED BULL SALES SUMMARY\n\n")

	for _, line := range s.Lines {
		fmt.Fprintf(&b, "%s:\n", line.Flavor.DisplayName)
		fmt.Fprintf(&b, "Starting: %d\n", line.Starting)
		fmt.Fprintf(&b, "Sold: %d (%s: %d, %s: %d)\n", line.Sold, labels.Cash, line.Cash, labels.Digital, line.Digital)
		fmt.Fprintf(&b, "Remaining: %d\n\n", line.Remaining)
	}

	fmt.Fprintf(&b, "TOTAL SALES: %d\n", s.TotalSold)
	fmt.Fprintf(&b, "%s: %d\n", strings.ToUpper(labels.Cash), s.TotalCash)
	fmt.Fprintf(&b, "%s: %d\n", strings.ToUpper(labels.Digital), s.TotalDigital)
	fmt.Fprintf(&b, "REMAINING: %d", s.TotalRemaining)
	return b.String()
}

// Receipt is the data bound to the printable receipt template.
type Receipt struct {
	Title        string
	Date         string
	Time         string
	Summary      aggregate.Summary
	Labels       Labels
	CashShare    string
	DigitalShare string
	PaymentAsset template.URL
}

// NewReceipt stamps the summary with the time it was printed.
func NewReceipt(s aggregate.Summary, labels Labels, paymentAsset string, at time.Time) Receipt {
	return Receipt{
		Title:        "RED BULL SALES RECEIPT",
		Date:         at.Format("2006-01-02"),
		Time:         at.Format("15:04:05"),
		Summary:      s,
		Labels:       labels,
		CashShare:    Percent(s.CashShare),
		DigitalShare: Percent(s.DigitalShare),
		PaymentAsset: assetURL(paymentAsset),
	}
}

// assetURL lets image data URIs and web links through to the img tag and
// drops anything else.
func assetURL(ref string) template.URL {
	for _, prefix := range []string{"data:image/", "https://", "http://"} {
		if strings.HasPrefix(ref, prefix) {
			return template.URL(ref)
		}
	}
	return ""
}
