package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
)

// PriceNote describes the freshness of the price snapshot, and the held
// assets it misses.
func PriceNote(m *coinfolio.Metrics, pricesUpdatedAt time.Time) string {
	var b strings.Builder
	if pricesUpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Live prices not loaded yet (%s).", Source)
	} else {
		fmt.Fprintf(&b, "Live prices updated %s (%s).", when(pricesUpdatedAt), Source)
	}
	if m.MissingPrices > 0 {
		fmt.Fprintf(&b, " Missing prices for %d asset(s). Add %s IDs to enable live pricing.", m.MissingPrices, Source)
	}
	return b.String()
}

// AllocationNote is non empty when the allocation falls back on cost basis.
func AllocationNote(m *coinfolio.Metrics) string {
	if m.AllocationEstimatedCount == 0 {
		return ""
	}
	return fmt.Sprintf("Allocation uses cost basis for %d asset(s) without live prices.", m.AllocationEstimatedCount)
}

// EstimateNote is non empty when some held assets are valued without live price.
func EstimateNote(m *coinfolio.Metrics) string {
	if m.MissingPrices == 0 {
		return ""
	}
	return fmt.Sprintf("Using last trade price for %d asset(s) without live prices.", m.MissingPrices)
}

// Summary renders the portfolio totals and the notes about the price snapshot.
func Summary(m *coinfolio.Metrics, pricesUpdatedAt time.Time, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio Summary\n\n")
	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Total Invested | %s |\n", money(m.Totals.Invested, cur))
	fmt.Fprintf(&b, "| Current Value | %s |\n", money(m.Totals.CurrentValue, cur))
	fmt.Fprintf(&b, "| Unrealized P/L | %s |\n", coinfolio.FormatSignedMoney(m.Totals.Unrealized, cur))
	fmt.Fprintf(&b, "| Realized P/L | %s |\n", coinfolio.FormatSignedMoney(m.Totals.Realized, cur))
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "%s\n", PriceNote(m, pricesUpdatedAt))
	for _, note := range []string{AllocationNote(m), EstimateNote(m)} {
		if note != "" {
			fmt.Fprintf(&b, "\n%s\n", note)
		}
	}
	return b.String()
}
