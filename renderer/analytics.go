package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/coinfolio"
)

// Volume renders the monthly buy and sell volume.
func Volume(months []coinfolio.MonthVolume, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Monthly Volume\n\n")
	if len(months) == 0 {
		fmt.Fprintln(&b, "No transactions yet.")
		return b.String()
	}

	var buy, sell float64
	fmt.Fprintln(&b, "| Month | Buy | Sell |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, m := range months {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Label(), money(m.Buy, cur), money(m.Sell, cur))
		buy += m.Buy
		sell += m.Sell
	}
	fmt.Fprintf(&b, "| **Total** | **%s** | **%s** |\n", money(buy, cur), money(sell, cur))
	return b.String()
}

// Allocation renders the allocation slices with their share of the portfolio.
// Slices valued at cost basis are marked with an asterisk.
func Allocation(slices []coinfolio.AllocationSlice, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Allocation\n\n")
	if len(slices) == 0 {
		fmt.Fprintln(&b, "Nothing held.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Asset | Value | Share |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, s := range slices {
		symbol := cell(s.Symbol)
		if s.Estimated {
			symbol += "\\*"
		}
		fmt.Fprintf(&b, "| %s | %s | %.2f%% |\n", symbol, money(s.Value, cur), s.Percent)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		n := 0
		for _, s := range slices {
			if s.Estimated {
				n++
			}
		}
		fmt.Fprintf(w, "\n\\* Allocation uses cost basis for %d asset(s) without live prices.\n", n)
		return n > 0
	})
	return b.String()
}
