package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
)

// Holdings renders one row per asset, held or not, in the order of m.Assets.
func Holdings(m *coinfolio.Metrics, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings\n\n")
	if len(m.Assets) == 0 {
		fmt.Fprintln(&b, "No holdings yet. Add your first transaction.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Asset | Holdings | Avg Cost | Cost Basis | Price | Value | Unrealized | Realized |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, a := range m.Assets {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			cell(assetLabel(a.Symbol, a.Name)),
			coinfolio.FormatNumber(a.Holdings),
			coinfolio.FormatOptionalMoney(a.AvgCost, cur),
			money(a.CostBasis, cur),
			coinfolio.FormatOptionalMoney(a.CurrentPrice, cur),
			coinfolio.FormatOptionalMoney(a.CurrentValue, cur),
			signedOptional(a.Unrealized, cur),
			coinfolio.FormatSignedMoney(a.RealizedPnL, cur),
		)
	}

	if note := EstimateNote(m); note != "" {
		fmt.Fprintf(&b, "\n%s\n", note)
	}
	return b.String()
}

// ROI renders the return on investment of every asset where it is defined.
func ROI(m *coinfolio.Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Return on Investment\n\n")
	rois := coinfolio.ROIs(m)
	if len(rois) == 0 {
		fmt.Fprintln(&b, "No asset has been bought yet.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Asset | ROI |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, r := range rois {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(r.Symbol), coinfolio.FormatPercent(r.ROI, 2))
	}
	return b.String()
}

func assetLabel(symbol, name string) string {
	if name == "" || name == symbol {
		return "**" + symbol + "**"
	}
	return "**" + symbol + "** " + name
}

func signedOptional(v *float64, cur string) string {
	if v == nil {
		return coinfolio.Undefined
	}
	return coinfolio.FormatSignedMoney(*v, cur)
}
