package coinfolio

import (
	"slices"

	"github.com/etnz/coinfolio/date"
)

// ROI returns the return on investment of an asset in percent:
// the current value (or cost basis without a live price) plus realized
// profit, relative to the total buy cost.
//
// It is only defined for assets with a positive total buy cost.
func ROI(a AssetMetrics) (float64, bool) {
	if a.TotalBuyCost <= 0 {
		return 0, false
	}
	current := a.CostBasis
	if a.CurrentValue != nil {
		current = *a.CurrentValue
	}
	return (current + a.RealizedPnL - a.TotalBuyCost) / a.TotalBuyCost * 100, true
}

// AssetROI pairs an asset with its ROI.
type AssetROI struct {
	Key    string
	Symbol string
	ROI    float64
}

// ROIs returns the ROI of every asset where it is defined, in the order of m.Assets.
func ROIs(m *Metrics) []AssetROI {
	var rois []AssetROI
	for _, a := range m.Assets {
		if roi, ok := ROI(a); ok {
			rois = append(rois, AssetROI{Key: a.Key, Symbol: a.Symbol, ROI: roi})
		}
	}
	return rois
}

// MonthVolume is the traded volume of one calendar month.
type MonthVolume struct {
	Month date.Month
	Buy   float64 // Buy sums quantity×price+fee of buys.
	Sell  float64 // Sell sums quantity×price−fee of sells.
}

// Label returns the month label, like "Jan 2024".
func (v MonthVolume) Label() string { return v.Month.Label() }

// MonthlyVolume groups transactions by the calendar month of their date, in
// the date's own location. Months are sorted chronologically and only months
// with at least one transaction are listed. Transactions without a date are
// ignored.
func MonthlyVolume(txs []Transaction) []MonthVolume {
	byMonth := make(map[date.Month]*MonthVolume)
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		month := date.MonthOf(tx.Date)
		v, ok := byMonth[month]
		if !ok {
			v = &MonthVolume{Month: month}
			byMonth[month] = v
		}
		fee := tx.normalized().Fee
		if tx.Type == Sell {
			v.Sell += tx.Gross() - fee
		} else {
			v.Buy += tx.Gross() + fee
		}
	}
	volumes := make([]MonthVolume, 0, len(byMonth))
	for _, v := range byMonth {
		volumes = append(volumes, *v)
	}
	slices.SortFunc(volumes, func(a, b MonthVolume) int { return a.Month.Compare(b.Month) })
	return volumes
}

// AllocationSlice is the share of one asset in the portfolio.
type AllocationSlice struct {
	Key       string
	Symbol    string
	Value     float64
	Percent   float64
	Estimated bool // Estimated is true when Value is the cost basis.
}

// Allocation returns the assets with a positive allocation value and their
// share of the sum of allocation values, in the order of m.Assets.
func Allocation(m *Metrics) []AllocationSlice {
	var total float64
	for _, a := range m.Assets {
		if a.AllocationValue > 0 {
			total += a.AllocationValue
		}
	}
	var shares []AllocationSlice
	for _, a := range m.Assets {
		if a.AllocationValue <= 0 {
			continue
		}
		shares = append(shares, AllocationSlice{
			Key:       a.Key,
			Symbol:    a.Symbol,
			Value:     a.AllocationValue,
			Percent:   a.AllocationValue / total * 100,
			Estimated: a.Estimated,
		})
	}
	return shares
}
