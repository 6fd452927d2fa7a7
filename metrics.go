package coinfolio

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"
)

// AssetPosition is the running state of one asset while the log is folded.
type AssetPosition struct {
	Key    string
	CoinID string
	Symbol string
	Name   string

	Holdings    float64 // Holdings is the quantity currently held.
	CostBasis   float64 // CostBasis is the cost attributed to current holdings, weighted-average.
	RealizedPnL float64 // RealizedPnL is the profit or loss crystallized by sells.
	LastPrice   float64 // LastPrice is the trade price of the most recent transaction.

	TotalBuyQty       float64
	TotalSellQty      float64
	TotalBuyCost      float64 // TotalBuyCost includes fees.
	TotalSellProceeds float64 // TotalSellProceeds is net of fees.
}

// AssetMetrics is an AssetPosition valued against the price snapshot.
//
// Pointer fields are nil when they are not defined: AvgCost when nothing is
// held, the others when no live price is known.
type AssetMetrics struct {
	AssetPosition
	AvgCost      *float64
	CurrentPrice *float64
	CurrentValue *float64
	Unrealized   *float64

	// AllocationValue sizes the asset in the allocation: the current value,
	// falling back to the cost basis when there is no live price.
	AllocationValue float64
	// Estimated is true when AllocationValue falls back to the cost basis.
	Estimated bool
}

// Totals aggregates the whole portfolio.
type Totals struct {
	Invested     float64 // Invested is the net lifetime cash committed.
	CurrentValue float64 // CurrentValue only counts assets with a live price.
	Unrealized   float64
	Realized     float64
}

// TimelinePoint is the portfolio state right after one transaction.
type TimelinePoint struct {
	Date time.Time
	TxID string

	Invested     float64 // Invested is the cumulative net cash invested.
	ValueAtTrade float64 // ValueAtTrade values every holding at its last trade price.
	CostBasis    float64
	Realized     float64

	// Holdings maps asset keys to quantities, positive holdings only.
	Holdings map[string]float64
}

// Metrics is the result of ComputeMetrics.
type Metrics struct {
	// Assets are sorted by descending current value, unknown values counting as zero.
	Assets   []AssetMetrics
	Totals   Totals
	Timeline []TimelinePoint

	// MissingPrices counts held assets without a live price.
	MissingPrices int
	// AllocationEstimatedCount counts assets whose allocation uses the cost basis.
	AllocationEstimatedCount int
}

// accumulator is the state carried through the fold.
type accumulator struct {
	order  []string // asset keys in order of first appearance
	assets map[string]*AssetPosition

	invested     float64
	realized     float64
	costBasis    float64
	valueAtTrade float64

	timeline []TimelinePoint
}

func newAccumulator(n int) *accumulator {
	return &accumulator{
		assets:   make(map[string]*AssetPosition),
		timeline: make([]TimelinePoint, 0, n),
	}
}

// position returns the position for tx's asset, creating it on first sight.
func (acc *accumulator) position(tx Transaction) *AssetPosition {
	key := tx.Key()
	if pos, ok := acc.assets[key]; ok {
		return pos
	}
	pos := &AssetPosition{
		Key:    key,
		CoinID: tx.CoinID,
		Symbol: strings.ToUpper(strings.TrimSpace(tx.Symbol)),
		Name:   tx.Name,
	}
	if pos.Name == "" {
		pos.Name = pos.Symbol
	}
	acc.assets[key] = pos
	acc.order = append(acc.order, key)
	return pos
}

// apply folds one transaction into the accumulator and records a timeline point.
func (acc *accumulator) apply(tx Transaction) {
	pos := acc.position(tx)
	gross := tx.Quantity * tx.Price
	fee := tx.normalized().Fee
	before := pos.Holdings * pos.LastPrice

	switch tx.Type {
	case Buy:
		cost := gross + fee
		pos.Holdings += tx.Quantity
		pos.CostBasis += cost
		pos.TotalBuyQty += tx.Quantity
		pos.TotalBuyCost += cost
		acc.invested += cost
		acc.costBasis += cost
	default:
		// Anything but a buy reduces the position, as Validate assumes.
		avgCost := 0.0
		if pos.Holdings > 0 {
			avgCost = pos.CostBasis / pos.Holdings
		}
		costOfSold := avgCost * tx.Quantity
		proceeds := gross - fee
		pos.Holdings -= tx.Quantity
		pos.CostBasis -= costOfSold
		pos.TotalSellQty += tx.Quantity
		pos.TotalSellProceeds += proceeds
		pos.RealizedPnL += proceeds - costOfSold
		acc.invested -= proceeds
		acc.realized += proceeds - costOfSold
		acc.costBasis -= costOfSold
	}

	pos.LastPrice = tx.Price
	acc.valueAtTrade += pos.Holdings*pos.LastPrice - before

	holdings := make(map[string]float64)
	for _, key := range acc.order {
		if h := acc.assets[key].Holdings; h > 0 {
			holdings[key] = h
		}
	}
	acc.timeline = append(acc.timeline, TimelinePoint{
		Date:         tx.Date,
		TxID:         tx.ID,
		Invested:     acc.invested,
		ValueAtTrade: acc.valueAtTrade,
		CostBasis:    acc.costBasis,
		Realized:     acc.realized,
		Holdings:     holdings,
	})
}

// ComputeMetrics folds txs in chronological order, with the weighted-average
// cost method, and values the resulting positions against prices.
//
// Transactions at the same instant are applied in their input order and txs
// is not modified. The function has no side effect and never fails: a log
// that was not validated can yield negative holdings, which are reported as is.
func ComputeMetrics(txs []Transaction, prices Prices) *Metrics {
	acc := newAccumulator(len(txs))
	for _, tx := range sortByDate(txs) {
		acc.apply(tx)
	}

	m := &Metrics{
		Assets:   make([]AssetMetrics, 0, len(acc.order)),
		Timeline: acc.timeline,
	}
	for _, key := range acc.order {
		m.Assets = append(m.Assets, value(*acc.assets[key], prices))
	}
	slices.SortStableFunc(m.Assets, func(a, b AssetMetrics) int {
		va, vb := deref(a.CurrentValue), deref(b.CurrentValue)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return 0
		}
	})

	// Totals are summed in the order of m.Assets.
	var costBasis float64
	for _, a := range m.Assets {
		m.Totals.Invested += a.TotalBuyCost - a.TotalSellProceeds
		m.Totals.Realized += a.RealizedPnL
		costBasis += a.CostBasis
		if a.CurrentValue != nil {
			m.Totals.CurrentValue += *a.CurrentValue
		} else if a.Holdings > 0 {
			m.MissingPrices++
		}
		if a.Estimated {
			m.AllocationEstimatedCount++
		}
	}
	m.Totals.Unrealized = m.Totals.CurrentValue - costBasis
	return m
}

// value enriches pos with the live price found in prices.
func value(pos AssetPosition, prices Prices) AssetMetrics {
	a := AssetMetrics{AssetPosition: pos}
	if pos.Holdings > 0 {
		a.AvgCost = ptr(pos.CostBasis / pos.Holdings)
	}
	if price, ok := prices.Lookup(pos.Key); ok {
		a.CurrentPrice = ptr(price)
		a.CurrentValue = ptr(pos.Holdings * price)
		a.Unrealized = ptr(*a.CurrentValue - pos.CostBasis)
		a.AllocationValue = *a.CurrentValue
		return a
	}
	if pos.Holdings > 0 {
		a.AllocationValue = pos.CostBasis
		a.Estimated = true
	}
	return a
}

// Asset returns the metrics of the asset with the given key.
func (m *Metrics) Asset(key string) (AssetMetrics, bool) {
	i := slices.IndexFunc(m.Assets, func(a AssetMetrics) bool { return a.Key == key })
	if i < 0 {
		return AssetMetrics{}, false
	}
	return m.Assets[i], true
}

// Held returns the assets with positive holdings, sorted by symbol.
func (m *Metrics) Held() []AssetMetrics {
	var held []AssetMetrics
	for _, a := range m.Assets {
		if a.Holdings > Epsilon {
			held = append(held, a)
		}
	}
	slices.SortStableFunc(held, func(a, b AssetMetrics) int {
		if a.Symbol < b.Symbol {
			return -1
		}
		if a.Symbol > b.Symbol {
			return 1
		}
		return 0
	})
	return held
}

// Keys returns the keys of every asset in the timeline, sorted.
func (m *Metrics) Keys() []string {
	keys := make(map[string]struct{})
	for _, p := range m.Timeline {
		for k := range p.Holdings {
			keys[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(keys))
}

// MarshalJSON implements the json.Marshaler interface.
// Undefined values are encoded as null.
func (a AssetMetrics) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("key", a.Key)
	w.Optional("coinId", a.CoinID)
	w.Append("symbol", a.Symbol)
	w.Append("name", a.Name)
	w.Append("holdings", a.Holdings)
	w.Append("costBasis", a.CostBasis)
	w.Append("realizedPnl", a.RealizedPnL)
	w.Append("lastPrice", a.LastPrice)
	w.Append("totalBuyQty", a.TotalBuyQty)
	w.Append("totalSellQty", a.TotalSellQty)
	w.Append("totalBuyCost", a.TotalBuyCost)
	w.Append("totalSellProceeds", a.TotalSellProceeds)
	w.Nullable("avgCost", a.AvgCost)
	w.Nullable("currentPrice", a.CurrentPrice)
	w.Nullable("currentValue", a.CurrentValue)
	w.Nullable("unrealized", a.Unrealized)
	w.Append("allocationValue", a.AllocationValue)
	w.Append("usesEstimate", a.Estimated)
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface.
func (p TimelinePoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", p.Date.Format(time.RFC3339))
	w.Optional("txId", p.TxID)
	w.Append("invested", p.Invested)
	w.Append("valueAtTrade", p.ValueAtTrade)
	w.Append("costBasis", p.CostBasis)
	w.Append("realized", p.Realized)
	w.Append("holdings", p.Holdings)
	return w.MarshalJSON()
}

// MarshalJSON implements the json.Marshaler interface.
func (m *Metrics) MarshalJSON() ([]byte, error) {
	totals, err := json.Marshal(map[string]float64{
		"invested":     m.Totals.Invested,
		"currentValue": m.Totals.CurrentValue,
		"unrealized":   m.Totals.Unrealized,
		"realized":     m.Totals.Realized,
	})
	if err != nil {
		return nil, err
	}
	var w jsonObjectWriter
	w.Append("assets", m.Assets)
	w.Append("totals", json.RawMessage(totals))
	w.Append("timeline", m.Timeline)
	w.Append("missingPrices", m.MissingPrices)
	w.Append("allocationEstimatedCount", m.AllocationEstimatedCount)
	return w.MarshalJSON()
}

func ptr(v float64) *float64 { return &v }

// deref returns *v, or 0 when v is nil.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
