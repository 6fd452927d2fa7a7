package coinfolio

import (
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"
)

var day1 = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

func on(days int) time.Time { return day1.AddDate(0, 0, days) }

func buy(id string, at time.Time, key string, qty, price, fee float64) Transaction {
	return Transaction{ID: id, Type: Buy, Date: at, CoinID: key, Symbol: symbolOf(key), Name: symbolOf(key), Quantity: qty, Price: price, Fee: fee}
}

func sell(id string, at time.Time, key string, qty, price, fee float64) Transaction {
	tx := buy(id, at, key, qty, price, fee)
	tx.Type = Sell
	return tx
}

// symbolOf maps test coin ids to symbols.
func symbolOf(key string) string {
	switch key {
	case "btc-bitcoin":
		return "BTC"
	case "eth-ethereum":
		return "ETH"
	default:
		return key
	}
}

func near(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

func TestComputeMetrics_ScenarioA(t *testing.T) {
	txs := []Transaction{buy("1", on(0), "btc-bitcoin", 2, 10000, 10)}
	m := ComputeMetrics(txs, Prices{"btc-bitcoin": {Price: 12000}})

	if len(m.Assets) != 1 {
		t.Fatalf("ComputeMetrics() returned %d assets, want 1", len(m.Assets))
	}
	a := m.Assets[0]
	if a.AvgCost == nil || a.CurrentValue == nil || a.Unrealized == nil {
		t.Fatalf("ComputeMetrics() = %+v, want defined average cost, value and unrealized", a)
	}

	testCases := []struct {
		name      string
		got, want float64
	}{
		{"holdings", a.Holdings, 2},
		{"cost basis", a.CostBasis, 20010},
		{"average cost", *a.AvgCost, 10005},
		{"current value", *a.CurrentValue, 24000},
		{"unrealized", *a.Unrealized, 3990},
		{"realized", a.RealizedPnL, 0},
		{"total unrealized", m.Totals.Unrealized, 3990},
		{"total invested", m.Totals.Invested, 20010},
	}
	for _, tc := range testCases {
		if !near(tc.got, tc.want) {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if m.MissingPrices != 0 {
		t.Errorf("MissingPrices = %d, want 0", m.MissingPrices)
	}
}

func TestComputeMetrics_ScenarioB(t *testing.T) {
	txs := []Transaction{
		buy("1", on(0), "btc-bitcoin", 2, 10000, 10),
		sell("2", on(1), "btc-bitcoin", 1, 15000, 5),
	}
	m := ComputeMetrics(txs, Prices{"btc-bitcoin": {Price: 12000}})

	a, ok := m.Asset("btc-bitcoin")
	if !ok {
		t.Fatalf("Asset(%q) not found", "btc-bitcoin")
	}
	testCases := []struct {
		name      string
		got, want float64
	}{
		{"holdings", a.Holdings, 1},
		{"cost basis", a.CostBasis, 10005},
		{"realized", a.RealizedPnL, 4990},
		{"total realized", m.Totals.Realized, 4990},
		{"total invested", m.Totals.Invested, 20010 - 14995},
		{"total unrealized", m.Totals.Unrealized, 12000 - 10005},
	}
	for _, tc := range testCases {
		if !near(tc.got, tc.want) {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestComputeMetrics_ScenarioD(t *testing.T) {
	txs := []Transaction{
		buy("1", on(0), "btc-bitcoin", 1, 20000, 0),
		buy("2", on(1), "DOGGO", 1000, 0.5, 1),
	}
	m := ComputeMetrics(txs, Prices{"btc-bitcoin": {Price: 30000}})

	if m.MissingPrices != 1 {
		t.Errorf("MissingPrices = %d, want 1", m.MissingPrices)
	}
	if m.AllocationEstimatedCount != 1 {
		t.Errorf("AllocationEstimatedCount = %d, want 1", m.AllocationEstimatedCount)
	}
	if !near(m.Totals.CurrentValue, 30000) {
		t.Errorf("Totals.CurrentValue = %v, want 30000", m.Totals.CurrentValue)
	}

	doggo, ok := m.Asset("DOGGO")
	if !ok {
		t.Fatalf("Asset(%q) not found", "DOGGO")
	}
	if doggo.CurrentPrice != nil || doggo.CurrentValue != nil || doggo.Unrealized != nil {
		t.Errorf("DOGGO has a price, value or unrealized P/L without a known price: %+v", doggo)
	}
	if !doggo.Estimated {
		t.Errorf("DOGGO.Estimated = false, want true")
	}
	if !near(doggo.AllocationValue, 501) {
		t.Errorf("DOGGO.AllocationValue = %v, want 501", doggo.AllocationValue)
	}
}

func TestComputeMetrics_RoundTrip(t *testing.T) {
	const q, p, f, p2, f2 = 3.0, 1234.5, 2.5, 1500.25, 1.75
	txs := []Transaction{
		buy("1", on(0), "eth-ethereum", q, p, f),
		sell("2", on(1), "eth-ethereum", q, p2, f2),
	}
	m := ComputeMetrics(txs, nil)

	a := m.Assets[0]
	if want := q*p2 - f2 - (q*p + f); !near(a.RealizedPnL, want) {
		t.Errorf("RealizedPnL = %v, want %v", a.RealizedPnL, want)
	}
	if math.Abs(a.Holdings) > Epsilon {
		t.Errorf("Holdings = %v, want 0", a.Holdings)
	}
	if math.Abs(a.CostBasis) > 1e-6 {
		t.Errorf("CostBasis = %v, want 0", a.CostBasis)
	}
	if a.AvgCost != nil {
		t.Errorf("AvgCost = %v, want undefined", *a.AvgCost)
	}
	// nothing held, nothing to estimate
	if a.Estimated || a.AllocationValue != 0 || m.MissingPrices != 0 {
		t.Errorf("closed position counted in allocation: %+v, missing prices %d", a, m.MissingPrices)
	}
}

func TestComputeMetrics_MissingPriceFallback(t *testing.T) {
	txs := []Transaction{buy("1", on(0), "eth-ethereum", 2, 100, 4)}
	m := ComputeMetrics(txs, Prices{"btc-bitcoin": {Price: 1}})

	a := m.Assets[0]
	if a.CurrentValue != nil || a.Unrealized != nil {
		t.Errorf("ComputeMetrics() valued an unpriced asset: %+v", a)
	}
	if a.AllocationValue != a.CostBasis {
		t.Errorf("AllocationValue = %v, want the cost basis %v", a.AllocationValue, a.CostBasis)
	}
	if m.MissingPrices != 1 {
		t.Errorf("MissingPrices = %d, want 1", m.MissingPrices)
	}
	if m.Totals.CurrentValue != 0 {
		t.Errorf("Totals.CurrentValue = %v, want 0", m.Totals.CurrentValue)
	}
	if !near(m.Totals.Unrealized, -204) {
		t.Errorf("Totals.Unrealized = %v, want -204", m.Totals.Unrealized)
	}
}

func TestComputeMetrics_Timeline(t *testing.T) {
	txs := []Transaction{
		sell("3", on(2), "btc-bitcoin", 1, 300, 0),
		buy("1", on(0), "btc-bitcoin", 2, 100, 0),
		buy("2", on(1), "eth-ethereum", 4, 10, 0),
	}
	m := ComputeMetrics(txs, nil)

	if len(m.Timeline) != 3 {
		t.Fatalf("len(Timeline) = %d, want 3", len(m.Timeline))
	}
	var ids []string
	for _, p := range m.Timeline {
		ids = append(ids, p.TxID)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("timeline ids = %v, want %v", ids, want)
	}

	testCases := []struct {
		name      string
		got, want float64
	}{
		// values at each trade's own price
		{"value after 1", m.Timeline[0].ValueAtTrade, 200},
		{"value after 2", m.Timeline[1].ValueAtTrade, 240},
		{"value after 3", m.Timeline[2].ValueAtTrade, 340},
		{"invested after 2", m.Timeline[1].Invested, 240},
		{"invested after 3", m.Timeline[2].Invested, -60},
		{"cost basis after 3", m.Timeline[2].CostBasis, 140},
		{"realized after 3", m.Timeline[2].Realized, 200},
	}
	for _, tc := range testCases {
		if !near(tc.got, tc.want) {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if want := map[string]float64{"btc-bitcoin": 1, "eth-ethereum": 4}; !reflect.DeepEqual(m.Timeline[2].Holdings, want) {
		t.Errorf("holdings after 3 = %v, want %v", m.Timeline[2].Holdings, want)
	}
}

func TestComputeMetrics_TimelineOmitsEmptyHoldings(t *testing.T) {
	txs := []Transaction{
		buy("1", on(0), "btc-bitcoin", 1, 100, 0),
		sell("2", on(1), "btc-bitcoin", 1, 100, 0),
	}
	m := ComputeMetrics(txs, nil)
	if want := map[string]float64{"btc-bitcoin": 1}; !reflect.DeepEqual(m.Timeline[0].Holdings, want) {
		t.Errorf("Timeline[0].Holdings = %v, want %v", m.Timeline[0].Holdings, want)
	}
	if len(m.Timeline[1].Holdings) != 0 {
		t.Errorf("Timeline[1].Holdings = %v, want empty", m.Timeline[1].Holdings)
	}
}

func TestComputeMetrics_SameInstantKeepsInputOrder(t *testing.T) {
	txs := []Transaction{
		buy("b", on(0), "btc-bitcoin", 1, 100, 0),
		buy("a", on(0), "btc-bitcoin", 1, 200, 0),
	}
	m := ComputeMetrics(txs, nil)
	if m.Timeline[0].TxID != "b" || m.Timeline[1].TxID != "a" {
		t.Errorf("timeline order = %s, %s, want b, a", m.Timeline[0].TxID, m.Timeline[1].TxID)
	}
	if got := m.Assets[0].LastPrice; got != 200 {
		t.Errorf("LastPrice = %v, want 200", got)
	}
}

func TestComputeMetrics_SortedByCurrentValue(t *testing.T) {
	txs := []Transaction{
		buy("1", on(0), "NOPRICE", 1, 1_000_000, 0),
		buy("2", on(0), "btc-bitcoin", 1, 10, 0),
		buy("3", on(0), "eth-ethereum", 1, 10, 0),
	}
	m := ComputeMetrics(txs, Prices{"btc-bitcoin": {Price: 5}, "eth-ethereum": {Price: 50}})
	var got []string
	for _, a := range m.Assets {
		got = append(got, a.Key)
	}
	if want := []string{"eth-ethereum", "btc-bitcoin", "NOPRICE"}; !reflect.DeepEqual(got, want) {
		t.Errorf("asset keys = %v, want %v", got, want)
	}
}

func TestComputeMetrics_SymbolIsUppercased(t *testing.T) {
	testCases := []struct {
		name   string
		symbol string
	}{
		{"lowercase", "btc"},
		{"mixed case", "Btc"},
		{"padded", " btc "},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := Transaction{ID: "1", Type: Buy, Date: on(0), Symbol: tc.symbol, Quantity: 1, Price: 10}
			a := ComputeMetrics([]Transaction{tx}, nil).Assets[0]
			if a.Symbol != "BTC" {
				t.Errorf("Symbol = %q, want %q", a.Symbol, "BTC")
			}
		})
	}
}

func TestComputeMetrics_SellWithoutHoldings(t *testing.T) {
	// unvalidated input is accepted and reported as is.
	m := ComputeMetrics([]Transaction{sell("1", on(0), "btc-bitcoin", 1, 100, 0)}, nil)
	a := m.Assets[0]
	if a.Holdings != -1 || a.CostBasis != 0 || a.RealizedPnL != 100 {
		t.Errorf("holdings, cost, realized = %v, %v, %v, want -1, 0, 100", a.Holdings, a.CostBasis, a.RealizedPnL)
	}
	if a.AvgCost != nil || a.Estimated {
		t.Errorf("short position has an average cost or an estimate: %+v", a)
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil, nil)
	if len(m.Assets) != 0 || len(m.Timeline) != 0 {
		t.Errorf("ComputeMetrics(nil) = %d assets, %d points, want none", len(m.Assets), len(m.Timeline))
	}
	if m.Totals != (Totals{}) {
		t.Errorf("Totals = %+v, want zero", m.Totals)
	}
}

func TestComputeMetrics_InvalidFeeIgnored(t *testing.T) {
	m := ComputeMetrics([]Transaction{buy("1", on(0), "btc-bitcoin", 1, 100, -5)}, nil)
	if got := m.Assets[0].CostBasis; got != 100 {
		t.Errorf("CostBasis = %v, want 100", got)
	}
}

func TestComputeMetrics_DoesNotMutateInput(t *testing.T) {
	txs := []Transaction{
		buy("2", on(1), "btc-bitcoin", 1, 100, 0),
		buy("1", on(0), "btc-bitcoin", 1, 100, 0),
	}
	ComputeMetrics(txs, nil)
	if txs[0].ID != "2" {
		t.Errorf("txs[0].ID = %q after ComputeMetrics, want %q", txs[0].ID, "2")
	}
}

// randomLog generates a log that passes Validate at every step.
func randomLog(r *rand.Rand, n int) []Transaction {
	keys := []string{"btc-bitcoin", "eth-ethereum", "XRP"}
	var txs []Transaction
	for i := range n {
		key := keys[r.IntN(len(keys))]
		at := on(r.IntN(60))
		price := 1 + r.Float64()*1000
		fee := r.Float64() * 5
		tx := buy(NewID(), at, key, 0.01+r.Float64()*10, price, fee)
		if i%3 != 0 {
			tx.Type = Sell
		}
		if Validate(tx, txs, "") != nil {
			tx.Type = Buy
		}
		if Validate(tx, txs, "") == nil {
			txs = append(txs, tx)
		}
	}
	return txs
}

// negativeHoldings replays txs in date order and lists every asset whose
// holdings drop below zero along the way.
func negativeHoldings(txs []Transaction) []string {
	var found []string
	sorted := sortByDate(txs)
	for i := range sorted {
		for _, a := range ComputeMetrics(sorted[:i+1], nil).Assets {
			if a.Holdings < -Epsilon {
				found = append(found, fmt.Sprintf("%s=%v after %s", a.Key, a.Holdings, sorted[i].ID))
			}
		}
	}
	return found
}

func TestNegativeHoldings(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		want int
	}{
		{"bare sell", []Transaction{sell("1", on(0), "btc-bitcoin", 5, 100, 0)}, 1},
		{"sell before buy", []Transaction{
			buy("1", on(1), "btc-bitcoin", 5, 100, 0),
			sell("2", on(0), "btc-bitcoin", 5, 100, 0),
		}, 1},
		{"covered sell", []Transaction{
			buy("1", on(0), "btc-bitcoin", 5, 100, 0),
			sell("2", on(1), "btc-bitcoin", 5, 100, 0),
		}, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := negativeHoldings(tc.txs); len(got) != tc.want {
				t.Errorf("negativeHoldings() = %v, want %d entries", got, tc.want)
			}
		})
	}
}

func TestComputeMetrics_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for run := range 20 {
		txs := randomLog(r, 40)
		prices := Prices{"btc-bitcoin": {Price: 500}, "XRP": {Price: 0.5}}
		m := ComputeMetrics(txs, prices)

		// holdings never go negative in a valid log.
		if found := negativeHoldings(txs); len(found) > 0 {
			t.Errorf("run %d: negative holdings %v", run, found)
		}

		// cost basis is consistent with the average cost.
		for _, a := range m.Assets {
			if a.Holdings <= 0 {
				continue
			}
			if a.AvgCost == nil {
				t.Fatalf("run %d: %s held without an average cost", run, a.Key)
			}
			if d := math.Abs(a.CostBasis - *a.AvgCost*a.Holdings); d > 1e-6 {
				t.Errorf("run %d: %s cost basis off by %v", run, a.Key, d)
			}
		}

		// unrealized totals are reproducible from the asset list, in order.
		var value, cost float64
		for _, a := range m.Assets {
			if a.CurrentValue != nil {
				value += *a.CurrentValue
			}
			cost += a.CostBasis
		}
		if m.Totals.CurrentValue != value || m.Totals.Unrealized != value-cost {
			t.Errorf("run %d: totals %+v, want value %v unrealized %v", run, m.Totals, value, value-cost)
		}

		// identical inputs give identical outputs.
		if again := ComputeMetrics(txs, prices); !reflect.DeepEqual(m, again) {
			t.Errorf("run %d: ComputeMetrics() is not deterministic", run)
		}
	}
}

func TestMetrics_Held(t *testing.T) {
	txs := []Transaction{
		buy("1", on(0), "eth-ethereum", 1, 10, 0),
		buy("2", on(0), "btc-bitcoin", 1, 10, 0),
		buy("3", on(0), "XRP", 1, 10, 0),
		sell("4", on(1), "XRP", 1, 10, 0),
	}
	var got []string
	for _, a := range ComputeMetrics(txs, nil).Held() {
		got = append(got, a.Symbol)
	}
	if want := []string{"BTC", "ETH"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Held() = %v, want %v", got, want)
	}
}

func TestMetrics_MarshalJSON(t *testing.T) {
	txs := []Transaction{buy("1", on(0), "DOGGO", 2, 3, 0)}
	data, err := ComputeMetrics(txs, nil).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	for _, want := range []string{`"currentValue":null`, `"avgCost":3`, `"missingPrices":1`, `"holdings":{"DOGGO":2}`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("MarshalJSON() = %s, want it to contain %s", data, want)
		}
	}
}
