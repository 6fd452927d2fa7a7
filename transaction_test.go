package coinfolio

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseTxType(t *testing.T) {
	for input, want := range map[string]TxType{"buy": Buy, "SELL": Sell, " Buy ": Buy} {
		got, err := ParseTxType(input)
		if err != nil {
			t.Fatalf("ParseTxType(%q) error = %v", input, err)
		}
		if got != want {
			t.Errorf("ParseTxType(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseTxType("transfer"); err == nil {
		t.Errorf("ParseTxType(%q) error = nil, want an error", "transfer")
	}
}

func TestNewTransaction(t *testing.T) {
	tx := NewTransaction(Buy, day1, " btc-bitcoin ", " btc ", "", 1, 2, math.NaN(), " note ")
	if !strings.HasPrefix(tx.ID, "tx_") {
		t.Errorf("ID = %q, want a tx_ prefix", tx.ID)
	}
	if tx.CoinID != "btc-bitcoin" || tx.Symbol != "BTC" || tx.Name != "BTC" || tx.Notes != "note" {
		t.Errorf("NewTransaction() = %+v, want trimmed fields and the symbol as name", tx)
	}
	if tx.Fee != 0 {
		t.Errorf("Fee = %v, want 0", tx.Fee)
	}

	other := NewTransaction(Buy, day1, "", "btc", "Bitcoin", 1, 2, 0.5, "")
	if other.ID == tx.ID {
		t.Errorf("NewTransaction() reused id %q", tx.ID)
	}
	if other.Key() != "BTC" {
		t.Errorf("Key() = %q, want %q", other.Key(), "BTC")
	}
	if other.Fee != 0.5 {
		t.Errorf("Fee = %v, want 0.5", other.Fee)
	}
}

func TestTransaction_Total(t *testing.T) {
	testCases := []struct {
		name string
		tx   Transaction
		want float64
	}{
		{"buy", buy("1", day1, "b", 2, 10000, 10), -20010},
		{"sell", sell("1", day1, "b", 1, 15000, 5), 14995},
	}
	for _, tc := range testCases {
		if got := tc.tx.Total(); got != tc.want {
			t.Errorf("%s Total() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTransaction_JSON(t *testing.T) {
	tx := Transaction{
		ID: "tx_1", Type: Sell, Date: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC),
		CoinID: "btc-bitcoin", Symbol: "BTC", Name: "Bitcoin", Quantity: 0.5, Price: 42000, Fee: 1.5,
	}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"id":"tx_1","type":"sell","date":"2024-01-05T10:30:00Z","coinId":"btc-bitcoin","symbol":"BTC","name":"Bitcoin","quantity":0.5,"price":42000,"fee":1.5}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}

	var back Transaction
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if !tx.Date.Equal(back.Date) {
		t.Errorf("Date = %v, want %v", back.Date, tx.Date)
	}
	back.Date = tx.Date
	if back != tx {
		t.Errorf("json.Unmarshal() = %+v, want %+v", back, tx)
	}
}

func TestTransaction_JSONKeepsSubsecondOrder(t *testing.T) {
	first := buy("1", day1, "btc-bitcoin", 1, 100, 0)
	second := sell("2", day1.Add(500*time.Millisecond), "btc-bitcoin", 1, 100, 0)

	var buf strings.Builder
	if err := EncodeTransactions(&buf, []Transaction{second, first}); err != nil {
		t.Fatalf("EncodeTransactions() error = %v", err)
	}
	got, err := DecodeTransactions(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	if !got[0].Date.Equal(second.Date) {
		t.Errorf("Date = %v, want %v", got[0].Date, second.Date)
	}
	// the sell still comes after the buy once reloaded.
	if err := Validate(got[0], got[1:], ""); err != nil {
		t.Errorf("Validate() of the reloaded sell error = %v", err)
	}
}

func TestTransaction_UnmarshalLenient(t *testing.T) {
	var tx Transaction
	if err := json.Unmarshal([]byte(`{"id":"a","type":"buy","date":"2024-01-05T10:30","symbol":"ETH","quantity":1,"price":2,"fee":null}`), &tx); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if tx.Date.Year() != 2024 || tx.Fee != 0 {
		t.Errorf("json.Unmarshal() = %+v, want a 2024 date and no fee", tx)
	}

	if err := json.Unmarshal([]byte(`{"id":"a","type":"buy","date":"2024-01-05","symbol":"ETH","quantity":1,"price":2,"fee":-4}`), &tx); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if tx.Fee != 0 {
		t.Errorf("Fee = %v, want a negative fee read as 0", tx.Fee)
	}

	for _, input := range []string{`{"id":"a","type":"swap","date":"2024-01-05"}`, `{"id":"a","type":"buy","date":"soon"}`} {
		if err := json.Unmarshal([]byte(input), &tx); err == nil {
			t.Errorf("json.Unmarshal(%s) error = nil, want an error", input)
		}
	}
}
