package coinfolio

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBackup_RoundTrip(t *testing.T) {
	updated := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	data := BackupData{
		Transactions:    []Transaction{buy("1", on(0), "btc-bitcoin", 2, 100, 1)},
		Prices:          Prices{"btc-bitcoin": {Price: 42000, UpdatedAt: updated}},
		PricesUpdatedAt: &updated,
		Coins:           []Coin{{ID: "btc-bitcoin", Name: "Bitcoin", Symbol: "BTC", Rank: 1}},
	}
	var buf bytes.Buffer
	if err := EncodeBackup(&buf, data, updated); err != nil {
		t.Fatalf("EncodeBackup() error = %v", err)
	}
	for _, want := range []string{"\n  \"version\": 1,\n", `"exportedAt": "2024-02-01T12:00:00Z"`, `"coinsUpdatedAt": null`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("EncodeBackup() = %s, want it to contain %q", buf.String(), want)
		}
	}

	got, err := DecodeBackup(&buf)
	if err != nil {
		t.Fatalf("DecodeBackup() error = %v", err)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "1" {
		t.Errorf("Transactions = %+v, want the single tx 1", got.Transactions)
	}
	if p := got.Prices["btc-bitcoin"]; p.Price != 42000 || !updated.Equal(p.UpdatedAt) {
		t.Errorf("Prices[btc-bitcoin] = %+v, want 42000 updated at %v", p, updated)
	}
	if got.PricesUpdatedAt == nil || !updated.Equal(*got.PricesUpdatedAt) {
		t.Errorf("PricesUpdatedAt = %v, want %v", got.PricesUpdatedAt, updated)
	}
	if got.CoinsUpdatedAt != nil {
		t.Errorf("CoinsUpdatedAt = %v, want nil", got.CoinsUpdatedAt)
	}
	if !reflect.DeepEqual(got.Coins, data.Coins) {
		t.Errorf("Coins = %v, want %v", got.Coins, data.Coins)
	}
}

func TestDecodeBackup_Lenient(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		txs   int
	}{
		{"unwrapped", `{"transactions":[{"id":"1","type":"buy","date":"2024-01-01","symbol":"BTC","quantity":1,"price":1}]}`, 1},
		{"empty object", `{}`, 0},
		{"wrong kinds", `{"data":{"transactions":{},"prices":[],"coins":"x","pricesUpdatedAt":12}}`, 0},
		{"null data", `{"data":null,"transactions":[]}`, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeBackup(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("DecodeBackup() error = %v", err)
			}
			if len(got.Transactions) != tc.txs {
				t.Errorf("len(Transactions) = %d, want %d", len(got.Transactions), tc.txs)
			}
			if got.Prices == nil || got.Coins == nil {
				t.Errorf("DecodeBackup() left nil prices or coins: %+v", got)
			}
			if got.PricesUpdatedAt != nil {
				t.Errorf("PricesUpdatedAt = %v, want nil", got.PricesUpdatedAt)
			}
		})
	}
}

func TestDecodeBackup_Invalid(t *testing.T) {
	for _, input := range []string{``, `not json`, `[1,2]`, `"text"`, `{"transactions":[{"type":"swap"}]}`} {
		if _, err := DecodeBackup(strings.NewReader(input)); !errors.Is(err, ErrInvalidBackup) {
			t.Errorf("DecodeBackup(%q) error = %v, want %v", input, err, ErrInvalidBackup)
		}
	}
}
