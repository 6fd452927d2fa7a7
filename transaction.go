package coinfolio

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/etnz/coinfolio/date"
	"github.com/google/uuid"
)

// TxType is the kind of a transaction.
type TxType string

// Transaction types.
const (
	Buy  TxType = "buy"
	Sell TxType = "sell"
)

// ParseTxType parses "buy" or "sell", case-insensitively.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q, expected %q or %q", s, Buy, Sell)
	}
}

// Transaction is an immutable record of one trade.
//
// Transactions are replaced as a whole when edited, never mutated in place.
type Transaction struct {
	ID       string    // ID is unique and never reused.
	Type     TxType    // Type is Buy or Sell.
	Date     time.Time // Date orders transactions.
	CoinID   string    // CoinID is the price service identifier, if known.
	Symbol   string    // Symbol is the uppercased ticker.
	Name     string    // Name is the display name.
	Quantity float64   // Quantity is the number of units traded, positive.
	Price    float64   // Price is the quote currency price per unit, positive.
	Fee      float64   // Fee is in quote currency, added to cost on buy, deducted from proceeds on sell.
	Notes    string    // Notes is free text.
}

// NewID returns a fresh transaction identifier.
func NewID() string { return "tx_" + uuid.NewString() }

// NewTransaction creates a transaction with a fresh identifier.
//
// Text fields are trimmed, the symbol is uppercased, the name defaults to the
// symbol and an invalid fee (negative, NaN or infinite) is reset to zero.
// Quantity and price are kept as given: Validate is in charge of rejecting them.
func NewTransaction(typ TxType, on time.Time, coinID, symbol, name string, quantity, price, fee float64, notes string) Transaction {
	tx := Transaction{
		ID:       NewID(),
		Type:     typ,
		Date:     on,
		CoinID:   strings.TrimSpace(coinID),
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Name:     strings.TrimSpace(name),
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
		Notes:    strings.TrimSpace(notes),
	}
	if tx.Name == "" {
		tx.Name = tx.Symbol
	}
	return tx.normalized()
}

// normalized returns a copy with the fee defaulted to zero when invalid.
func (t Transaction) normalized() Transaction {
	if math.IsNaN(t.Fee) || math.IsInf(t.Fee, 0) || t.Fee < 0 {
		t.Fee = 0
	}
	return t
}

// Key returns the asset key: the coin id if known, else the uppercased symbol.
func (t Transaction) Key() string {
	if t.CoinID != "" {
		return t.CoinID
	}
	return strings.ToUpper(t.Symbol)
}

// Gross returns quantity × price.
func (t Transaction) Gross() float64 { return t.Quantity * t.Price }

// Total returns the signed cash flow of the transaction: negative for a buy
// (cost including fee), positive for a sell (proceeds net of fee).
func (t Transaction) Total() float64 {
	if t.Type == Buy {
		return -(t.Gross() + t.Fee)
	}
	return t.Gross() - t.Fee
}

// Label returns "SYMBOL • Name", or just the symbol when the name adds nothing.
func (t Transaction) Label() string {
	if t.Name == "" || t.Name == t.Symbol {
		return t.Symbol
	}
	return t.Symbol + " • " + t.Name
}

// MarshalJSON implements the json.Marshaler interface with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("type", t.Type)
	w.Append("date", date.Format(t.Date))
	w.Optional("coinId", t.CoinID)
	w.Append("symbol", t.Symbol)
	w.Optional("name", t.Name)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Append("fee", t.Fee)
	w.Optional("notes", t.Notes)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
//
// Dates are accepted in any layout supported by date.Parse, and a missing or
// null fee reads as zero.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID       string   `json:"id"`
		Type     string   `json:"type"`
		Date     string   `json:"date"`
		CoinID   string   `json:"coinId"`
		Symbol   string   `json:"symbol"`
		Name     string   `json:"name"`
		Quantity float64  `json:"quantity"`
		Price    float64  `json:"price"`
		Fee      *float64 `json:"fee"`
		Notes    string   `json:"notes"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	typ, err := ParseTxType(temp.Type)
	if err != nil {
		return err
	}
	on, err := date.Parse(temp.Date)
	if err != nil {
		return fmt.Errorf("transaction %q: %w", temp.ID, err)
	}
	*t = Transaction{
		ID:       temp.ID,
		Type:     typ,
		Date:     on,
		CoinID:   temp.CoinID,
		Symbol:   temp.Symbol,
		Name:     temp.Name,
		Quantity: temp.Quantity,
		Price:    temp.Price,
		Notes:    temp.Notes,
	}
	if temp.Fee != nil {
		t.Fee = *temp.Fee
	}
	*t = t.normalized()
	return nil
}

// sortByDate returns a copy of txs sorted by ascending date.
// Transactions at the same instant keep their relative order.
func sortByDate(txs []Transaction) []Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
	return sorted
}
