package coinfolio

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateID         = errors.New("duplicate transaction id")
)

// Ledger is the transaction log.
//
// Transactions are kept in insertion order. Every mutation is validated and
// applied under the same lock, so that concurrent callers never validate
// against a log that is being modified.
type Ledger struct {
	mu  sync.RWMutex
	txs []Transaction
}

// NewLedger creates a ledger holding txs, as is.
func NewLedger(txs ...Transaction) *Ledger {
	return &Ledger{txs: slices.Clone(txs)}
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Transactions returns a copy of the log in insertion order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.txs)
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.index(id)
	if i < 0 {
		return Transaction{}, false
	}
	return l.txs[i], true
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.txs, func(tx Transaction) bool { return tx.ID == id })
}

// Add validates tx against the log and appends it.
func (l *Ledger) Add(tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx.ID == "" {
		tx.ID = NewID()
	}
	if l.index(tx.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateID, tx.ID)
	}
	tx = tx.normalized()
	if err := Validate(tx, l.txs, ""); err != nil {
		return err
	}
	l.txs = append(l.txs, tx)
	return nil
}

// Edit is the set of fields an edit can change. Nil fields are left as is.
//
// The asset identity (coin id, symbol and name) of a transaction cannot be
// edited: delete and add it again instead.
type Edit struct {
	Type     *TxType
	Date     *time.Time
	Quantity *float64
	Price    *float64
	Fee      *float64
	Notes    *string
}

// Edit replaces the transaction with the given id by an edited copy, after
// validating the copy against the rest of the log. It returns the new value.
func (l *Ledger) Edit(id string, e Edit) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrTransactionNotFound, id)
	}
	tx := l.txs[i]
	if e.Type != nil {
		tx.Type = *e.Type
	}
	if e.Date != nil {
		tx.Date = *e.Date
	}
	if e.Quantity != nil {
		tx.Quantity = *e.Quantity
	}
	if e.Price != nil {
		tx.Price = *e.Price
	}
	if e.Fee != nil {
		tx.Fee = *e.Fee
	}
	if e.Notes != nil {
		tx.Notes = strings.TrimSpace(*e.Notes)
	}
	tx = tx.normalized()
	if err := Validate(tx, l.txs, id); err != nil {
		return Transaction{}, err
	}
	l.txs[i] = tx
	return tx, nil
}

// Delete removes the transaction with the given id.
//
// Deletion is not validated: removing a buy can leave later sells without
// enough holdings, which ComputeMetrics reports as negative holdings.
func (l *Ledger) Delete(id string) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return Transaction{}, fmt.Errorf("%w: %q", ErrTransactionNotFound, id)
	}
	tx := l.txs[i]
	l.txs = slices.Delete(l.txs, i, i+1)
	return tx, nil
}

// Clear removes every transaction.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = nil
}

// Replace swaps the whole log, without validation. It is used to restore a backup.
func (l *Ledger) Replace(txs []Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = slices.Clone(txs)
}

// Metrics computes the metrics of the current log.
func (l *Ledger) Metrics(prices Prices) *Metrics {
	return ComputeMetrics(l.Transactions(), prices)
}

// Sellable returns the assets that currently have positive holdings, sorted by symbol.
func (l *Ledger) Sellable() []AssetMetrics {
	return l.Metrics(nil).Held()
}

// CoinIDs returns the distinct, non-empty coin ids of the log, in order of first appearance.
func (l *Ledger) CoinIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ids []string
	for _, tx := range l.txs {
		if tx.CoinID != "" && !slices.Contains(ids, tx.CoinID) {
			ids = append(ids, tx.CoinID)
		}
	}
	return ids
}

// Filter selects transactions. Zero fields match everything.
type Filter struct {
	Key  string // Key is an asset key.
	Type TxType
	Text string // Text is searched in symbol, name and notes, case-insensitively.
}

// Match reports whether tx is selected by f.
func (f Filter) Match(tx Transaction) bool {
	if f.Key != "" && tx.Key() != f.Key {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		haystack := strings.ToLower(tx.Symbol + " " + tx.Name + " " + tx.Notes)
		if !strings.Contains(haystack, text) {
			return false
		}
	}
	return true
}

// Filter returns the transactions matching f, newest first.
func (l *Ledger) Filter(f Filter) []Transaction {
	var selected []Transaction
	for _, tx := range l.Transactions() {
		if f.Match(tx) {
			selected = append(selected, tx)
		}
	}
	slices.SortStableFunc(selected, func(a, b Transaction) int { return b.Date.Compare(a.Date) })
	return selected
}

// CoinOption is an asset as offered in filters.
type CoinOption struct {
	Key   string
	Label string
}

// CoinOptions returns the distinct assets of the log sorted by label.
// The label comes from the first transaction of each asset.
func (l *Ledger) CoinOptions() []CoinOption {
	var options []CoinOption
	seen := make(map[string]bool)
	for _, tx := range l.Transactions() {
		key := tx.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, CoinOption{Key: key, Label: tx.Label()})
	}
	slices.SortStableFunc(options, func(a, b CoinOption) int { return strings.Compare(a.Label, b.Label) })
	return options
}
