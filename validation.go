package coinfolio

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Epsilon is the tolerance used when comparing holdings against zero.
const Epsilon = 1e-8

// Validation errors.
var (
	ErrInvalidType          = errors.New("type must be buy or sell")
	ErrMissingSymbol        = errors.New("symbol is required")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPrice         = errors.New("price must be greater than zero")
	ErrInsufficientHoldings = errors.New("sell exceeds holdings")
)

// InsufficientHoldingsError reports the sell that would drive an asset's
// holdings below zero.
type InsufficientHoldingsError struct {
	Symbol    string
	TxID      string
	Shortfall float64 // Shortfall is the missing quantity, positive.
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("sell exceeds holdings for %s", e.Symbol)
}

// Is makes errors.Is(err, ErrInsufficientHoldings) true.
func (e *InsufficientHoldingsError) Is(target error) bool { return target == ErrInsufficientHoldings }

// Validate checks that candidate can be accepted into the existing log.
//
// When excludeID is not empty, the existing transaction with that id is
// ignored: this is how an edit is validated, the candidate replacing it.
//
// The checks run in order and stop at the first failure: symbol, quantity,
// price, type, then holdings sufficiency over the whole hypothetical log sorted by
// date. The fee is not checked.
func Validate(candidate Transaction, existing []Transaction, excludeID string) error {
	if strings.TrimSpace(candidate.Symbol) == "" {
		return ErrMissingSymbol
	}
	if !positive(candidate.Quantity) {
		return ErrInvalidQuantity
	}
	if !positive(candidate.Price) {
		return ErrInvalidPrice
	}
	if candidate.Type != Buy && candidate.Type != Sell {
		return fmt.Errorf("%w, got %q", ErrInvalidType, candidate.Type)
	}

	all := make([]Transaction, 0, len(existing)+1)
	for _, tx := range existing {
		if excludeID != "" && tx.ID == excludeID {
			continue
		}
		all = append(all, tx)
	}
	all = append(all, candidate)

	holdings := make(map[string]float64)
	for _, tx := range sortByDate(all) {
		key := tx.Key()
		if tx.Type == Buy {
			holdings[key] += tx.Quantity
			continue
		}
		holdings[key] -= tx.Quantity
		if holdings[key] < -Epsilon {
			return &InsufficientHoldingsError{Symbol: tx.Symbol, TxID: tx.ID, Shortfall: -holdings[key]}
		}
	}
	return nil
}

// positive reports whether v is a finite number greater than zero.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }
