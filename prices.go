package coinfolio

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/etnz/coinfolio/date"
)

// Price is a live quote for one asset.
type Price struct {
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// An unreadable updatedAt is ignored.
func (p *Price) UnmarshalJSON(data []byte) error {
	var temp struct {
		Price     float64 `json:"price"`
		UpdatedAt string  `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*p = Price{Price: temp.Price}
	if t, err := date.Parse(temp.UpdatedAt); err == nil {
		p.UpdatedAt = t
	}
	return nil
}

// Prices is a price snapshot indexed by asset key.
//
// A missing key means that no live price is known for the asset.
type Prices map[string]Price

// Lookup returns the price for key, if any.
func (p Prices) Lookup(key string) (float64, bool) {
	q, ok := p[key]
	if !ok {
		return 0, false
	}
	return q.Price, true
}

// Coin describes an asset known to the price service.
type Coin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rank   int    `json:"rank"`
}

// MinSearchLength is the shortest search term SearchCoins accepts.
const MinSearchLength = 2

// SearchCoins returns up to limit coins whose name or symbol contains term,
// case-insensitively, in the order of coins.
//
// Terms shorter than MinSearchLength match nothing.
func SearchCoins(coins []Coin, term string, limit int) []Coin {
	term = strings.ToLower(strings.TrimSpace(term))
	if len(term) < MinSearchLength {
		return nil
	}
	var matches []Coin
	for _, c := range coins {
		if limit > 0 && len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Symbol), term) {
			matches = append(matches, c)
		}
	}
	return matches
}

// FindCoin returns the coin with the given id.
func FindCoin(coins []Coin, id string) (Coin, bool) {
	i := slices.IndexFunc(coins, func(c Coin) bool { return c.ID == id })
	if i < 0 {
		return Coin{}, false
	}
	return coins[i], true
}

// Stale reports whether a cache written at updatedAt is older than ttl at now.
// A zero updatedAt is always stale.
func Stale(updatedAt time.Time, ttl time.Duration, now time.Time) bool {
	return updatedAt.IsZero() || now.Sub(updatedAt) >= ttl
}
