package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/rs/zerolog"
)

// Storage keys.
const (
	KeyTransactions    = "cit.transactions"
	KeyPrices          = "cit.prices"
	KeyPricesUpdatedAt = "cit.prices.updatedAt"
	KeyCoins           = "cit.coins"
	KeyCoinsUpdatedAt  = "cit.coinsUpdatedAt"
)

// Store reads and writes the application state.
//
// Unreadable values are logged and read as empty, so that one corrupted key
// never prevents the rest of the state from loading.
type Store struct {
	kv  KV
	log zerolog.Logger
}

// New creates a Store over kv.
func New(kv KV, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log.With().Str("component", "store").Logger()}
}

// Close closes the underlying KV.
func (s *Store) Close() error { return s.kv.Close() }

// load decodes the JSON value at key into v, a pointer. It reports whether
// v was set. An unreadable value leaves v to its zero value, never half
// decoded.
func load(ctx context.Context, kv KV, log zerolog.Logger, key string, v any) (bool, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		reflect.ValueOf(v).Elem().SetZero()
		log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable value")
		return false, nil
	}
	return true, nil
}

func save(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}

// loadTime reads a timestamp, the zero time if absent.
func loadTime(ctx context.Context, kv KV, log zerolog.Logger, key string) (time.Time, error) {
	var t time.Time
	_, err := load(ctx, kv, log, key, &t)
	return t, err
}

// saveTime writes t, or deletes the key when t is nil.
func saveTime(ctx context.Context, kv KV, key string, t *time.Time) error {
	if t == nil {
		return kv.Delete(ctx, key)
	}
	return save(ctx, kv, key, t.UTC())
}

// Transactions returns the transaction log.
func (s *Store) Transactions(ctx context.Context) ([]coinfolio.Transaction, error) {
	var txs []coinfolio.Transaction
	if _, err := load(ctx, s.kv, s.log, KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// SaveTransactions replaces the transaction log.
func (s *Store) SaveTransactions(ctx context.Context, txs []coinfolio.Transaction) error {
	if txs == nil {
		txs = []coinfolio.Transaction{}
	}
	return save(ctx, s.kv, KeyTransactions, txs)
}

// Prices returns the cached price snapshot, never nil.
func (s *Store) Prices(ctx context.Context) (coinfolio.Prices, error) {
	var prices coinfolio.Prices
	if _, err := load(ctx, s.kv, s.log, KeyPrices, &prices); err != nil {
		return nil, err
	}
	if prices == nil {
		prices = coinfolio.Prices{}
	}
	return prices, nil
}

// PricesUpdatedAt returns when prices were last refreshed, zero if never.
func (s *Store) PricesUpdatedAt(ctx context.Context) (time.Time, error) {
	return loadTime(ctx, s.kv, s.log, KeyPricesUpdatedAt)
}

// SavePrices replaces the price snapshot and its refresh time.
func (s *Store) SavePrices(ctx context.Context, prices coinfolio.Prices, updatedAt time.Time) error {
	return s.kv.Batch(ctx, func(kv KV) error {
		if err := save(ctx, kv, KeyPrices, prices); err != nil {
			return err
		}
		return saveTime(ctx, kv, KeyPricesUpdatedAt, &updatedAt)
	})
}

// Coins returns the cached coin list.
func (s *Store) Coins(ctx context.Context) ([]coinfolio.Coin, error) {
	var coins []coinfolio.Coin
	if _, err := load(ctx, s.kv, s.log, KeyCoins, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// CoinsUpdatedAt returns when the coin list was last fetched, zero if never.
func (s *Store) CoinsUpdatedAt(ctx context.Context) (time.Time, error) {
	return loadTime(ctx, s.kv, s.log, KeyCoinsUpdatedAt)
}

// SaveCoins replaces the coin list and its fetch time.
func (s *Store) SaveCoins(ctx context.Context, coins []coinfolio.Coin, updatedAt time.Time) error {
	if coins == nil {
		coins = []coinfolio.Coin{}
	}
	return s.kv.Batch(ctx, func(kv KV) error {
		if err := save(ctx, kv, KeyCoins, coins); err != nil {
			return err
		}
		return saveTime(ctx, kv, KeyCoinsUpdatedAt, &updatedAt)
	})
}

// Load reads the whole state, as written in backups.
func (s *Store) Load(ctx context.Context) (coinfolio.BackupData, error) {
	var data coinfolio.BackupData
	var err error
	if data.Transactions, err = s.Transactions(ctx); err != nil {
		return data, err
	}
	if data.Prices, err = s.Prices(ctx); err != nil {
		return data, err
	}
	if data.Coins, err = s.Coins(ctx); err != nil {
		return data, err
	}
	pricesAt, err := s.PricesUpdatedAt(ctx)
	if err != nil {
		return data, err
	}
	if !pricesAt.IsZero() {
		data.PricesUpdatedAt = &pricesAt
	}
	coinsAt, err := s.CoinsUpdatedAt(ctx)
	if err != nil {
		return data, err
	}
	if !coinsAt.IsZero() {
		data.CoinsUpdatedAt = &coinsAt
	}
	return data, nil
}

// Restore overwrites the whole state with data. Either every key is written or none.
func (s *Store) Restore(ctx context.Context, data coinfolio.BackupData) error {
	if data.Transactions == nil {
		data.Transactions = []coinfolio.Transaction{}
	}
	if data.Prices == nil {
		data.Prices = coinfolio.Prices{}
	}
	if data.Coins == nil {
		data.Coins = []coinfolio.Coin{}
	}
	err := s.kv.Batch(ctx, func(kv KV) error {
		if err := save(ctx, kv, KeyTransactions, data.Transactions); err != nil {
			return err
		}
		if err := save(ctx, kv, KeyPrices, data.Prices); err != nil {
			return err
		}
		if err := save(ctx, kv, KeyCoins, data.Coins); err != nil {
			return err
		}
		if err := saveTime(ctx, kv, KeyPricesUpdatedAt, data.PricesUpdatedAt); err != nil {
			return err
		}
		return saveTime(ctx, kv, KeyCoinsUpdatedAt, data.CoinsUpdatedAt)
	})
	if err != nil {
		return err
	}
	s.log.Info().
		Int("transactions", len(data.Transactions)).
		Int("prices", len(data.Prices)).
		Int("coins", len(data.Coins)).
		Msg("state restored")
	return nil
}
