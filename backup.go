package coinfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/etnz/coinfolio/date"
)

// BackupVersion is the version written in backups.
const BackupVersion = 1

// ErrInvalidBackup is returned when a backup cannot be read.
var ErrInvalidBackup = errors.New("invalid backup")

// BackupData is the full application state.
type BackupData struct {
	Transactions    []Transaction `json:"transactions"`
	Prices          Prices        `json:"prices"`
	PricesUpdatedAt *time.Time    `json:"pricesUpdatedAt"`
	Coins           []Coin        `json:"coins"`
	CoinsUpdatedAt  *time.Time    `json:"coinsUpdatedAt"`
}

// Backup is the document written by EncodeBackup.
type Backup struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Data       BackupData `json:"data"`
}

// EncodeBackup writes data as an indented JSON backup document stamped with exportedAt.
func EncodeBackup(w io.Writer, data BackupData, exportedAt time.Time) error {
	if data.Transactions == nil {
		data.Transactions = []Transaction{}
	}
	if data.Prices == nil {
		data.Prices = Prices{}
	}
	if data.Coins == nil {
		data.Coins = []Coin{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Backup{Version: BackupVersion, ExportedAt: exportedAt.UTC(), Data: data})
}

// DecodeBackup reads a backup document.
//
// Reading is lenient: the state can be wrapped in a "data" member or be the
// document itself, and members that are missing or of the wrong JSON kind
// read as empty. Only a document that is not a JSON object, or members that
// have the right kind but cannot be decoded, are rejected with ErrInvalidBackup.
func DecodeBackup(r io.Reader) (BackupData, error) {
	var data BackupData
	raw, err := io.ReadAll(r)
	if err != nil {
		return data, err
	}
	doc, ok := object(raw)
	if !ok {
		return data, fmt.Errorf("%w: not a JSON object", ErrInvalidBackup)
	}
	if inner, ok := object(doc["data"]); ok {
		doc = inner
	}

	data.Transactions = []Transaction{}
	if v := doc["transactions"]; kind(v) == '[' {
		if err := json.Unmarshal(v, &data.Transactions); err != nil {
			return BackupData{}, fmt.Errorf("%w: transactions: %v", ErrInvalidBackup, err)
		}
	}
	data.Prices = Prices{}
	if v := doc["prices"]; kind(v) == '{' {
		if err := json.Unmarshal(v, &data.Prices); err != nil {
			return BackupData{}, fmt.Errorf("%w: prices: %v", ErrInvalidBackup, err)
		}
	}
	data.Coins = []Coin{}
	if v := doc["coins"]; kind(v) == '[' {
		if err := json.Unmarshal(v, &data.Coins); err != nil {
			return BackupData{}, fmt.Errorf("%w: coins: %v", ErrInvalidBackup, err)
		}
	}
	data.PricesUpdatedAt = timestamp(doc["pricesUpdatedAt"])
	data.CoinsUpdatedAt = timestamp(doc["coinsUpdatedAt"])
	return data, nil
}

// object decodes raw as a JSON object.
func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if kind(raw) != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// kind returns the first significant byte of raw, or 0.
func kind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// timestamp decodes a JSON string holding a date, nil if absent or invalid.
func timestamp(raw json.RawMessage) *time.Time {
	var s string
	if kind(raw) != '"' || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	t, err := date.Parse(s)
	if err != nil {
		return nil
	}
	return &t
}
