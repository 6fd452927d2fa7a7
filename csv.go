package coinfolio

import (
	"errors"
	"io"
	"strings"

	"github.com/etnz/coinfolio/date"
	"github.com/shopspring/decimal"
)

// ErrNothingToExport is returned when exporting an empty log.
var ErrNothingToExport = errors.New("no transactions to export")

// csvHeader lists the exported columns, in order.
var csvHeader = []string{"id", "type", "date", "coinId", "symbol", "name", "quantity", "price", "fee", "notes"}

// ExportCSV writes transactions as CSV, one row per transaction after a header row.
// Every field is quoted, embedded quotes being doubled.
func ExportCSV(w io.Writer, txs []Transaction) error {
	if len(txs) == 0 {
		return ErrNothingToExport
	}
	var b strings.Builder
	writeCSVRow(&b, csvHeader)
	for _, tx := range txs {
		writeCSVRow(&b, []string{
			tx.ID,
			string(tx.Type),
			date.Format(tx.Date),
			tx.CoinID,
			tx.Symbol,
			tx.Name,
			decimal.NewFromFloat(tx.Quantity).String(),
			decimal.NewFromFloat(tx.Price).String(),
			decimal.NewFromFloat(tx.Fee).String(),
			tx.Notes,
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
