package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
)

// Transaction renders a transaction to a one line sentence.
func Transaction(tx coinfolio.Transaction, cur string) string {
	verb := "Bought"
	if tx.Type == coinfolio.Sell {
		verb = "Sold"
	}
	s := fmt.Sprintf("%s %s %s at %s", verb, coinfolio.FormatNumber(tx.Quantity), tx.Label(), money(tx.Price, cur))
	if tx.Fee > 0 {
		s += fmt.Sprintf(" (fee %s)", money(tx.Fee, cur))
	}
	return s
}

// Transactions renders transactions in the given order.
func Transactions(txs []coinfolio.Transaction, cur string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions found.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Type | Asset | Quantity | Price | Fee | Total | Notes | ID |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|:---|:---|")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | `%s` |\n",
			tx.Date.Local().Format("2006-01-02 15:04"),
			tx.Type,
			cell(tx.Label()),
			coinfolio.FormatNumber(tx.Quantity),
			money(tx.Price, cur),
			money(tx.Fee, cur),
			coinfolio.FormatSignedMoney(tx.Total(), cur),
			cell(tx.Notes),
			tx.ID,
		)
	}
	return b.String()
}
