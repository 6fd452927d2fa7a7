// Package renderer turns portfolio metrics into markdown reports and PNG charts.
//
// Markdown functions return GitHub flavored markdown, meant to be displayed
// in a terminal by the cmd package.
package renderer

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
)

// Source is the name of the price service, as displayed in notes.
const Source = "CoinPaprika"

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// cell escapes s for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// money formats an amount in the report currency.
func money(v float64, cur string) string { return coinfolio.FormatMoney(v, cur) }

// when formats a timestamp for humans, in local time.
func when(t time.Time) string { return t.Local().Format("Jan 2, 2006 15:04") }
