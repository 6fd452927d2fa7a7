package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/coinfolio"
)

// Coins renders coin search results, with the id to use in transactions.
func Coins(coins []coinfolio.Coin) string {
	var b strings.Builder
	if len(coins) == 0 {
		fmt.Fprintln(&b, "No coin found.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Rank | Symbol | Name | ID |")
	fmt.Fprintln(&b, "|---:|:---|:---|:---|")
	for _, c := range coins {
		fmt.Fprintf(&b, "| %d | %s | %s | `%s` |\n", c.Rank, cell(c.Symbol), cell(c.Name), c.ID)
	}
	return b.String()
}
