package coinfolio

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the quote currency used when none is configured.
const DefaultCurrency = "USD"

// Undefined is displayed in place of unknown values.
const Undefined = "—"

// currency returns the currency for code, never nil.
func currency(code string) *money.Currency {
	if code == "" {
		code = DefaultCurrency
	}
	if c := money.GetCurrency(code); c != nil {
		return c
	}
	return &money.Currency{Code: code, Fraction: 2, Decimal: ".", Thousand: ",", Grapheme: code + " ", Template: "$1"}
}

// fractionDigits returns the number of decimals needed to print d, clamped to [lo, hi].
func fractionDigits(d decimal.Decimal, lo, hi int) int {
	s := d.Abs().StringFixed(int32(hi))
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return lo
	}
	n := len(strings.TrimRight(s[i+1:], "0"))
	if n < lo {
		return lo
	}
	return n
}

// format formats d with the given number of fraction digits.
func format(d decimal.Decimal, digits int, decimalSep, thousand, grapheme, template string) string {
	f := money.NewFormatter(digits, decimalSep, thousand, grapheme, template)
	return f.Format(d.Shift(int32(digits)).Round(0).IntPart())
}

// FormatMoney formats v in the given currency.
//
// Amounts below one unit, in absolute value, keep up to 6 decimals so that
// small prices stay readable; other amounts use the currency's own precision.
// NaN and infinities are Undefined.
func FormatMoney(v float64, code string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	c := currency(code)
	d := decimal.NewFromFloat(v)
	digits := c.Fraction
	if abs := math.Abs(v); abs > 0 && abs < 1 {
		d = d.Round(6)
		digits = fractionDigits(d, c.Fraction, 6)
	} else {
		d = d.Round(int32(c.Fraction))
	}
	return format(d, digits, c.Decimal, c.Thousand, c.Grapheme, c.Template)
}

// FormatOptionalMoney formats *v, or Undefined when v is nil.
func FormatOptionalMoney(v *float64, code string) string {
	if v == nil {
		return Undefined
	}
	return FormatMoney(*v, code)
}

// FormatSignedMoney is FormatMoney with an explicit "+" on positive amounts.
func FormatSignedMoney(v float64, code string) string {
	s := FormatMoney(v, code)
	if v > 0 && s != Undefined {
		return "+" + s
	}
	return s
}

// FormatNumber formats a quantity with thousands separators and up to 8 decimals.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	d := decimal.NewFromFloat(v).Round(8)
	return format(d, fractionDigits(d, 0, 8), ".", ",", "", "1")
}

// FormatPercent formats v as a percentage with the given decimals and an
// explicit "+" on positive values.
func FormatPercent(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%s%%", sign, decimal.NewFromFloat(v).StringFixed(int32(digits)))
}

// ParseAmount parses a decimal number as typed by a user: "1,234.5" and
// "1234.5" are equivalent.
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.InexactFloat64(), nil
}
