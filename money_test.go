package coinfolio

import (
	"math"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	testCases := []struct {
		value float64
		cur   string
		want  string
	}{
		{1234.567, "USD", "$1,234.57"},
		{-1234.5, "USD", "-$1,234.50"},
		{0, "USD", "$0.00"},
		{0.5, "USD", "$0.50"},
		{0.00012345, "USD", "$0.000123"},
		{-0.1234567, "USD", "-$0.123457"},
		{1, "", "$1.00"},
		{math.NaN(), "USD", "—"},
	}
	for _, tc := range testCases {
		if got := FormatMoney(tc.value, tc.cur); got != tc.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tc.value, tc.cur, got, tc.want)
		}
	}
}

func TestFormatOptionalMoney(t *testing.T) {
	if got := FormatOptionalMoney(nil, "USD"); got != Undefined {
		t.Errorf("got %q, want %q", got, Undefined)
	}
	v := 2.0
	if got := FormatSignedMoney(v, "USD"); got != "+$2.00" {
		t.Errorf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		value float64
		want  string
	}{
		{1234567.5, "1,234,567.5"},
		{2, "2"},
		{0.123456789, "0.12345679"},
		{-1000, "-1,000"},
	}
	for _, tc := range testCases {
		if got := FormatNumber(tc.value); got != tc.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	testCases := []struct {
		value float64
		want  string
	}{
		{12.345, "+12.3%"},
		{-4, "-4.0%"},
		{0, "0.0%"},
	}
	for _, tc := range testCases {
		if got := FormatPercent(tc.value, 1); got != tc.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 1,234.5 ")
	if err != nil || got != 1234.5 {
		t.Errorf("ParseAmount() = %v, %v", got, err)
	}
	if _, err := ParseAmount("abc"); err == nil {
		t.Error("expected an error")
	}
}
