package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatDKK formats an amount as a string like "1.234,50 kr.".
// Uses dot as thousands separator and comma for the two decimals (Danish style).
func FormatDKK(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + suffix
	b.Grow(len(whole) + len(whole)/3 + len(frac) + 6)
	if amount.Round(2).IsNegative() {
		b.WriteString("-")
	}

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte('.')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(" kr.")

	return b.String()
}

// FormatAmount formats an amount in the Danish style without the currency suffix
func FormatAmount(amount decimal.Decimal) string {
	return strings.TrimSuffix(FormatDKK(amount), " kr.")
}
