package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts raw amount text into a decimal value. Empty or
// malformed text parses to zero so that "no amount" and "zero amount"
// surface the same positivity error downstream.
func ParseAmount(text string) decimal.Decimal {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatEUR renders an amount the way the wallet displays balances,
// e.g. "€1,500.75".
func FormatEUR(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteRune('€')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
