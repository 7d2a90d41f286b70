package domain

import "fmt"

// Money is stored as int64 cents so arithmetic stays exact. These helpers
// convert at the edges only.

// Cents converts a two-decimal amount (as decoded from JSON) to cents,
// rounding half away from zero to absorb float decoding noise.
func Cents(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*100 + 0.5)
	}
	return int64(amount*100 - 0.5)
}

// FormatCents renders cents as a two-decimal string, e.g. 10050 -> "100.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
