// Package currency formats and parses Indonesian rupiah amounts the way the
// input fields display them: "Rp " prefix, dot-grouped thousands, no minor
// units.
package currency

import (
	"strconv"
	"strings"
)

// FormatRupiah renders a whole-rupiah amount as display text,
// e.g. 1234567 -> "Rp 1.234.567".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.WriteString("Rp ")
	b.WriteString(sign)

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Strip removes the currency decoration (the Rp prefix characters, grouping
// dots, commas and spaces) from input text, leaving whatever remains.
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'R', 'p', '.', ',', ' ':
			return -1
		}
		return r
	}, s)
}

// ParseAmount recovers the raw amount from free-form input. Decoration is
// stripped first; anything that still fails to parse counts as zero, so an
// empty or all-decoration input yields 0 rather than an error. Callers that
// require a value must check for emptiness before parsing.
func ParseAmount(s string) int64 {
	clean := Strip(s)
	if clean == "" {
		return 0
	}
	amount, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0
	}
	return amount
}

// Reformat runs one live-formatting pass over input text: strip, parse
// (zero on failure), format. Applying it to its own output yields the same
// string.
func Reformat(s string) string {
	return FormatRupiah(ParseAmount(s))
}
