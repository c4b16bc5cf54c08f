package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount the way Argentine tickets print it:
// "." groups thousands, "," separates up to three decimals, trailing zeros dropped.
//
//	15000   -> $15.000
//	1234.5  -> $1.234,5
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(3).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("$")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
