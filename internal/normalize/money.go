package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var (
	reCurrencySym = regexp.MustCompile(`[¥￥$€£₹]|(?i)\b(rmb|cny|usd|eur|jpy|gbp|hkd)\b`)
	reThousands   = regexp.MustCompile(`(\d),(\d{3})`)
	reFirstNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// ParseMoney extracts the first signed decimal number from a money-ish string.
// Currency symbols, whitespace and thousands separators are stripped, fullwidth
// digits folded to ASCII. Returns 0.0 when nothing numeric is found; never errors.
func ParseMoney(s string) float64 {
	if s == "" {
		return 0
	}
	s = width.Narrow.String(s)
	s = strings.TrimSpace(s)
	s = reCurrencySym.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "")
	for reThousands.MatchString(s) {
		s = reThousands.ReplaceAllString(s, "$1$2")
	}
	m := reFirstNumber.FindString(s)
	if m == "" {
		return 0
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Round4 rounds a quantity or unit price to 4 decimal places.
func Round4(f float64) float64 {
	return decimal.NewFromFloat(f).Round(4).InexactFloat64()
}
