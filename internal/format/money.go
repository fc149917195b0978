// Package format renders prices the way the storefront shows them.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when the configured locale does not parse.
const DefaultLocale = "es-AR"

// Money formats amounts with the locale's thousands separator and two decimals.
// The zero value formats like DefaultLocale.
type Money struct {
	tag          language.Tag
	group, point string
}

func NewMoney(locale string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	group, point := separators(message.NewPrinter(tag))
	return Money{tag: tag, group: group, point: point}
}

// separators reads the grouping and decimal marks off a sample rendering,
// e.g. "1.234,50" in es-AR.
func separators(p *message.Printer) (group, point string) {
	sample := []rune(p.Sprintf("%.2f", 1234.5))
	digits := func(rs []rune) string {
		return strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return -1
			}
			return r
		}, string(rs))
	}
	if len(sample) < 4 {
		return ".", ","
	}
	point = digits(sample[len(sample)-3 : len(sample)-2])
	group = digits(sample[:len(sample)-3])
	if point == "" {
		return ".", ","
	}
	return group, point
}

func (m Money) Locale() string {
	if m.tag == language.Und {
		return DefaultLocale
	}
	return m.tag.String()
}

// Format renders d without currency symbol, e.g. 48000 -> "48.000,00" in es-AR.
// Digits come from the exact decimal, never a float.
func (m Money) Format(d decimal.Decimal) string {
	group, point := m.group, m.point
	if point == "" {
		group, point = ".", ","
	}
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(r)
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// Price is Format with a leading "$", for templates.
func (m Money) Price(d decimal.Decimal) string {
	return "$" + m.Format(d)
}
