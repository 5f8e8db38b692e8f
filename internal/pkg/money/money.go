package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Places is the number of fractional digits every stored amount is rounded to.
const Places int32 = 2

var hundred = decimal.NewFromInt(100)

func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Div returns a / b, or zero when b is zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Round rounds x to two fractional digits, half away from zero.
func Round(x decimal.Decimal) decimal.Decimal {
	return x.Round(Places)
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = Add(total, a)
	}
	return total
}

// ParseAmount parses user input such as " 1,250.50 " or "$300".
// Empty or malformed input yields zero.
func ParseAmount(input string) decimal.Decimal {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percentage returns round((to - from) / from * 100), or zero when from is zero.
func Percentage(from, to decimal.Decimal) decimal.Decimal {
	return Round(Mul(Div(Sub(to, from), from), hundred))
}

// Format renders x rounded to two places with thousands separators, e.g. "1,250.50".
func Format(x decimal.Decimal) string {
	s := Round(x).StringFixed(Places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + s
	}
	return sign + message.NewPrinter(language.English).Sprintf("%d", n) + "." + frac
}

// Amount is a user-entered amount. It decodes from a JSON number or string
// and is parsed with ParseAmount, so malformed input becomes zero.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*a = Amount(s)
	return nil
}

func (a Amount) Decimal() decimal.Decimal {
	return ParseAmount(string(a))
}
