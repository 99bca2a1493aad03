package storefront

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MoneyScale is the number of fractional digits a price keeps. Rounding to
// cents happens only when an amount is displayed.
const MoneyScale = 6

const maxMoneyText = 40

// Money is a non-negative amount in the store's single currency. Sums and
// products are exact; it encodes as a JSON number (9.99, 0.333).
type Money struct {
	d decimal.Decimal
}

// NewMoney clamps negative amounts to zero and drops digits past MoneyScale.
func NewMoney(d decimal.Decimal) Money {
	if d.Sign() <= 0 {
		return Money{}
	}
	return Money{d: d.Round(MoneyScale)}
}

// ParseMoney accepts "9.99", "$9.99", "1,299.00", " 12 ". Anything
// unparseable or negative becomes 0.
func ParseMoney(raw string) Money {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || len(s) > maxMoneyText {
		return Money{}
	}
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Money{}
		}
		return MoneyFromFloat(f)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return NewMoney(d)
}

func MoneyFromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return Money{}
	}
	return NewMoney(decimal.NewFromFloat(f))
}

// MoneyFromCents is shorthand for whole-cent literals.
func MoneyFromCents(c int64) Money {
	return NewMoney(decimal.New(c, -2))
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Sub floors at zero.
func (m Money) Sub(o Money) Money { return NewMoney(m.d.Sub(o.d)) }

func (m Money) Mul(qty int) Money {
	if qty <= 0 {
		return Money{}
	}
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Percent is pct hundredths of m, unrounded.
func (m Money) Percent(pct int) Money {
	if pct <= 0 {
		return Money{}
	}
	return NewMoney(m.d.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)))
}

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// Exact renders every stored digit, e.g. "0.999".
func (m Money) Exact() string { return m.d.String() }

// Decimal renders the amount rounded to cents with no symbol.
func (m Money) Decimal() string { return m.d.StringFixed(2) }

// Format renders the amount for display, e.g. "$19.98".
func (m Money) Format(symbol string) string {
	return symbol + m.Decimal()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings; other shapes coerce to 0.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = Money{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*m = Money{}
			return nil
		}
		*m = ParseMoney(s)
		return nil
	}
	*m = ParseMoney(string(data))
	return nil
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	*m = ParseMoney(value.Value)
	return nil
}
