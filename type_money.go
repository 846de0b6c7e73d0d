package endgame

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of amounts parsed without an explicit one.
const DefaultCurrency = "CAD"

// Money represents a monetary value.
//
// The zero value has no currency and combines with any currency, which lets
// accumulators start from `var total Money`.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a money amount in the given currency.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// CAD returns an amount in the default currency.
func CAD[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return M(value, DefaultCurrency)
}

// Zero returns 0.00 in the given currency.
func Zero(currency string) Money {
	return Money{value: decimal.New(0, -2), cur: currency}
}

// ParseMoney parses amounts like "1234.56", "$1,234.56" or "-12" in the default currency.
func ParseMoney(s string) (Money, error) {
	t := strings.TrimSpace(s)
	t = strings.ReplaceAll(t, ",", "")
	t = strings.ReplaceAll(t, "_", "")
	neg := false
	if strings.HasPrefix(t, "-") {
		neg, t = true, t[1:]
	}
	t = strings.TrimPrefix(t, "$")
	d, err := decimal.NewFromString(t)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid amount %q", ErrConfig, s)
	}
	if neg {
		d = d.Neg()
	}
	return Money{value: d, cur: DefaultCurrency}, nil
}

// MustParseMoney is like ParseMoney but panics on error.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	code := m.cur
	if code == "" {
		code = DefaultCurrency
	}
	return *money.New(0, code).Currency()
}

// fraction is the number of decimal places of the currency.
func (m Money) fraction() int32 { return int32(m.currency().Fraction) }

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.RoundBank(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// Plain returns the amount with the currency digits and no symbol, e.g. "-1234.50".
func (m Money) Plain() string { return m.value.StringFixedBank(m.fraction()) }

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Float() float64                  { return m.value.InexactFloat64() }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Equal(n Money) bool              { cur(m, n); return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool           { cur(m, n); return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { cur(m, n); return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { cur(m, n); return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { cur(m, n); return m.value.GreaterThanOrEqual(n.value) }

// Identical reports whether m and n have the same currency, value and scale:
// 1.5 and 1.50 are Equal but not Identical.
func (m Money) Identical(n Money) bool {
	return m.cur == n.cur && m.value.Exponent() == n.value.Exponent() && m.value.Equal(n.value)
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Times multiplies by factor. An integral factor keeps the scale of m, any
// other factor rounds half to even to the currency digits.
func (m Money) Times(factor decimal.Decimal) Money {
	v := m.value.Mul(factor)
	if !factor.Equal(factor.Truncate(0)) {
		v = v.RoundBank(m.fraction())
	}
	return Money{value: v, cur: m.cur}
}

// TimesInt multiplies by an integer, keeping the scale.
func (m Money) TimesInt(n int) Money { return m.Times(decimal.NewFromInt(int64(n))) }

// TimesFloat multiplies by a float factor.
func (m Money) TimesFloat(f float64) Money { return m.Times(decimal.NewFromFloat(f)) }

// TimesRate multiplies by a rate.
func (m Money) TimesRate(r Rate) Money { return m.Times(r.value) }

// DivByInt divides by n, rounding half to even to the currency digits.
func (m Money) DivByInt(n int) Money {
	v := m.value.DivRound(decimal.NewFromInt(int64(n)), 16).RoundBank(m.fraction())
	return Money{value: v, cur: m.cur}
}

// FlooredDiv returns how many whole units of price fit in m, truncated toward zero.
func (m Money) FlooredDiv(price Money) int {
	cur(m, price)
	return int(m.Float() / price.Float())
}

// Round returns m rounded half to even to the currency digits.
func (m Money) Round() Money { return Money{value: m.value.RoundBank(m.fraction()), cur: m.cur} }

// Max returns the larger of m and n.
func (m Money) Max(n Money) Money {
	if m.LessThan(n) {
		return n
	}
	return m
}

// Min returns the smaller of m and n.
func (m Money) Min(n Money) Money {
	if n.LessThan(m) {
		return n
	}
	return m
}

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic(fmt.Errorf("%w: %s != %s", ErrCurrencyMismatch, A.cur, B.cur))
	}
	return A.cur
}

// MarshalJSON writes the amount as a JSON number rounded to the currency digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Plain()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

func (m Money) MarshalText() ([]byte, error) { return []byte(m.Plain()), nil }

func (m *Money) UnmarshalText(text []byte) error {
	v, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
