package endgame

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is a fraction, 0.05 for 5%.
type Rate struct {
	value decimal.Decimal
}

// R returns a rate from a fraction.
func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses "5%", "5.0 %" or "0.05".
func ParseRate(s string) (Rate, error) {
	t := strings.TrimSpace(s)
	percent := strings.HasSuffix(t, "%")
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	d, err := decimal.NewFromString(t)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: invalid rate %q", ErrConfig, s)
	}
	if percent {
		d = d.Shift(-2)
	}
	return Rate{value: d}, nil
}

// MustParseRate is like ParseRate but panics on error.
func MustParseRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) Float() float64           { return r.value.InexactFloat64() }
func (r Rate) IsZero() bool             { return r.value.IsZero() }
func (r Rate) Equal(q Rate) bool        { return r.value.Equal(q.value) }
func (r Rate) Add(q Rate) Rate          { return Rate{value: r.value.Add(q.value)} }
func (r Rate) Neg() Rate                { return Rate{value: r.value.Neg()} }

// Factor returns (1+r)^years.
func (r Rate) Factor(years int) decimal.Decimal {
	return decimal.NewFromInt(1).Add(r.value).Pow(decimal.NewFromInt(int64(years)))
}

// Compound returns (1+r)^years - 1.
func (r Rate) Compound(years int) Rate {
	return Rate{value: r.Factor(years).Sub(decimal.NewFromInt(1))}
}

func (r Rate) String() string {
	return fmt.Sprintf("%.2f%%", r.value.Shift(2).InexactFloat64())
}

func (r Rate) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rate) UnmarshalText(text []byte) error {
	v, err := ParseRate(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
