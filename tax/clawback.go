package tax

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
)

// NonNegative returns m, or zero when m is negative.
func NonNegative(m endgame.Money) endgame.Money {
	if m.IsNegative() {
		return endgame.Zero(m.Currency())
	}
	return m
}

// Clawback is the part of income above threshold, times rate, and never
// negative.
func Clawback(income, threshold endgame.Money, rate endgame.Rate) endgame.Money {
	return NonNegative(income.Sub(threshold).TimesRate(rate))
}

// BaseMinusClawback is base reduced by the clawback on income above
// threshold, floored at zero.
func BaseMinusClawback(base, income, threshold endgame.Money, rate endgame.Rate) endgame.Money {
	return NonNegative(base.Sub(Clawback(income, threshold, rate)))
}

// LesserOf returns the smaller of two amounts, negative amounts counting as
// zero.
func LesserOf(a, b endgame.Money) endgame.Money {
	return NonNegative(a).Min(NonNegative(b))
}

// Range is an income range over which an amount is phased out.
type Range struct {
	Min, Max endgame.Money
}

// ParseRange parses "min_max", as in "173205_246752".
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(s, "_")
	if !ok {
		return Range{}, fmt.Errorf("%w: invalid range %q, expecting min_max", endgame.ErrConfig, s)
	}
	var r Range
	var err error
	if r.Min, err = endgame.ParseMoney(lo); err != nil {
		return Range{}, err
	}
	if r.Max, err = endgame.ParseMoney(hi); err != nil {
		return Range{}, err
	}
	if !r.Min.LessThan(r.Max) {
		return Range{}, fmt.Errorf("%w: invalid range %q, min is not below max", endgame.ErrConfig, s)
	}
	return r, nil
}

func (r Range) Width() endgame.Money { return r.Max.Sub(r.Min) }

func (r Range) String() string { return r.Min.Plain() + "_" + r.Max.Plain() }
