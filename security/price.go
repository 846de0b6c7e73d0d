package security

import (
	"fmt"
	"math/rand/v2"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/shopspring/decimal"
)

// PricePolicy yields the year-over-year growth applied to every stock.
//
// Stochastic policies draw from the *rand.Rand they were built with, which
// is owned by a single simulation iteration.
type PricePolicy interface {
	Growth(when date.Date) endgame.Rate
	String() string
}

// UpdatePrice grows the stock price by the policy's growth and records it.
// It returns the new price.
func UpdatePrice(p PricePolicy, s *Stock, when date.Date) endgame.Money {
	factor := decimal.NewFromInt(1).Add(p.Growth(when).Decimal())
	price := s.Price().Times(factor)
	s.UpdatePrice(price, when)
	return price
}

// FixedGrowth is a constant yearly growth, the same for all stocks.
type FixedGrowth struct{ Rate endgame.Rate }

func (f FixedGrowth) Growth(date.Date) endgame.Rate { return f.Rate }
func (f FixedGrowth) String() string               { return fmt.Sprintf("fixed growth %s", f.Rate) }

// RangedGrowth draws the growth uniformly in [Low, High).
type RangedGrowth struct {
	Low, High endgame.Rate
	Rand      *rand.Rand
}

func (r RangedGrowth) Growth(date.Date) endgame.Rate {
	lo, hi := r.Low.Float(), r.High.Float()
	return endgame.R(lo + r.Rand.Float64()*(hi-lo))
}

func (r RangedGrowth) String() string {
	return fmt.Sprintf("growth in range %s..%s", r.Low, r.High)
}

// GaussianGrowth draws the growth from a normal distribution.
type GaussianGrowth struct {
	Mean, StdDev endgame.Rate
	Rand         *rand.Rand
}

func (g GaussianGrowth) Growth(date.Date) endgame.Rate {
	return endgame.R(g.Mean.Float() + g.Rand.NormFloat64()*g.StdDev.Float())
}

func (g GaussianGrowth) String() string {
	return fmt.Sprintf("gaussian growth mean %s std dev %s", g.Mean, g.StdDev)
}

// ExplicitGrowth cycles through a list of yearly rates, starting with the
// first year it is asked for.
type ExplicitGrowth struct {
	Rates     []endgame.Rate
	firstYear int
	started   bool
}

// NewExplicitGrowth needs at least two rates.
func NewExplicitGrowth(rates ...endgame.Rate) (*ExplicitGrowth, error) {
	if len(rates) < 2 {
		return nil, fmt.Errorf("%w: an explicit growth list needs at least two rates, got %d", endgame.ErrConfig, len(rates))
	}
	return &ExplicitGrowth{Rates: rates}, nil
}

func (e *ExplicitGrowth) Growth(when date.Date) endgame.Rate {
	if !e.started {
		e.firstYear, e.started = when.Year(), true
	}
	return e.Rates[(when.Year()-e.firstYear)%len(e.Rates)]
}

func (e *ExplicitGrowth) String() string { return fmt.Sprintf("explicit growth %v", e.Rates) }
