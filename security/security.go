// Package security models the tradeable assets of a simulation: dividend
// paying stocks and guaranteed investment certificates (GIC).
package security

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
)

// Stock is a stock paying an eligible dividend.
type Stock struct {
	symbol   string
	price    endgame.Money
	dividend *Dividend
	prices   date.History[endgame.Money] // the price historical value.
}

// NewStock returns a stock priced at price on day start.
func NewStock(symbol string, price endgame.Money, dividend *Dividend, start date.Date) *Stock {
	s := &Stock{symbol: symbol, price: price, dividend: dividend}
	s.prices.Append(start, price)
	return s
}

func (s *Stock) Symbol() string                      { return s.symbol }
func (s *Stock) Price() endgame.Money                { return s.price }
func (s *Stock) Dividend() *Dividend                 { return s.dividend }
func (s *Stock) History() *date.History[endgame.Money] { return &s.prices }

// MarketValue returns the value of n shares at the current price.
func (s *Stock) MarketValue(n int) endgame.Money { return s.price.TimesInt(n) }

// UpdatePrice sets the current price and records it.
func (s *Stock) UpdatePrice(price endgame.Money, when date.Date) {
	s.price = price
	s.prices.Append(when, price)
}

// Split applies an N-to-1 split to the price, its history and the dividend.
// Positions are the caller's concern.
func (s *Stock) Split(factor int) {
	s.price = s.price.DivByInt(factor)
	s.prices.Map(func(p endgame.Money) endgame.Money { return p.DivByInt(factor) })
	if s.dividend != nil {
		s.dividend.Amount = s.dividend.Amount.DivByInt(factor)
	}
}

func (s *Stock) String() string { return fmt.Sprintf("%s@%s", s.symbol, s.price) }

// Dividend is a per-share dividend growing at a constant yearly rate.
type Dividend struct {
	Amount endgame.Money // per share, per payment, in the first year
	When   schedule.Schedule
	Growth endgame.Rate
}

// PerShare returns the amount paid per share in year, grown from startYear.
func (d *Dividend) PerShare(year, startYear int) endgame.Money {
	n := year - startYear
	if n <= 0 {
		return d.Amount
	}
	return d.Amount.Times(d.Growth.Factor(n))
}
