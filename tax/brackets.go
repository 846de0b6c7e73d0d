// Package tax computes the yearly federal income tax return of a retiree.
//
// The return is both a configuration (brackets, credit amounts) and a
// collector: account operations and entitlement payments add income to it
// during the year, and the derived values (taxable income, credits, balance
// owing) are computed on demand from what was collected.
package tax

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
)

// Bracket is one row of a progressive tax table: Rate applies to income up
// to Max, above the previous row's Max.
type Bracket struct {
	Rate endgame.Rate
	Max  endgame.Money

	base    endgame.Money // tax on income up to prevMax
	prevMax endgame.Money
}

// ParseBracket parses a row like ("15.0%", "57375").
func ParseBracket(rate, max string) (Bracket, error) {
	r, err := endgame.ParseRate(rate)
	if err != nil {
		return Bracket{}, err
	}
	m, err := endgame.ParseMoney(max)
	if err != nil {
		return Bracket{}, err
	}
	return Bracket{Rate: r, Max: m}, nil
}

// Brackets is a progressive tax table.
type Brackets struct {
	rows []Bracket
}

// NewBrackets returns a table from rows given in increasing order of Max.
func NewBrackets(rows ...Bracket) (*Brackets, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty tax brackets", endgame.ErrConfig)
	}
	b := &Brackets{rows: make([]Bracket, len(rows))}
	var base, prevMax endgame.Money
	for i, row := range rows {
		if !row.Max.GreaterThan(prevMax) {
			return nil, fmt.Errorf("%w: bracket %d maximum %s is not above %s", endgame.ErrConfig, i+1, row.Max, prevMax)
		}
		row.base = base.Add(endgame.Zero(row.Max.Currency()))
		row.prevMax = prevMax.Add(endgame.Zero(row.Max.Currency()))
		b.rows[i] = row
		base = base.Add(row.Max.Sub(prevMax).TimesRate(row.Rate))
		prevMax = row.Max
	}
	return b, nil
}

// MustNewBrackets is like NewBrackets but panics on error.
func MustNewBrackets(rows ...Bracket) *Brackets {
	b, err := NewBrackets(rows...)
	if err != nil {
		panic(err)
	}
	return b
}

// TaxFor returns the tax on income. Income above the last row's Max is taxed
// at the last rate.
func (b *Brackets) TaxFor(income endgame.Money) endgame.Money {
	if !income.IsPositive() {
		return endgame.Zero(income.Currency())
	}
	row := b.rows[len(b.rows)-1]
	for _, r := range b.rows {
		if income.LessThanOrEqual(r.Max) {
			row = r
			break
		}
	}
	return row.base.Add(income.Sub(row.prevMax).TimesRate(row.Rate))
}

// LowestRate is the rate of the first row, used for non-refundable credits.
func (b *Brackets) LowestRate() endgame.Rate { return b.rows[0].Rate }

// Rows returns the table rows.
func (b *Brackets) Rows() []Bracket { return append([]Bracket(nil), b.rows...) }

func (b *Brackets) String() string {
	var s strings.Builder
	for i, r := range b.rows {
		if i > 0 {
			s.WriteString(", ")
		}
		fmt.Fprintf(&s, "%s up to %s", r.Rate, r.Max)
	}
	return s.String()
}
