package account

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/shopspring/decimal"
)

// BookValue is the cost basis of a NRA holding, commissions included.
type BookValue struct {
	Symbol string
	Amount endgame.Money
}

// BookValues returns a copy of the NRA book values.
func (a *Account) BookValues() []BookValue {
	if a.nra == nil {
		return nil
	}
	res := make([]BookValue, 0, len(a.nra.bookValues))
	for _, bv := range a.nra.bookValues {
		res = append(res, *bv)
	}
	return res
}

// BookValueFor returns the book value of symbol.
func (a *Account) BookValueFor(symbol string) (endgame.Money, bool) {
	if a.nra == nil {
		return endgame.Money{}, false
	}
	if bv := a.nra.lookUp(symbol); bv != nil {
		return bv.Amount, true
	}
	return endgame.Money{}, false
}

func (t *taxable) lookUp(symbol string) *BookValue {
	for _, bv := range t.bookValues {
		if bv.Symbol == symbol {
			return bv
		}
	}
	return nil
}

func (t *taxable) increase(symbol string, cost endgame.Money) {
	if bv := t.lookUp(symbol); bv != nil {
		bv.Amount = bv.Amount.Add(cost)
		return
	}
	t.bookValues = append(t.bookValues, &BookValue{Symbol: symbol, Amount: cost})
}

// dispose reduces the book value for n shares out of the position, and
// returns the book value consumed.
//
// A full disposal consumes and removes the whole book value. A partial one
// reduces it pro rata and the consumed part is the difference, so rounding
// does not compound across repeated partial sales.
func (t *taxable) dispose(p *Position, n int, symbol string) (endgame.Money, error) {
	bv := t.lookUp(symbol)
	if p == nil || bv == nil {
		return endgame.Money{}, fmt.Errorf("%w: the NRA is missing the position or book value of %s", endgame.ErrInsufficientShares, symbol)
	}
	if n > p.Shares {
		return endgame.Money{}, fmt.Errorf("%w: holding %d %s, cannot dispose of %d", endgame.ErrInsufficientShares, p.Shares, symbol, n)
	}
	if n == p.Shares {
		consumed := bv.Amount
		t.remove(symbol)
		return consumed, nil
	}
	orig := bv.Amount
	remaining := decimal.NewFromInt(int64(p.Shares - n)).DivRound(decimal.NewFromInt(int64(p.Shares)), 16)
	bv.Amount = orig.Times(remaining)
	return orig.Sub(bv.Amount), nil
}

func (t *taxable) remove(symbol string) {
	for i, bv := range t.bookValues {
		if bv.Symbol == symbol {
			t.bookValues = append(t.bookValues[:i], t.bookValues[i+1:]...)
			return
		}
	}
}
