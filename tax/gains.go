package tax

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
)

// Offset limits, in years. A gain can be reduced by losses for 3 years, a
// loss can be carried forward indefinitely.
const (
	GainOffsetYears = 3
	LossOffsetYears = 1000
)

// GainOrLoss is a ledger entry. Amounts are positive for both gains and
// losses.
type GainOrLoss struct {
	Year       int
	Original   endgame.Money
	Offsetable endgame.Money
	limit      int
}

func (e *GainOrLoss) offsetable(year int) bool {
	return e.Offsetable.IsPositive() && year-e.Year < e.limit
}

// offsetBy consumes up to amount and returns what could not be consumed.
func (e *GainOrLoss) offsetBy(amount endgame.Money) endgame.Money {
	if amount.GreaterThan(e.Offsetable) {
		rest := amount.Sub(e.Offsetable)
		e.Offsetable = endgame.Zero(e.Offsetable.Currency())
		return rest
	}
	e.Offsetable = e.Offsetable.Sub(amount)
	return endgame.Zero(amount.Currency())
}

// CapitalGains is the capital gain and loss ledger of a taxpayer, carried
// over the whole simulation.
type CapitalGains struct {
	gains  []*GainOrLoss
	losses []*GainOrLoss
}

func NewCapitalGains() *CapitalGains { return &CapitalGains{} }

// AddGainOrLoss records a gain (positive) or a loss (negative). Zero is
// ignored.
func (c *CapitalGains) AddGainOrLoss(year int, amount endgame.Money) {
	switch {
	case amount.IsPositive():
		c.gains = append(c.gains, &GainOrLoss{Year: year, Original: amount, Offsetable: amount, limit: GainOffsetYears})
	case amount.IsNegative():
		loss := amount.Abs()
		c.losses = append(c.losses, &GainOrLoss{Year: year, Original: loss, Offsetable: loss, limit: LossOffsetYears})
	}
}

// Gains returns a copy of the gain entries.
func (c *CapitalGains) Gains() []GainOrLoss { return copyEntries(c.gains) }

// Losses returns a copy of the loss entries, as positive amounts.
func (c *CapitalGains) Losses() []GainOrLoss { return copyEntries(c.losses) }

func copyEntries(es []*GainOrLoss) []GainOrLoss {
	res := make([]GainOrLoss, 0, len(es))
	for _, e := range es {
		res = append(res, *e)
	}
	return res
}

func offsetables(es []*GainOrLoss, year int) ([]*GainOrLoss, endgame.Money) {
	var res []*GainOrLoss
	total := endgame.Zero(endgame.DefaultCurrency)
	for _, e := range es {
		if e.offsetable(year) {
			res = append(res, e)
			total = total.Add(e.Offsetable)
		}
	}
	return res, total
}

// GainAfterOffsetsApplied offsets the gains still offsetable in year against
// all the losses still available, and returns the gains left.
//
// The side with the larger total absorbs the other: the smaller side is
// zeroed and its total is consumed from the larger side's entries in order.
// Calling it again for the same year returns the same amount.
func (c *CapitalGains) GainAfterOffsetsApplied(year int) endgame.Money {
	gs, gains := offsetables(c.gains, year)
	if !gains.IsPositive() {
		return gains
	}
	ls, losses := offsetables(c.losses, year)

	as, bs, used := gs, ls, losses
	if losses.GreaterThan(gains) {
		as, bs, used = ls, gs, gains
	}
	for _, b := range bs {
		b.Offsetable = endgame.Zero(b.Offsetable.Currency())
	}
	for _, a := range as {
		used = a.offsetBy(used)
		if !used.IsPositive() {
			break
		}
	}
	_, left := offsetables(c.gains, year)
	return left
}

func (c *CapitalGains) String() string {
	var b strings.Builder
	b.WriteString("gains:")
	for _, e := range c.gains {
		fmt.Fprintf(&b, " %d:%s/%s", e.Year, e.Offsetable, e.Original)
	}
	b.WriteString(" losses:")
	for _, e := range c.losses {
		fmt.Fprintf(&b, " %d:%s/%s", e.Year, e.Offsetable, e.Original)
	}
	return b.String()
}
