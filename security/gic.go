package security

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

// GIC is a non-callable, non-transferable guaranteed investment certificate
// held to maturity, with interest compounded annually and paid at maturity.
//
// A GIC is immutable. It has no identifier, Key serves in lieu of one.
type GIC struct {
	Principal endgame.Money
	SoldBy    string
	Rate      endgame.Rate
	Purchase  date.Date
	Term      int // years, 1..20
}

// NewGIC validates and returns a GIC bought on purchase.
func NewGIC(principal endgame.Money, soldBy string, rate endgame.Rate, purchase date.Date, term int) (GIC, error) {
	g := GIC{Principal: principal, SoldBy: soldBy, Rate: rate, Purchase: purchase, Term: term}
	if principal.IsNegative() {
		return GIC{}, fmt.Errorf("%w: negative principal in %v", endgame.ErrConfig, g)
	}
	if rate.Decimal().IsNegative() {
		return GIC{}, fmt.Errorf("%w: negative interest rate in %v", endgame.ErrConfig, g)
	}
	if term < 1 || term > 20 {
		return GIC{}, fmt.Errorf("%w: term of %v is not in the range 1..20 years", endgame.ErrConfig, g)
	}
	return g, nil
}

// NewGICMaturingOn returns a GIC from its redemption date.
func NewGICMaturingOn(principal endgame.Money, soldBy string, rate endgame.Rate, maturity date.Date, term int) (GIC, error) {
	return NewGIC(principal, soldBy, rate, maturity.AddYears(-term), term)
}

// Maturity returns the redemption date.
func (g GIC) Maturity() date.Date { return g.Purchase.AddYears(g.Term) }

// Key identifies a GIC by all of its data.
func (g GIC) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", g.SoldBy, g.Principal.Plain(), g.Rate.Decimal(), g.Purchase, g.Term)
}

// interestUpTo returns the interest earned after year years, 0..Term.
func (g GIC) interestUpTo(year int) endgame.Money {
	return g.Principal.Times(g.Rate.Factor(year)).Sub(g.Principal)
}

// TotalInterest is the interest paid at maturity.
func (g GIC) TotalInterest() endgame.Money { return g.interestUpTo(g.Term) }

// RedemptionValue is principal plus total interest.
func (g GIC) RedemptionValue() endgame.Money { return g.Principal.Add(g.TotalInterest()) }

// Anniversaries returns the purchase anniversaries, maturity included, on
// which accrued interest is reported.
func (g GIC) Anniversaries() []date.Date {
	res := make([]date.Date, 0, g.Term)
	for yr := 1; yr <= g.Term; yr++ {
		res = append(res, g.Purchase.AddYears(yr))
	}
	return res
}

// AccruedInterestFor returns the interest accrued in the year ending on the
// given anniversary.
func (g GIC) AccruedInterestFor(anniversary date.Date) (endgame.Money, error) {
	for i, a := range g.Anniversaries() {
		if a == anniversary {
			return g.interestUpTo(i + 1).Sub(g.interestUpTo(i)), nil
		}
	}
	return endgame.Money{}, fmt.Errorf("%w: %s is not an anniversary of %v", endgame.ErrInvalid, anniversary, g)
}

// ShortName is used in logs.
func (g GIC) ShortName() string {
	return fmt.Sprintf("%s GIC %s %s", g.SoldBy, g.Rate, g.Maturity())
}

func (g GIC) String() string {
	return fmt.Sprintf("%s %d-year GIC, %s @ %s matures %s, purchased on %s", g.SoldBy, g.Term, g.Principal, g.Rate, g.Maturity(), g.Purchase)
}
