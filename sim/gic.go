package sim

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/etnz/endgame/security"
)

// BuyGic buys a GIC, held to maturity. Without enough cash in the account
// the purchase is skipped.
type BuyGic struct {
	In  Holder
	GIC security.GIC
}

func (b *BuyGic) Execute(day date.Date, sc *Scenario) error {
	a, err := sc.Account(b.In)
	if err != nil {
		return err
	}
	if a.Cash().LessThan(b.GIC.Principal) {
		skip(sc, day, b, "insufficient cash %s", a.Cash())
		return nil
	}
	if err := a.BuyGIC(b.GIC); err != nil {
		return err
	}
	sc.CashFlow.Liquidation = sc.CashFlow.Liquidation.Sub(b.GIC.Principal)
	logFor(sc, day, b).Info(b.String())
	return nil
}

func (b *BuyGic) String() string {
	return fmt.Sprintf("buy %s in %s", b.GIC, strings.ToUpper(string(b.In)))
}

// GicInterestAccrual reports the interest accrued on a GIC anniversary as
// taxable interest. It only applies to a NRA.
type GicInterestAccrual struct {
	In  Holder
	GIC security.GIC
}

func (g *GicInterestAccrual) Execute(day date.Date, sc *Scenario) error {
	if g.In != NRA {
		return nil
	}
	a, err := sc.Account(g.In)
	if err != nil {
		return err
	}
	if !a.HoldsGIC(g.GIC) {
		skip(sc, day, g, "the NRA does not hold the GIC")
		return nil
	}
	interest, err := a.AccrueGICInterest(g.GIC, day)
	if err != nil {
		return err
	}
	logFor(sc, day, g).Infof("accrued interest %s", interest)
	return nil
}

func (g *GicInterestAccrual) String() string {
	return fmt.Sprintf("accrual for %s in %s", g.GIC.ShortName(), strings.ToUpper(string(g.In)))
}

// RedeemGic cashes a GIC in at maturity.
type RedeemGic struct {
	In  Holder
	GIC security.GIC
}

func (r *RedeemGic) Execute(day date.Date, sc *Scenario) error {
	a, err := sc.Account(r.In)
	if err != nil {
		return err
	}
	if !a.HoldsGIC(r.GIC) {
		skip(sc, day, r, "no such GIC in the %s", strings.ToUpper(string(r.In)))
		return nil
	}
	proceeds, err := a.RedeemGIC(r.GIC)
	if err != nil {
		return err
	}
	sc.CashFlow.Liquidation = sc.CashFlow.Liquidation.Add(proceeds)
	sc.CashFlow.Interest = sc.CashFlow.Interest.Add(r.GIC.TotalInterest())
	logFor(sc, day, r).Infof("proceeds %s", proceeds)
	return nil
}

func (r *RedeemGic) String() string {
	return fmt.Sprintf("redeem %s in %s", r.GIC.ShortName(), strings.ToUpper(string(r.In)))
}

// GicTransactions returns the transactions of a GIC's life in an account:
// the purchase when buy is set, the yearly interest accruals from start on
// when held in a NRA, then the redemption.
//
// Accruals come before the redemption, which happens on the last
// anniversary.
func GicTransactions(in Holder, g security.GIC, buy bool, start date.Date) []Transaction {
	var txs []Transaction
	if buy {
		txs = append(txs, Transaction{When: schedule.On(g.Purchase), Action: &BuyGic{In: in, GIC: g}})
	}
	if in == NRA {
		for _, anniversary := range g.Anniversaries() {
			if anniversary.Before(start) {
				continue
			}
			txs = append(txs, Transaction{When: schedule.On(anniversary), Action: &GicInterestAccrual{In: in, GIC: g}})
		}
	}
	return append(txs, Transaction{When: schedule.On(g.Maturity()), Action: &RedeemGic{In: in, GIC: g}})
}

// InitialGicTransactions returns the accruals and redemptions of the GICs
// the investment accounts hold when the simulation starts.
func (sc *Scenario) InitialGicTransactions() []Transaction {
	var txs []Transaction
	for _, h := range []Holder{RIF, LIF, TFSA, NRA} {
		a, err := sc.Account(h)
		if err != nil {
			continue
		}
		for _, g := range a.GICs() {
			txs = append(txs, GicTransactions(h, g, false, sc.Period.From)...)
		}
	}
	return txs
}
