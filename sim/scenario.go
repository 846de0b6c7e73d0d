// Package sim runs a retirement scenario one day at a time.
//
// A Scenario holds the accounts, the tax returns and the transactions of a
// single simulated life. The Runner steps through every day of the
// scenario's period, executing the transactions that are due, resetting
// the yearly state on January 1 and taking a snapshot of the year on
// December 31. When prices or mortality are random, the Runner repeats the
// whole simulation on freshly built scenarios (Monte Carlo).
package sim

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/security"
	"github.com/etnz/endgame/survival"
	"github.com/etnz/endgame/tax"
	"github.com/etnz/endgame/tax/provincial"
	"github.com/sirupsen/logrus"
)

// Scenario is the state of one iteration of a simulation.
//
// Every account but the bank is optional.
type Scenario struct {
	Description string
	Birth       date.Date
	Sex         survival.Sex
	Period      date.Range // from a January 1 to a December 31

	// Survival is the mortality table drawn against on every December 31
	// when SurvivalTest is set.
	Survival     *survival.Table
	SurvivalTest bool

	Bank *account.Bank
	RIF  *account.Account
	LIF  *account.Account
	TFSA *account.Account
	NRA  *account.Account
	Room *account.TfsaRoom

	Stocks     *security.Securities
	Commission security.Commission
	Prices     security.PricePolicy

	Gains      *tax.CapitalGains
	Federal    *tax.FederalReturn
	Provincial provincial.Return
	YearZero   tax.YearZero

	Transactions []Transaction

	// yearly state, maintained by the Runner.
	CashFlow *CashFlow
	RifJan1  endgame.Money
	LifJan1  endgame.Money
	LastYear *tax.Summary

	Rand    *rand.Rand
	Log     *logrus.Entry
	Metrics *Metrics
}

// Validate checks the consistency of the scenario before it runs.
func (sc *Scenario) Validate() error {
	p := sc.Period
	if !p.From.Before(p.To) {
		return fmt.Errorf("%w: start date %s is not before end date %s", endgame.ErrConfig, p.From, p.To)
	}
	if !p.From.IsStartOfYear() {
		return fmt.Errorf("%w: start date %s is not the first day of a year", endgame.ErrConfig, p.From)
	}
	if !p.To.IsEndOfYear() {
		return fmt.Errorf("%w: end date %s is not the last day of a year", endgame.ErrConfig, p.To)
	}
	if sc.Bank == nil {
		return fmt.Errorf("%w: a scenario needs a bank account", endgame.ErrConfig)
	}
	if sc.Federal == nil {
		return fmt.Errorf("%w: a scenario needs a federal tax return", endgame.ErrConfig)
	}
	if sc.Federal.Year() != p.From.Year() {
		return fmt.Errorf("%w: the tax return is for %d, the simulation starts in %d", endgame.ErrConfig, sc.Federal.Year(), p.From.Year())
	}
	if sc.TFSA != nil && sc.Room == nil {
		return fmt.Errorf("%w: a TFSA needs its contribution room", endgame.ErrConfig)
	}
	if sc.SurvivalTest && sc.Survival == nil {
		return fmt.Errorf("%w: the survival test needs a mortality table", endgame.ErrConfig)
	}
	return nil
}

// init completes the runtime state of a validated scenario.
func (sc *Scenario) init(log *logrus.Entry, rng *rand.Rand, m *Metrics) {
	if sc.Log == nil {
		sc.Log = log
	}
	if sc.Rand == nil {
		sc.Rand = rng
	}
	if sc.Metrics == nil {
		sc.Metrics = m
	}
	if sc.Stocks == nil {
		sc.Stocks = security.New()
	}
	if sc.Commission == nil {
		sc.Commission = security.NoCommission{}
	}
	if sc.Gains == nil {
		sc.Gains = sc.Federal.Gains()
	}
	sc.Bank.SetLogger(sc.Log)
	sc.Federal.SetLimits(sc)
	if sc.Provincial != nil {
		sc.Federal.SetProvincial(sc.Provincial)
	}
	sc.CashFlow = NewCashFlow()
	sc.refreshOpeningValues()
}

// refreshOpeningValues records the RIF and LIF values of January 1.
func (sc *Scenario) refreshOpeningValues() {
	zero := endgame.Zero(endgame.DefaultCurrency)
	sc.RifJan1, sc.LifJan1 = zero, zero
	if sc.RIF != nil {
		sc.RifJan1 = sc.RIF.Value()
	}
	if sc.LIF != nil {
		sc.LifJan1 = sc.LIF.Value()
	}
}

// InvestmentAccounts returns the accounts that exist, in RIF, LIF, TFSA,
// NRA order.
func (sc *Scenario) InvestmentAccounts() []*account.Account {
	var res []*account.Account
	for _, a := range []*account.Account{sc.RIF, sc.LIF, sc.TFSA, sc.NRA} {
		if a != nil {
			res = append(res, a)
		}
	}
	return res
}

// Stock returns the stock of symbol, ignoring case.
func (sc *Scenario) Stock(symbol string) (*security.Stock, error) {
	s, err := sc.Stocks.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", endgame.ErrConfig, err)
	}
	return s, nil
}

// InvestmentsWorth is the market value of the investment accounts.
func (sc *Scenario) InvestmentsWorth() endgame.Money {
	total := endgame.Zero(endgame.DefaultCurrency)
	for _, a := range sc.InvestmentAccounts() {
		total = total.Add(a.Value())
	}
	return total
}

// NetWorth is the market value of every account, the bank included.
func (sc *Scenario) NetWorth() endgame.Money {
	return sc.InvestmentsWorth().Add(sc.Bank.Cash())
}

// Snapshot returns a snapshot of every account, the bank last.
func (sc *Scenario) Snapshot() account.Set {
	var set account.Set
	for _, a := range sc.InvestmentAccounts() {
		set = append(set, a.Snapshot())
	}
	return append(set, sc.Bank.Snapshot())
}

// LastYearSummary is the tax summary of the previous year. In the first
// year it is built from the YearZero values.
func (sc *Scenario) LastYearSummary(year int) tax.Summary {
	if sc.LastYear != nil {
		return *sc.LastYear
	}
	return sc.YearZero.Summary(year)
}

// Age is the owner's age on day.
func (sc *Scenario) Age(day date.Date) int { return date.Age(sc.Birth, day) }

// RifMinimum implements tax.Limits.
func (sc *Scenario) RifMinimum(year int) (endgame.Money, error) {
	if sc.RIF == nil {
		return endgame.Zero(endgame.DefaultCurrency), nil
	}
	return sc.RIF.WithdrawalMin(sc.RifJan1, year)
}

// LifMinimum implements tax.Limits.
func (sc *Scenario) LifMinimum(year int) (endgame.Money, error) {
	if sc.LIF == nil {
		return endgame.Zero(endgame.DefaultCurrency), nil
	}
	return sc.LIF.WithdrawalMin(sc.LifJan1, year)
}

// LifMaximum implements tax.Limits.
func (sc *Scenario) LifMaximum(year int) (endgame.Money, bool, error) {
	if sc.LIF == nil {
		return endgame.Zero(endgame.DefaultCurrency), false, nil
	}
	return sc.LIF.WithdrawalMax(sc.LifJan1, year)
}

// Holder names a place holding cash: the bank or an investment account.
type Holder string

const (
	Bank Holder = "bank"
	RIF  Holder = "rif"
	LIF  Holder = "lif"
	TFSA Holder = "tfsa"
	NRA  Holder = "nra"
)

// ParseHolder parses a holder name, ignoring case.
func ParseHolder(s string) (Holder, error) {
	h := Holder(strings.ToLower(strings.TrimSpace(s)))
	switch h {
	case Bank, RIF, LIF, TFSA, NRA:
		return h, nil
	}
	return "", fmt.Errorf("%w: unknown account %q", endgame.ErrConfig, s)
}

// Account returns the investment account named h.
func (sc *Scenario) Account(h Holder) (*account.Account, error) {
	var a *account.Account
	switch h {
	case RIF:
		a = sc.RIF
	case LIF:
		a = sc.LIF
	case TFSA:
		a = sc.TFSA
	case NRA:
		a = sc.NRA
	default:
		return nil, fmt.Errorf("%w: %q is not an investment account", endgame.ErrConfig, h)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: the scenario has no %s account", endgame.ErrConfig, strings.ToUpper(string(h)))
	}
	return a, nil
}

// Cashable returns the bank or investment account named h.
func (sc *Scenario) Cashable(h Holder) (account.Cashable, error) {
	if h == Bank {
		return sc.Bank, nil
	}
	return sc.Account(h)
}

// StartYear is the first simulated year.
func (sc *Scenario) StartYear() int { return sc.Period.From.Year() }

// Years returns the simulated years.
func (sc *Scenario) Years() []int {
	var ys []int
	for y := sc.Period.From.Year(); y <= sc.Period.To.Year(); y++ {
		ys = append(ys, y)
	}
	return ys
}
