// Package benefit computes the government entitlements of a retiree: the
// Canada Pension Plan (CPP), Old Age Security (OAS) and the Guaranteed
// Income Supplement (GIS) paid along with OAS.
package benefit

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/shopspring/decimal"
)

// LastPaymentDay is the latest day of the month a benefit can be paid on,
// so that February gets paid too.
const LastPaymentDay = 28

// CPPConfig describes a CPP pension.
type CPPConfig struct {
	Birth      date.Date
	Start      date.Date     // month of the first payment, the day is ignored
	Nominal    endgame.Money // monthly amount when started at NominalAge
	PaymentDay int

	MonthlyReward  endgame.Rate // per month of delay after NominalAge
	MonthlyPenalty endgame.Rate // per month started before NominalAge
	NominalAge     int          // 65
	EarliestAge    int          // 60
	LatestAge      int          // 70

	// Optional survivor benefit added to every payment from SurvivorStart.
	SurvivorAmount endgame.Money
	SurvivorStart  date.Date
}

// CPP is a CPP pension, paid monthly from the start month.
type CPP struct {
	cfg     CPPConfig
	start   date.Date
	monthly endgame.Money
}

// NewCPP validates the start month and computes the monthly amount.
func NewCPP(cfg CPPConfig) (*CPP, error) {
	if err := checkPaymentDay(cfg.PaymentDay); err != nil {
		return nil, err
	}
	start := cfg.Start.StartOfMonth()
	if err := checkWindow("CPP", start, cfg.Birth, cfg.EarliestAge, cfg.LatestAge); err != nil {
		return nil, err
	}
	return &CPP{cfg: cfg, start: start, monthly: adjusted(cfg.Nominal, start, cfg.Birth, cfg.NominalAge, cfg.MonthlyReward, cfg.MonthlyPenalty)}, nil
}

// Start is the first day of the month of the first payment.
func (c *CPP) Start() date.Date { return c.start }

// Monthly is the monthly pension, without survivor benefit.
func (c *CPP) Monthly() endgame.Money { return c.monthly }

// Schedule returns the payment days.
func (c *CPP) Schedule() schedule.Schedule { return schedule.MonthlyOn(c.cfg.PaymentDay, c.start) }

// PaymentOn returns the payment due on day, survivor benefit included,
// and false if nothing is paid yet.
func (c *CPP) PaymentOn(day date.Date) (endgame.Money, bool) {
	if day.Before(c.start) {
		return endgame.Zero(c.monthly.Currency()), false
	}
	amount := c.monthly
	if !c.cfg.SurvivorStart.IsZero() && !day.Before(c.cfg.SurvivorStart) {
		amount = amount.Add(c.cfg.SurvivorAmount)
	}
	return amount, true
}

func (c *CPP) String() string { return fmt.Sprintf("CPP %s monthly from %s", c.monthly, c.start.Format("2006-01")) }

// adjusted applies the reward for a late start, or the penalty for an
// early one, relative to the month after the nominal age.
func adjusted(nominal endgame.Money, start, birth date.Date, nominalAge int, reward, penalty endgame.Rate) endgame.Money {
	n := date.MonthsBetween(date.MonthAfterYouTurn(nominalAge, birth), start)
	switch {
	case n > 0:
		return nominal.Add(nominal.Times(reward.Decimal().Mul(decimal.NewFromInt(int64(n)))))
	case n < 0:
		return nominal.Sub(nominal.Times(penalty.Decimal().Mul(decimal.NewFromInt(int64(-n)))))
	}
	return nominal
}

func checkPaymentDay(day int) error {
	if day < 1 || day > LastPaymentDay {
		return fmt.Errorf("%w: payment day %d must be between 1 and %d", endgame.ErrConfig, day, LastPaymentDay)
	}
	return nil
}

func checkWindow(name string, start, birth date.Date, earliest, latest int) error {
	if first := date.MonthAfterYouTurn(earliest, birth); start.Before(first) {
		return fmt.Errorf("%w: the earliest you can start %s is %s, not %s", endgame.ErrConfig, name, first, start)
	}
	if last := date.MonthAfterYouTurn(latest, birth); start.After(last) {
		return fmt.Errorf("%w: the latest you can start %s is %s, not %s", endgame.ErrConfig, name, last, start)
	}
	return nil
}
