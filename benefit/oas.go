package benefit

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/etnz/endgame/tax"
	"github.com/shopspring/decimal"
)

// OASConfig describes an OAS pension.
type OASConfig struct {
	Birth      date.Date
	Start      date.Date     // month of the first payment, the day is ignored
	AtNominal  endgame.Money // monthly amount when started at EarliestAge
	PaymentDay int

	MonthlyReward endgame.Rate // per month of delay
	BoostAge      int          // 75
	Boost         endgame.Rate // increase from BoostAge

	ClawbackThreshold endgame.Money
	ClawbackRate      endgame.Rate

	EarliestAge int // 65
	LatestAge   int // 70

	GIS       *GISTable // optional
	GISExempt endgame.Money
}

// OAS is an OAS pension, with GIS when a table is given.
//
// The clawback is deducted from every payment, based on the previous
// year's net income before adjustments, instead of being spread over the
// two following years.
type OAS struct {
	cfg   OASConfig
	start date.Date
	base  endgame.Money
}

// NewOAS validates the start month.
func NewOAS(cfg OASConfig) (*OAS, error) {
	if err := checkPaymentDay(cfg.PaymentDay); err != nil {
		return nil, err
	}
	start := cfg.Start.StartOfMonth()
	if err := checkWindow("OAS", start, cfg.Birth, cfg.EarliestAge, cfg.LatestAge); err != nil {
		return nil, err
	}
	base := adjusted(cfg.AtNominal, start, cfg.Birth, cfg.EarliestAge, cfg.MonthlyReward, endgame.R(0))
	return &OAS{cfg: cfg, start: start, base: base}, nil
}

func (o *OAS) Start() date.Date { return o.start }

// Schedule returns the payment days.
func (o *OAS) Schedule() schedule.Schedule { return schedule.MonthlyOn(o.cfg.PaymentDay, o.start) }

// Monthly is the monthly pension on day, before clawback.
func (o *OAS) Monthly(day date.Date) endgame.Money {
	if date.Age(o.cfg.Birth, day) >= o.cfg.BoostAge {
		return o.base.Times(decimal.NewFromInt(1).Add(o.cfg.Boost.Decimal()))
	}
	return o.base
}

// Clawback is the monthly recovery tax on the income above the threshold.
func (o *OAS) Clawback(netIncomeBeforeAdjustments endgame.Money) endgame.Money {
	return tax.Clawback(netIncomeBeforeAdjustments, o.cfg.ClawbackThreshold, o.cfg.ClawbackRate).DivByInt(12)
}

// PaymentOn returns the OAS and GIS paid on day, given last year's tax
// summary, and false if nothing is paid yet.
func (o *OAS) PaymentOn(day date.Date, lastYear tax.Summary) (oas, gis endgame.Money, ok bool) {
	zero := endgame.Zero(o.base.Currency())
	if day.Before(o.start) {
		return zero, zero, false
	}
	oas = tax.NonNegative(o.Monthly(day).Sub(o.Clawback(lastYear.NetIncomeBeforeAdjustments)))
	gis = zero
	if o.cfg.GIS != nil {
		gis = o.cfg.GIS.MonthlyAmount(lastYear.NetIncome, lastYear.OAS, lastYear.EmploymentIncome, o.cfg.GISExempt)
	}
	return oas, gis, true
}

func (o *OAS) String() string { return fmt.Sprintf("OAS %s monthly from %s", o.base, o.start.Format("2006-01")) }
