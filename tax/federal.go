package tax

import (
	"fmt"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/shopspring/decimal"
)

// Limits gives the RIF and LIF withdrawal limits of a year. A missing
// account has zero limits.
type Limits interface {
	RifMinimum(year int) (endgame.Money, error)
	LifMinimum(year int) (endgame.Money, error)
	// LifMaximum reports false when no maximum applies.
	LifMaximum(year int) (endgame.Money, bool, error)
}

// Provincial is the provincial part of the return.
type Provincial interface {
	NetProvincialTax() (endgame.Money, error)
}

// FederalConfig holds the federal amounts and rates of the tax year.
type FederalConfig struct {
	Birth date.Date

	PersonalAmount           endgame.Money
	PersonalAmountAdditional endgame.Money
	PersonalAmountClawback   Range // additional amount phased out over this income range
	AgeAmount                endgame.Money
	AgeAmountThreshold       endgame.Money
	PensionAmount            endgame.Money

	Brackets    *Brackets
	Withholding *Brackets // RIF and LIF withholding above the minimum

	RetirementAge       int          // 65
	CapitalGainFraction endgame.Rate // taxable part of a capital gain
	DividendGrossUp     endgame.Rate // eligible dividends, 38%
	DividendCreditNum   int
	DividendCreditDenom int
}

// Validate checks the configuration is usable.
func (c FederalConfig) Validate() error {
	switch {
	case c.Birth.IsZero():
		return fmt.Errorf("%w: missing date of birth", endgame.ErrConfig)
	case c.Brackets == nil:
		return fmt.Errorf("%w: missing federal tax brackets", endgame.ErrConfig)
	case c.Withholding == nil:
		return fmt.Errorf("%w: missing RIF/LIF withholding brackets", endgame.ErrConfig)
	case c.RetirementAge <= 0:
		return fmt.Errorf("%w: invalid standard retirement age %d", endgame.ErrConfig, c.RetirementAge)
	case c.DividendCreditDenom <= 0:
		return fmt.Errorf("%w: invalid dividend tax credit denominator %d", endgame.ErrConfig, c.DividendCreditDenom)
	}
	return nil
}

// collector holds what is gathered during a year.
type collector struct {
	installments   endgame.Money
	oas            endgame.Money
	gis            endgame.Money // paid with OAS, not taxable
	cpp            endgame.Money
	pension        endgame.Money // other than CPP
	employment     endgame.Money
	rif            endgame.Money
	rifWithholding endgame.Money
	lif            endgame.Money
	lifWithholding endgame.Money
	nraDividends   endgame.Money
	nraInterest    endgame.Money
}

func newCollector() collector {
	z := endgame.Zero(endgame.DefaultCurrency)
	return collector{z, z, z, z, z, z, z, z, z, z, z, z}
}

// FederalReturn is the federal return of the current year.
type FederalReturn struct {
	cfg        FederalConfig
	year       int
	gains      *CapitalGains
	limits     Limits
	provincial Provincial
	coll       collector
}

// NewFederalReturn returns an empty return for year. gains is the ledger
// carried over the years.
func NewFederalReturn(year int, cfg FederalConfig, gains *CapitalGains) (*FederalReturn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gains == nil {
		gains = NewCapitalGains()
	}
	return &FederalReturn{cfg: cfg, year: year, gains: gains, coll: newCollector()}, nil
}

// SetLimits sets where RIF and LIF limits come from.
func (f *FederalReturn) SetLimits(l Limits) { f.limits = l }

// SetProvincial attaches the provincial return, which is itself computed
// from this one.
func (f *FederalReturn) SetProvincial(p Provincial) { f.provincial = p }

func (f *FederalReturn) Year() int                   { return f.year }
func (f *FederalReturn) Birth() date.Date            { return f.cfg.Birth }
func (f *FederalReturn) Config() FederalConfig       { return f.cfg }
func (f *FederalReturn) Gains() *CapitalGains        { return f.gains }
func (f *FederalReturn) RetirementAge() int          { return f.cfg.RetirementAge }
func (f *FederalReturn) LowestRate() endgame.Rate    { return f.cfg.Brackets.LowestRate() }
func (f *FederalReturn) Installments() endgame.Money { return f.coll.installments }

// ResetNewYear clears everything collected and starts year.
func (f *FederalReturn) ResetNewYear(year int) {
	f.year = year
	f.coll = newCollector()
}

// AddInstallment adds to the tax paid during the year. RIF and LIF
// withholding is added by AddRifIncome and AddLifIncome.
func (f *FederalReturn) AddInstallment(amount endgame.Money) {
	f.coll.installments = f.coll.installments.Add(amount)
}

func (f *FederalReturn) AddEmploymentIncome(amount endgame.Money) {
	f.coll.employment = f.coll.employment.Add(amount)
}

// AddOasIncome adds OAS, excluding GIS.
func (f *FederalReturn) AddOasIncome(amount endgame.Money) { f.coll.oas = f.coll.oas.Add(amount) }
func (f *FederalReturn) AddGisIncome(amount endgame.Money) { f.coll.gis = f.coll.gis.Add(amount) }
func (f *FederalReturn) AddCppIncome(amount endgame.Money) { f.coll.cpp = f.coll.cpp.Add(amount) }

// AddPensionIncome adds a superannuation payment, CPP excluded.
func (f *FederalReturn) AddPensionIncome(amount endgame.Money) {
	f.coll.pension = f.coll.pension.Add(amount)
}

func (f *FederalReturn) AddNraDividend(amount endgame.Money) {
	f.coll.nraDividends = f.coll.nraDividends.Add(amount)
}

func (f *FederalReturn) AddNraInterest(amount endgame.Money) {
	f.coll.nraInterest = f.coll.nraInterest.Add(amount)
}

func (f *FederalReturn) EmploymentIncome() endgame.Money { return f.coll.employment }
func (f *FederalReturn) OasIncome() endgame.Money        { return f.coll.oas }
func (f *FederalReturn) GisIncome() endgame.Money        { return f.coll.gis }
func (f *FederalReturn) CppIncome() endgame.Money        { return f.coll.cpp }
func (f *FederalReturn) PensionIncome() endgame.Money    { return f.coll.pension }
func (f *FederalReturn) RifIncome() endgame.Money        { return f.coll.rif }
func (f *FederalReturn) LifIncome() endgame.Money        { return f.coll.lif }
func (f *FederalReturn) NraDividends() endgame.Money     { return f.coll.nraDividends }
func (f *FederalReturn) NraInterest() endgame.Money      { return f.coll.nraInterest }

// AddRifIncome records a RIF withdrawal, cash or in kind, and returns the
// tax withheld on it. Withholding applies to the yearly total above the
// minimum, so only its increase is withheld, and added to installments.
func (f *FederalReturn) AddRifIncome(gross endgame.Money) (endgame.Money, error) {
	minimum, err := f.rifMinimum()
	if err != nil {
		return endgame.Zero(gross.Currency()), err
	}
	f.coll.rif = f.coll.rif.Add(gross)
	return f.withhold(&f.coll.rifWithholding, f.coll.rif.Sub(minimum)), nil
}

// AddLifIncome is AddRifIncome for a LIF.
func (f *FederalReturn) AddLifIncome(gross endgame.Money) (endgame.Money, error) {
	minimum, err := f.lifMinimum()
	if err != nil {
		return endgame.Zero(gross.Currency()), err
	}
	f.coll.lif = f.coll.lif.Add(gross)
	return f.withhold(&f.coll.lifWithholding, f.coll.lif.Sub(minimum)), nil
}

func (f *FederalReturn) withhold(withheld *endgame.Money, aboveMin endgame.Money) endgame.Money {
	tax := f.cfg.Withholding.TaxFor(aboveMin)
	increase := tax.Sub(*withheld)
	*withheld = tax
	f.AddInstallment(increase)
	return increase
}

func (f *FederalReturn) rifMinimum() (endgame.Money, error) {
	if f.limits == nil {
		return endgame.Zero(endgame.DefaultCurrency), nil
	}
	return f.limits.RifMinimum(f.year)
}

func (f *FederalReturn) lifMinimum() (endgame.Money, error) {
	if f.limits == nil {
		return endgame.Zero(endgame.DefaultCurrency), nil
	}
	return f.limits.LifMinimum(f.year)
}

// CheckWithdrawals verifies the RIF and LIF income of the year against
// their limits.
func (f *FederalReturn) CheckWithdrawals() error {
	if f.limits == nil {
		return nil
	}
	rifMin, err := f.limits.RifMinimum(f.year)
	if err != nil {
		return err
	}
	if f.coll.rif.LessThan(rifMin) {
		return fmt.Errorf("%w: RIF income %s is less than the minimum %s", endgame.ErrWithdrawalLimit, f.coll.rif, rifMin)
	}
	lifMin, err := f.limits.LifMinimum(f.year)
	if err != nil {
		return err
	}
	if f.coll.lif.LessThan(lifMin) {
		return fmt.Errorf("%w: LIF income %s is less than the minimum %s", endgame.ErrWithdrawalLimit, f.coll.lif, lifMin)
	}
	lifMax, applies, err := f.limits.LifMaximum(f.year)
	if err != nil {
		return err
	}
	if applies && f.coll.lif.GreaterThan(lifMax) {
		return fmt.Errorf("%w: LIF income %s is greater than the maximum %s", endgame.ErrWithdrawalLimit, f.coll.lif, lifMax)
	}
	return nil
}

// DividendGrossUp is the grossed-up amount of the eligible dividends.
func (f *FederalReturn) DividendGrossUp() endgame.Money {
	factor := decimal.NewFromInt(1).Add(f.cfg.DividendGrossUp.Decimal())
	return f.coll.nraDividends.Times(factor)
}

// TaxableCapitalGain is the taxable part of the gains left after offsets.
func (f *FederalReturn) TaxableCapitalGain() endgame.Money {
	return f.gains.GainAfterOffsetsApplied(f.year).TimesRate(f.cfg.CapitalGainFraction)
}

// TotalIncome is line 15000. It fails when RIF or LIF withdrawals broke
// their limits. GIS is not taxable.
func (f *FederalReturn) TotalIncome() (endgame.Money, error) {
	if err := f.CheckWithdrawals(); err != nil {
		return endgame.Zero(endgame.DefaultCurrency), err
	}
	c := f.coll
	total := c.employment.Add(c.oas).Add(c.cpp).Add(c.pension).Add(c.rif).Add(c.lif)
	total = total.Add(f.DividendGrossUp()).Add(c.nraInterest).Add(f.TaxableCapitalGain())
	return total, nil
}

// NetIncomeBeforeAdjustments is line 23400, the basis of the OAS clawback.
func (f *FederalReturn) NetIncomeBeforeAdjustments() (endgame.Money, error) { return f.TotalIncome() }

// NetIncome is line 23600.
func (f *FederalReturn) NetIncome() (endgame.Money, error) { return f.TotalIncome() }

// TaxableIncome is line 26000.
func (f *FederalReturn) TaxableIncome() (endgame.Money, error) { return f.NetIncome() }

// FederalTax is the bracket tax on taxable income.
func (f *FederalReturn) FederalTax() (endgame.Money, error) {
	taxable, err := f.TaxableIncome()
	if err != nil {
		return taxable, err
	}
	return f.cfg.Brackets.TaxFor(taxable), nil
}

// NonRefundableCredits is line 35000.
func (f *FederalReturn) NonRefundableCredits() (endgame.Money, error) {
	personal, err := f.personalAmount()
	if err != nil {
		return personal, err
	}
	age, err := f.AgeAmountCalc(f.cfg.AgeAmount, f.cfg.AgeAmountThreshold)
	if err != nil {
		return age, err
	}
	pension := f.PensionIncomeAmountCalc(f.cfg.PensionAmount)
	return personal.Add(age).Add(pension).TimesRate(f.LowestRate()), nil
}

// personalAmount is line 30000. The additional amount decreases linearly
// over the clawback range.
func (f *FederalReturn) personalAmount() (endgame.Money, error) {
	income, err := f.NetIncome()
	if err != nil {
		return income, err
	}
	r := f.cfg.PersonalAmountClawback
	switch {
	case income.LessThan(r.Min):
		return f.cfg.PersonalAmount.Add(f.cfg.PersonalAmountAdditional), nil
	case income.LessThan(r.Max):
		frac := r.Max.Sub(income).Decimal().DivRound(r.Width().Decimal(), 16)
		return f.cfg.PersonalAmount.Add(f.cfg.PersonalAmountAdditional.Times(frac)), nil
	default:
		return f.cfg.PersonalAmount, nil
	}
}

// AgeAmountCalc is the age amount clawed back above threshold, from the
// year the taxpayer reaches the standard retirement age. Provincial returns
// use it with their own amounts.
func (f *FederalReturn) AgeAmountCalc(amount, threshold endgame.Money) (endgame.Money, error) {
	if f.AgeYearsOnly() < f.cfg.RetirementAge {
		return endgame.Zero(amount.Currency()), nil
	}
	income, err := f.NetIncome()
	if err != nil {
		return income, err
	}
	return BaseMinusClawback(amount, income, threshold, f.LowestRate()), nil
}

// PensionIncomeAmountCalc is the pension amount capped at ceiling, from age 65
// on Dec 31. CPP does not count.
func (f *FederalReturn) PensionIncomeAmountCalc(ceiling endgame.Money) endgame.Money {
	if f.AgeOnDec31() < f.cfg.RetirementAge {
		return endgame.Zero(ceiling.Currency())
	}
	return LesserOf(f.coll.pension.Add(f.coll.rif).Add(f.coll.lif), ceiling)
}

// DividendTaxCredit is line 40425.
func (f *FederalReturn) DividendTaxCredit() endgame.Money {
	return f.DividendGrossUp().Sub(f.coll.nraDividends).TimesInt(f.cfg.DividendCreditNum).DivByInt(f.cfg.DividendCreditDenom)
}

// NetFederalTax is line 42000, never negative.
func (f *FederalReturn) NetFederalTax() (endgame.Money, error) {
	tax, err := f.FederalTax()
	if err != nil {
		return tax, err
	}
	credits, err := f.NonRefundableCredits()
	if err != nil {
		return credits, err
	}
	return NonNegative(tax.Sub(credits).Sub(f.DividendTaxCredit())), nil
}

// NetProvincialTax is line 42800, zero without a provincial return.
func (f *FederalReturn) NetProvincialTax() (endgame.Money, error) {
	if f.provincial == nil {
		return endgame.Zero(endgame.DefaultCurrency), nil
	}
	return f.provincial.NetProvincialTax()
}

// TotalPayable is line 43500.
func (f *FederalReturn) TotalPayable() (endgame.Money, error) {
	fed, err := f.NetFederalTax()
	if err != nil {
		return fed, err
	}
	prov, err := f.NetProvincialTax()
	if err != nil {
		return prov, err
	}
	return fed.Add(prov), nil
}

// BalanceOwing is line 48500. A negative balance is a refund.
func (f *FederalReturn) BalanceOwing() (endgame.Money, error) {
	total, err := f.TotalPayable()
	if err != nil {
		return total, err
	}
	return total.Sub(f.coll.installments), nil
}

// AgeYearsOnly is the tax year minus the birth year, as in "born in 1955
// or earlier".
func (f *FederalReturn) AgeYearsOnly() int { return date.YearsOnly(f.cfg.Birth, f.year) }

// AgeOnDec31 is the age at the end of the tax year.
func (f *FederalReturn) AgeOnDec31() int {
	return date.Age(f.cfg.Birth, date.New(f.year, time.December, 31))
}

// Summary returns a snapshot of the return.
func (f *FederalReturn) Summary() (Summary, error) {
	s := Summary{
		Year:              f.year,
		DividendTaxCredit: f.DividendTaxCredit(),
		Installments:      f.coll.installments,
		OAS:               f.coll.oas,
		EmploymentIncome:  f.coll.employment,
		RifLifIncome:      f.coll.rif.Add(f.coll.lif),
	}
	var err error
	if s.TaxableIncome, err = f.TaxableIncome(); err != nil {
		return s, err
	}
	s.NetIncome, s.NetIncomeBeforeAdjustments = s.TaxableIncome, s.TaxableIncome
	if s.FederalTax, err = f.NetFederalTax(); err != nil {
		return s, err
	}
	if s.ProvincialTax, err = f.NetProvincialTax(); err != nil {
		return s, err
	}
	s.TaxPayable = s.FederalTax.Add(s.ProvincialTax)
	s.BalanceOwing = s.TaxPayable.Sub(s.Installments)
	return s, nil
}

func (f *FederalReturn) String() string {
	return fmt.Sprintf("federal return %d: installments:%s employment:%s oas:%s gis:%s cpp:%s pension:%s rif:%s lif:%s dividends:%s interest:%s",
		f.year, f.coll.installments, f.coll.employment, f.coll.oas, f.coll.gis, f.coll.cpp, f.coll.pension,
		f.coll.rif, f.coll.lif, f.coll.nraDividends, f.coll.nraInterest)
}
