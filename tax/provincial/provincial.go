// Package provincial computes the provincial or territorial part of the
// income tax return.
//
// Returns share a generic computation, and most jurisdictions add their own
// reductions or credits to it. Every return reads its income from the
// federal return.
package provincial

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/tax"
)

// Federal is what a provincial return reads from the federal return.
type Federal interface {
	TaxableIncome() (endgame.Money, error)
	NetIncome() (endgame.Money, error)
	AgeAmountCalc(amount, threshold endgame.Money) (endgame.Money, error)
	PensionIncomeAmountCalc(ceiling endgame.Money) endgame.Money
	DividendGrossUp() endgame.Money
	RifIncome() endgame.Money
	AgeYearsOnly() int
	RetirementAge() int
}

// Return is a provincial tax return.
type Return interface {
	NetProvincialTax() (endgame.Money, error)
	Jurisdiction() string
}

// New returns the return of jurisdiction, a two letter code.
func New(jurisdiction string, f Fields, fed Federal) (Return, error) {
	jurisdiction = strings.ToUpper(jurisdiction)
	if err := f.Validate(jurisdiction); err != nil {
		return nil, err
	}
	g := generic{jurisdiction: jurisdiction, f: f, fed: fed}
	switch jurisdiction {
	case "NB", "BC", "NL", "PE":
		return &lowIncomeReturn{generic: g}, nil
	case "NS":
		return &nsReturn{generic: g}, nil
	case "ON":
		return &onReturn{generic: g}, nil
	case "QC":
		return &qcReturn{generic: g}, nil
	}
	return &g, nil
}

// generic is the return of MB, SK, AB and the territories.
type generic struct {
	jurisdiction string
	f            Fields
	fed          Federal
}

func (g *generic) Jurisdiction() string { return g.jurisdiction }

func (g *generic) NetProvincialTax() (endgame.Money, error) {
	age, err := g.fed.AgeAmountCalc(money(g.f.AgeAmount), money(g.f.AgeAmountThreshold))
	if err != nil {
		return age, err
	}
	return g.net(money(g.f.PersonalAmount), age)
}

// net is the bracket tax minus the non-refundable credits and the dividend
// tax credit, floored at zero.
func (g *generic) net(personal, age endgame.Money) (endgame.Money, error) {
	taxable, err := g.fed.TaxableIncome()
	if err != nil {
		return taxable, err
	}
	pension := g.fed.PensionIncomeAmountCalc(money(g.f.PensionIncomeMax))
	credits := personal.Add(age).Add(pension).TimesRate(g.f.Brackets.LowestRate())
	result := g.f.Brackets.TaxFor(taxable).Sub(credits).Sub(g.dividendTaxCredit())
	return tax.NonNegative(result), nil
}

func (g *generic) dividendTaxCredit() endgame.Money {
	return g.fed.DividendGrossUp().TimesRate(rate(g.f.DividendMultiplier))
}

// lowIncomeReduction is clawed back above a net income threshold.
func (g *generic) lowIncomeReduction(basic endgame.Money) (endgame.Money, error) {
	income, err := g.fed.NetIncome()
	if err != nil {
		return income, err
	}
	return tax.BaseMinusClawback(basic, income, money(g.f.LowIncomeThreshold), rate(g.f.LowIncomeRate)), nil
}

func (g *generic) String() string { return fmt.Sprintf("%s provincial return", g.jurisdiction) }

// lowIncomeReturn is the return of NB, BC, NL and PE: the generic return
// minus a low-income tax reduction. PE adds an age supplement to the basic
// reduction.
type lowIncomeReturn struct{ generic }

func (r *lowIncomeReturn) NetProvincialTax() (endgame.Money, error) {
	net, err := r.generic.NetProvincialTax()
	if err != nil {
		return net, err
	}
	basic := money(r.f.LowIncomeBasic)
	if r.f.LowIncomeAge != nil && r.fed.AgeYearsOnly() >= r.fed.RetirementAge() {
		basic = basic.Add(*r.f.LowIncomeAge)
	}
	reduction, err := r.lowIncomeReduction(basic)
	if err != nil {
		return reduction, err
	}
	return tax.NonNegative(net.Sub(reduction)), nil
}

// nsReturn is the Nova Scotia return, with supplements to the personal and
// age amounts, a low-income reduction and an age tax credit.
type nsReturn struct{ generic }

func (r *nsReturn) NetProvincialTax() (endgame.Money, error) {
	taxable, err := r.fed.TaxableIncome()
	if err != nil {
		return taxable, err
	}
	personal := money(r.f.PersonalAmount).Add(tax.BaseMinusClawback(
		money(r.f.PersonalAmountSupplement), taxable, money(r.f.PersonalAmountThreshold), rate(r.f.PersonalAmountRate)))
	age, err := r.fed.AgeAmountCalc(money(r.f.AgeAmount), money(r.f.AgeAmountThreshold))
	if err != nil {
		return age, err
	}
	age = age.Add(tax.BaseMinusClawback(
		money(r.f.AgeAmountSupplement), taxable, money(r.f.AgeAmountSupplementThreshold), rate(r.f.AgeAmountSupplementRate)))

	net, err := r.net(personal, age)
	if err != nil {
		return net, err
	}
	reduction, err := r.lowIncomeReduction(money(r.f.LowIncomeBasic))
	if err != nil {
		return reduction, err
	}
	credit := endgame.Zero(net.Currency())
	if r.fed.AgeYearsOnly() >= r.fed.RetirementAge() && taxable.LessThan(money(r.f.AgeTaxCreditThreshold)) {
		credit = money(r.f.AgeTaxCredit)
	}
	return tax.NonNegative(net.Sub(reduction).Sub(credit)), nil
}

// onReturn is the Ontario return: surtax on two thresholds, a low-income
// reduction, and the health premium.
type onReturn struct{ generic }

func (r *onReturn) NetProvincialTax() (endgame.Money, error) {
	line58, err := r.generic.NetProvincialTax()
	if err != nil {
		return line58, err
	}
	surtax := tax.Clawback(line58, money(r.f.SurtaxThreshold1), rate(r.f.SurtaxRate1)).
		Add(tax.Clawback(line58, money(r.f.SurtaxThreshold2), rate(r.f.SurtaxRate2)))
	line78 := tax.NonNegative(line58.Add(surtax).Sub(money(r.f.LowIncomeBasic)))

	taxable, err := r.fed.TaxableIncome()
	if err != nil {
		return taxable, err
	}
	return line78.Add(r.f.HealthPremium.TaxFor(taxable)), nil
}

// qcReturn is the Quebec return. Its credits come from schedule B, and the
// dividend tax credit applies to the whole grossed-up amount.
type qcReturn struct{ generic }

func (r *qcReturn) NetProvincialTax() (endgame.Money, error) {
	taxable, err := r.fed.TaxableIncome()
	if err != nil {
		return taxable, err
	}
	scheduleB := money(r.f.LiveAloneAmount)
	if r.fed.AgeYearsOnly() >= r.fed.RetirementAge() {
		scheduleB = scheduleB.Add(money(r.f.AgeAmount))
	}
	scheduleB = scheduleB.Add(tax.LesserOf(r.fed.RifIncome().TimesRate(rate(r.f.PensionIncomeRate)), money(r.f.PensionIncomeMax)))
	scheduleB = scheduleB.Sub(tax.Clawback(taxable, money(r.f.ScheduleBThreshold), rate(r.f.ScheduleBRate)))
	scheduleB = tax.NonNegative(scheduleB)

	credits := money(r.f.PersonalAmount).Add(scheduleB).TimesRate(r.f.Brackets.LowestRate())
	afterCredits := tax.NonNegative(r.f.Brackets.TaxFor(taxable).Sub(credits))
	return tax.NonNegative(afterCredits.Sub(r.dividendTaxCredit())), nil
}
