package sim

import (
	"github.com/etnz/endgame/benefit"
	"github.com/etnz/endgame/date"
)

// CppPayment deposits the monthly CPP pension to the bank, reported as CPP
// income.
type CppPayment struct {
	CPP *benefit.CPP
}

// CppTransaction schedules a CppPayment on the pension's payment days.
func CppTransaction(c *benefit.CPP) Transaction {
	return Transaction{When: c.Schedule(), Action: &CppPayment{CPP: c}}
}

func (p *CppPayment) Execute(day date.Date, sc *Scenario) error {
	amount, ok := p.CPP.PaymentOn(day)
	if !ok {
		return nil
	}
	sc.Bank.Deposit(amount, day)
	sc.Federal.AddCppIncome(amount)
	sc.CashFlow.CPP = sc.CashFlow.CPP.Add(amount)
	logFor(sc, day, p).Infof("CPP %s", amount)
	return nil
}

func (p *CppPayment) String() string { return "CPP payment" }

// OasPayment deposits the monthly OAS pension, and the GIS if any, to the
// bank. The OAS clawback and the GIS both depend on last year's return.
type OasPayment struct {
	OAS *benefit.OAS
}

// OasTransaction schedules an OasPayment on the pension's payment days.
func OasTransaction(o *benefit.OAS) Transaction {
	return Transaction{When: o.Schedule(), Action: &OasPayment{OAS: o}}
}

func (p *OasPayment) Execute(day date.Date, sc *Scenario) error {
	oas, gis, ok := p.OAS.PaymentOn(day, sc.LastYearSummary(day.Year()))
	if !ok {
		return nil
	}
	sc.Bank.Deposit(oas.Add(gis), day)
	sc.Federal.AddOasIncome(oas)
	sc.CashFlow.OAS = sc.CashFlow.OAS.Add(oas)
	if gis.IsPositive() {
		sc.Federal.AddGisIncome(gis)
		sc.CashFlow.GIS = sc.CashFlow.GIS.Add(gis)
	}
	logFor(sc, day, p).WithField("gis", gis.String()).Infof("OAS %s", oas)
	return nil
}

func (p *OasPayment) String() string { return "OAS/GIS payment" }
