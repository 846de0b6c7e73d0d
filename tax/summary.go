package tax

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
)

// Summary is a snapshot of a completed return.
type Summary struct {
	Year                       int           `json:"year"`
	TaxableIncome              endgame.Money `json:"taxable_income"`
	FederalTax                 endgame.Money `json:"federal_tax"`
	ProvincialTax              endgame.Money `json:"provincial_tax"`
	TaxPayable                 endgame.Money `json:"tax_payable"`
	DividendTaxCredit          endgame.Money `json:"dividend_tax_credit"`
	Installments               endgame.Money `json:"installments"`
	BalanceOwing               endgame.Money `json:"balance_owing"`
	NetIncome                  endgame.Money `json:"net_income"`
	NetIncomeBeforeAdjustments endgame.Money `json:"net_income_before_adjustments"`
	OAS                        endgame.Money `json:"oas"`
	EmploymentIncome           endgame.Money `json:"employment_income"`
	RifLifIncome               endgame.Money `json:"rif_lif_income"`
}

// Add sums every amount. The year of s is kept.
func (s Summary) Add(o Summary) Summary {
	s.TaxableIncome = s.TaxableIncome.Add(o.TaxableIncome)
	s.FederalTax = s.FederalTax.Add(o.FederalTax)
	s.ProvincialTax = s.ProvincialTax.Add(o.ProvincialTax)
	s.TaxPayable = s.TaxPayable.Add(o.TaxPayable)
	s.DividendTaxCredit = s.DividendTaxCredit.Add(o.DividendTaxCredit)
	s.Installments = s.Installments.Add(o.Installments)
	s.BalanceOwing = s.BalanceOwing.Add(o.BalanceOwing)
	s.NetIncome = s.NetIncome.Add(o.NetIncome)
	s.NetIncomeBeforeAdjustments = s.NetIncomeBeforeAdjustments.Add(o.NetIncomeBeforeAdjustments)
	s.OAS = s.OAS.Add(o.OAS)
	s.EmploymentIncome = s.EmploymentIncome.Add(o.EmploymentIncome)
	s.RifLifIncome = s.RifLifIncome.Add(o.RifLifIncome)
	return s
}

// DivByInt divides every amount by n, to average a sum over n years.
func (s Summary) DivByInt(n int) Summary {
	for _, m := range s.amounts() {
		*m = m.DivByInt(n)
	}
	return s
}

func (s *Summary) amounts() []*endgame.Money {
	return []*endgame.Money{
		&s.TaxableIncome, &s.FederalTax, &s.ProvincialTax, &s.TaxPayable, &s.DividendTaxCredit,
		&s.Installments, &s.BalanceOwing, &s.NetIncome, &s.NetIncomeBeforeAdjustments, &s.OAS,
		&s.EmploymentIncome, &s.RifLifIncome,
	}
}

// SumOver sums the summaries of several years.
func SumOver(summaries []Summary) Summary {
	var total Summary
	for _, s := range summaries {
		total = total.Add(s)
	}
	return total
}

// AveragePerYear is SumOver divided by the number of years.
func AveragePerYear(summaries []Summary) Summary {
	if len(summaries) == 0 {
		return Summary{}
	}
	return SumOver(summaries).DivByInt(len(summaries))
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tax return %d\n", s.Year)
	lines := []struct {
		amount endgame.Money
		name   string
	}{
		{s.TaxableIncome, "Taxable income"},
		{s.FederalTax, "Federal tax"},
		{s.ProvincialTax, "Provincial tax"},
		{s.TaxPayable, "Tax payable"},
		{s.DividendTaxCredit, "Dividend tax credits"},
		{s.Installments, "Installments"},
		{s.BalanceOwing, "Balance owing"},
		{s.NetIncome, "Net income"},
		{s.NetIncomeBeforeAdjustments, "Net income before adj"},
		{s.OAS, "OAS income"},
		{s.EmploymentIncome, "Employment income"},
		{s.RifLifIncome, "RIF-LIF withdrawals"},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "%15s %s\n", l.amount, l.name)
	}
	return b.String()
}

// YearZero holds the previous-year amounts needed in the first simulated
// year, when there is no previous return.
type YearZero struct {
	NetIncomeBeforeAdjustments endgame.Money `json:"net_income_before_adjustments"`
	NetIncome                  endgame.Money `json:"net_income"`
	OAS                        endgame.Money `json:"oas"`
	EmploymentIncome           endgame.Money `json:"employment_income"`
}

// Summary returns the summary of the year before year.
func (y YearZero) Summary(year int) Summary {
	z := endgame.Zero(endgame.DefaultCurrency)
	s := Summary{
		Year:                       year - 1,
		NetIncomeBeforeAdjustments: y.NetIncomeBeforeAdjustments,
		NetIncome:                  y.NetIncome,
		OAS:                        y.OAS,
		EmploymentIncome:           y.EmploymentIncome,
	}
	for _, m := range s.amounts() {
		*m = m.Add(z)
	}
	return s
}
