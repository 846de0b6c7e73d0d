package tax

import (
	"errors"
	"testing"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

type fixedLimits struct {
	rifMin, lifMin, lifMax endgame.Money
	lifMaxApplies          bool
}

func (l fixedLimits) RifMinimum(int) (endgame.Money, error) { return l.rifMin, nil }
func (l fixedLimits) LifMinimum(int) (endgame.Money, error) { return l.lifMin, nil }
func (l fixedLimits) LifMaximum(int) (endgame.Money, bool, error) {
	return l.lifMax, l.lifMaxApplies, nil
}

func testConfig(t *testing.T, birth date.Date) FederalConfig {
	t.Helper()
	clawback, err := ParseRange("150000_200000")
	if err != nil {
		t.Fatal(err)
	}
	return FederalConfig{
		Birth:                    birth,
		PersonalAmount:           endgame.CAD(14000),
		PersonalAmountAdditional: endgame.CAD(1500),
		PersonalAmountClawback:   clawback,
		AgeAmount:                endgame.CAD(8000),
		AgeAmountThreshold:       endgame.CAD(40000),
		PensionAmount:            endgame.CAD(2000),
		Brackets:                 testBrackets(t, [2]string{"15%", "50000"}, [2]string{"20.5%", "100000"}, [2]string{"26%", "1000000"}),
		Withholding:              testBrackets(t, [2]string{"10%", "5000"}, [2]string{"20%", "15000"}, [2]string{"30%", "1000000"}),
		RetirementAge:            65,
		CapitalGainFraction:      endgame.R(0.5),
		DividendGrossUp:          endgame.R(0.38),
		DividendCreditNum:        6,
		DividendCreditDenom:      11,
	}
}

func newReturn(t *testing.T, birth date.Date) *FederalReturn {
	t.Helper()
	f, err := NewFederalReturn(2025, testConfig(t, birth), NewCapitalGains())
	if err != nil {
		t.Fatalf("NewFederalReturn() error = %v", err)
	}
	return f
}

var retiree = date.New(1955, time.June, 1)

func TestRifWithholding(t *testing.T) {
	f := newReturn(t, retiree)
	f.SetLimits(fixedLimits{rifMin: endgame.CAD(10000), lifMin: endgame.CAD(0)})

	for _, step := range []struct{ gross, withheld float64 }{
		{8000, 0},
		{5000, 300},
		{4000, 600},
	} {
		got, err := f.AddRifIncome(endgame.CAD(step.gross))
		if err != nil {
			t.Fatalf("AddRifIncome(%v) error = %v", step.gross, err)
		}
		if !got.Equal(endgame.CAD(step.withheld)) {
			t.Errorf("AddRifIncome(%v) = %v, want %v", step.gross, got, step.withheld)
		}
	}
	if got, want := f.Installments(), endgame.CAD(900); !got.Equal(want) {
		t.Errorf("Installments() = %v, want %v", got, want)
	}
	if got, want := f.RifIncome(), endgame.CAD(17000); !got.Equal(want) {
		t.Errorf("RifIncome() = %v, want %v", got, want)
	}
}

func TestWithdrawalLimits(t *testing.T) {
	tests := []struct {
		name    string
		limits  fixedLimits
		rif     float64
		lif     float64
		wantErr bool
	}{
		{"rif below minimum", fixedLimits{rifMin: endgame.CAD(10000), lifMin: endgame.CAD(0)}, 8000, 0, true},
		{"rif at minimum", fixedLimits{rifMin: endgame.CAD(10000), lifMin: endgame.CAD(0)}, 10000, 0, false},
		{"lif below minimum", fixedLimits{rifMin: endgame.CAD(0), lifMin: endgame.CAD(3000)}, 0, 2000, true},
		{"lif above maximum", fixedLimits{rifMin: endgame.CAD(0), lifMin: endgame.CAD(0), lifMax: endgame.CAD(5000), lifMaxApplies: true}, 0, 6000, true},
		{"no lif maximum yet", fixedLimits{rifMin: endgame.CAD(0), lifMin: endgame.CAD(0), lifMax: endgame.CAD(0)}, 0, 6000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReturn(t, retiree)
			f.SetLimits(tt.limits)
			if _, err := f.AddRifIncome(endgame.CAD(tt.rif)); err != nil {
				t.Fatal(err)
			}
			if _, err := f.AddLifIncome(endgame.CAD(tt.lif)); err != nil {
				t.Fatal(err)
			}
			_, err := f.TotalIncome()
			if tt.wantErr != (err != nil) {
				t.Fatalf("TotalIncome() error = %v, want error: %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, endgame.ErrInvalid) {
				t.Errorf("TotalIncome() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFederalReturn(t *testing.T) {
	f := newReturn(t, retiree)
	f.AddCppIncome(endgame.CAD(10000))
	f.AddOasIncome(endgame.CAD(8000))
	f.AddGisIncome(endgame.CAD(1000))
	if _, err := f.AddRifIncome(endgame.CAD(20000)); err != nil {
		t.Fatal(err)
	}
	f.AddNraDividend(endgame.CAD(1000))
	f.AddNraInterest(endgame.CAD(500))
	f.Gains().AddGainOrLoss(2025, endgame.CAD(1000))

	check := func(name string, got endgame.Money, err error, want float64) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s error = %v", name, err)
		}
		if !got.Equal(endgame.CAD(want)) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	total, err := f.TotalIncome()
	check("TotalIncome()", total, err, 40380)
	tax, err := f.FederalTax()
	check("FederalTax()", tax, err, 6057)
	credits, err := f.NonRefundableCredits()
	check("NonRefundableCredits()", credits, err, 3816.45)
	check("DividendTaxCredit()", f.DividendTaxCredit(), nil, 207.27)
	net, err := f.NetFederalTax()
	check("NetFederalTax()", net, err, 2033.28)
	check("Installments()", f.Installments(), nil, 4000)
	owing, err := f.BalanceOwing()
	check("BalanceOwing()", owing, err, -1966.72)

	s, err := f.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !s.BalanceOwing.Equal(owing) || !s.RifLifIncome.Equal(endgame.CAD(20000)) || s.Year != 2025 {
		t.Errorf("Summary() = %v", s)
	}
}

func TestPersonalAmountClawback(t *testing.T) {
	tests := []struct {
		income float64
		want   float64
	}{
		{100000, 2325},
		{175000, 2212.5},
		{250000, 2100},
	}
	for _, tt := range tests {
		f := newReturn(t, retiree)
		f.AddEmploymentIncome(endgame.CAD(tt.income))
		got, err := f.NonRefundableCredits()
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(endgame.CAD(tt.want)) {
			t.Errorf("NonRefundableCredits() with income %v = %v, want %v", tt.income, got, tt.want)
		}
	}
}

func TestAgeAmounts(t *testing.T) {
	young := newReturn(t, date.New(1970, time.January, 1))
	young.AddPensionIncome(endgame.CAD(5000))
	age, err := young.AgeAmountCalc(endgame.CAD(8000), endgame.CAD(40000))
	if err != nil {
		t.Fatal(err)
	}
	if !age.IsZero() {
		t.Errorf("AgeAmountCalc() before 65 = %v, want 0", age)
	}
	if got := young.PensionIncomeAmountCalc(endgame.CAD(2000)); !got.IsZero() {
		t.Errorf("PensionIncomeAmountCalc() before 65 = %v, want 0", got)
	}

	// Born late in December, the age on Dec 31 and the year difference agree.
	f := newReturn(t, date.New(1960, time.December, 31))
	if got, want := f.AgeYearsOnly(), 65; got != want {
		t.Errorf("AgeYearsOnly() = %d, want %d", got, want)
	}
	if got, want := f.AgeOnDec31(), 65; got != want {
		t.Errorf("AgeOnDec31() = %d, want %d", got, want)
	}
}

func TestResetNewYear(t *testing.T) {
	f := newReturn(t, retiree)
	f.AddCppIncome(endgame.CAD(100))
	f.AddGisIncome(endgame.CAD(100))
	f.AddInstallment(endgame.CAD(100))
	if _, err := f.AddLifIncome(endgame.CAD(10000)); err != nil {
		t.Fatal(err)
	}

	f.ResetNewYear(2026)

	if f.Year() != 2026 {
		t.Errorf("Year() = %d, want 2026", f.Year())
	}
	for name, m := range map[string]endgame.Money{
		"cpp":          f.CppIncome(),
		"gis":          f.GisIncome(),
		"lif":          f.LifIncome(),
		"installments": f.Installments(),
	} {
		if !m.IsZero() {
			t.Errorf("%s = %v after reset, want 0", name, m)
		}
	}
	if got, _ := f.AddLifIncome(endgame.CAD(1000)); !got.Equal(endgame.CAD(100)) {
		t.Errorf("AddLifIncome() after reset = %v, want 100", got)
	}
}

type fixedProvincial struct{ tax endgame.Money }

func (p fixedProvincial) NetProvincialTax() (endgame.Money, error) { return p.tax, nil }

func TestTotalPayable(t *testing.T) {
	f := newReturn(t, retiree)
	f.AddEmploymentIncome(endgame.CAD(10000))
	f.SetProvincial(fixedProvincial{endgame.CAD(123)})
	got, err := f.TotalPayable()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(endgame.CAD(123)) {
		t.Errorf("TotalPayable() = %v, want 123", got)
	}
}

func TestSummaryArithmetic(t *testing.T) {
	a := Summary{Year: 2025, OAS: endgame.CAD(100), NetIncome: endgame.CAD(1000)}
	b := Summary{Year: 2026, OAS: endgame.CAD(200), NetIncome: endgame.CAD(3000)}

	total := SumOver([]Summary{a, b})
	if !total.OAS.Equal(endgame.CAD(300)) || !total.NetIncome.Equal(endgame.CAD(4000)) {
		t.Errorf("SumOver() = %+v", total)
	}
	avg := AveragePerYear([]Summary{a, b})
	if !avg.OAS.Equal(endgame.CAD(150)) || !avg.NetIncome.Equal(endgame.CAD(2000)) {
		t.Errorf("AveragePerYear() = %+v", avg)
	}

	y := YearZero{NetIncome: endgame.CAD(50000), OAS: endgame.CAD(8000)}.Summary(2025)
	if y.Year != 2024 || !y.NetIncome.Equal(endgame.CAD(50000)) || !y.EmploymentIncome.IsZero() {
		t.Errorf("YearZero.Summary() = %+v", y)
	}
}
