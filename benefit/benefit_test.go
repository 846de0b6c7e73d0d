package benefit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/tax"
)

var birth = date.New(1960, time.March, 15)

func cppConfig(start date.Date) CPPConfig {
	return CPPConfig{
		Birth:          birth,
		Start:          start,
		Nominal:        endgame.CAD(1000),
		PaymentDay:     28,
		MonthlyReward:  endgame.MustParseRate("0.7%"),
		MonthlyPenalty: endgame.MustParseRate("0.6%"),
		NominalAge:     65,
		EarliestAge:    60,
		LatestAge:      70,
	}
}

func TestCPPMonthly(t *testing.T) {
	tests := []struct {
		name  string
		start date.Date
		want  float64
	}{
		{"nominal", date.New(2025, time.April, 1), 1000},
		{"one year late", date.New(2026, time.April, 10), 1084},
		{"one year early", date.New(2024, time.April, 1), 928},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCPP(cppConfig(tt.start))
			if err != nil {
				t.Fatalf("NewCPP() error = %v", err)
			}
			if got := c.Monthly(); !got.Equal(endgame.CAD(tt.want)) {
				t.Errorf("Monthly() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCPPValidation(t *testing.T) {
	tooEarly := cppConfig(date.New(2020, time.March, 1))
	tooLate := cppConfig(date.New(2030, time.May, 1))
	badDay := cppConfig(date.New(2025, time.April, 1))
	badDay.PaymentDay = 29
	for name, cfg := range map[string]CPPConfig{"too early": tooEarly, "too late": tooLate, "day 29": badDay} {
		if _, err := NewCPP(cfg); !errors.Is(err, endgame.ErrConfig) {
			t.Errorf("NewCPP(%s) error = %v, want ErrConfig", name, err)
		}
	}
}

func TestCPPPayment(t *testing.T) {
	cfg := cppConfig(date.New(2025, time.April, 1))
	cfg.SurvivorAmount = endgame.CAD(200)
	cfg.SurvivorStart = date.New(2027, time.January, 1)
	c, err := NewCPP(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.PaymentOn(date.New(2025, time.March, 28)); ok {
		t.Error("PaymentOn() before the start month reports a payment")
	}
	if got, ok := c.PaymentOn(date.New(2025, time.April, 28)); !ok || !got.Equal(endgame.CAD(1000)) {
		t.Errorf("PaymentOn(2025-04-28) = %v, %v", got, ok)
	}
	if got, _ := c.PaymentOn(date.New(2027, time.January, 28)); !got.Equal(endgame.CAD(1200)) {
		t.Errorf("PaymentOn() with survivor benefit = %v, want 1200", got)
	}
	if !c.Schedule().Matches(date.New(2025, time.May, 28)) || c.Schedule().Matches(date.New(2025, time.March, 28)) {
		t.Errorf("Schedule() = %v", c.Schedule())
	}
}

func oasConfig(start date.Date) OASConfig {
	return OASConfig{
		Birth:             birth,
		Start:             start,
		AtNominal:         endgame.CAD(700),
		PaymentDay:        28,
		MonthlyReward:     endgame.MustParseRate("0.6%"),
		BoostAge:          75,
		Boost:             endgame.MustParseRate("10%"),
		ClawbackThreshold: endgame.CAD(90000),
		ClawbackRate:      endgame.MustParseRate("15%"),
		EarliestAge:       65,
		LatestAge:         70,
	}
}

func TestOAS(t *testing.T) {
	late, err := NewOAS(oasConfig(date.New(2026, time.April, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := late.Monthly(date.New(2026, time.April, 28)), endgame.CAD(750.40); !got.Equal(want) {
		t.Errorf("Monthly() = %v, want %v", got, want)
	}

	o, err := NewOAS(oasConfig(date.New(2025, time.April, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := o.Monthly(date.New(2035, time.March, 28)), endgame.CAD(770); !got.Equal(want) {
		t.Errorf("Monthly() at 75 = %v, want %v", got, want)
	}
	if got, want := o.Clawback(endgame.CAD(102000)), endgame.CAD(150); !got.Equal(want) {
		t.Errorf("Clawback() = %v, want %v", got, want)
	}

	last := tax.Summary{NetIncomeBeforeAdjustments: endgame.CAD(102000)}
	oas, gis, ok := o.PaymentOn(date.New(2025, time.April, 28), last)
	if !ok || !oas.Equal(endgame.CAD(550)) || !gis.IsZero() {
		t.Errorf("PaymentOn() = %v, %v, %v", oas, gis, ok)
	}
	last.NetIncomeBeforeAdjustments = endgame.CAD(1000000)
	if oas, _, _ := o.PaymentOn(date.New(2025, time.April, 28), last); !oas.IsZero() {
		t.Errorf("PaymentOn() fully clawed back = %v, want 0", oas)
	}
	if _, _, ok := o.PaymentOn(date.New(2025, time.March, 28), last); ok {
		t.Error("PaymentOn() before the start month reports a payment")
	}
}

const gisText = `# single person
0.00_23.99:935.72
24.00_47.99:934.00

18,960.00_18,983.99:0.79
`

func TestGIS(t *testing.T) {
	table, err := ParseGIS(strings.NewReader(gisText))
	if err != nil {
		t.Fatalf("ParseGIS() error = %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want 3", table.Len())
	}
	lookups := []struct{ income, want float64 }{
		{10, 935.72},
		{30, 934},
		{18970, 0.79},
		{20000, 0},
	}
	for _, l := range lookups {
		if got := table.Lookup(endgame.CAD(l.income)); !got.Equal(endgame.CAD(l.want)) {
			t.Errorf("Lookup(%v) = %v, want %v", l.income, got, l.want)
		}
	}

	exempt := endgame.CAD(5000)
	amounts := []struct{ employment, want float64 }{
		{0, 934},
		{6000, 684},
		{9000, 0},
	}
	for _, a := range amounts {
		got := table.MonthlyAmount(endgame.CAD(8030), endgame.CAD(8000), endgame.CAD(a.employment), exempt)
		if !got.Equal(endgame.CAD(a.want)) {
			t.Errorf("MonthlyAmount() with employment %v = %v, want %v", a.employment, got, a.want)
		}
	}
}

func TestParseGISErrors(t *testing.T) {
	for _, text := range []string{"", "abc", "0_10", "0_10:5\n0_5:6"} {
		if _, err := ParseGIS(strings.NewReader(text)); !errors.Is(err, endgame.ErrConfig) {
			t.Errorf("ParseGIS(%q) error = %v, want ErrConfig", text, err)
		}
	}
}

func TestLoadGIS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gis-brackets.utf8")
	if err := os.WriteFile(path, []byte(gisText), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := LoadGIS(path)
	if err != nil {
		t.Fatalf("LoadGIS() error = %v", err)
	}
	b, err := LoadGIS(path)
	if err != nil {
		t.Fatalf("LoadGIS() error = %v", err)
	}
	if a != b {
		t.Error("LoadGIS() read the same file twice")
	}
	if _, err := LoadGIS(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("LoadGIS(missing) error = %v, want ErrConfig", err)
	}
}
