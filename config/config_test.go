package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/etnz/endgame/sim"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan1 = date.New(2025, time.January, 1)

func mustSchedule(t *testing.T, s string) schedule.Schedule {
	t.Helper()
	sc, err := schedule.Parse(s)
	require.NoError(t, err)
	return sc
}

const scenarioYAML = `syntax-version: "1"
description: two years on a RIF and an annuity
birth: 1955-06-01
sex: female
start-year: 2025
end-year: 2026
iterations: 2
seed: 7

mortality:
  table: female-lx.utf8

bank:
  cash: 1000
  small-balance-limit: 100

rif:
  cash: 20000
  conversion: 2026-12-31

tfsa:
  room: 7000
  yearly-room: 7000

nra:
  cash: 500
  positions:
    - symbol: XYZ
      shares: 100
      book-value: 800

stocks:
  - symbol: XYZ
    price: 10
    dividend:
      amount: 0.25
      when: "on *-03-31, *-06-30, *-09-30, *-12-31"
      growth: 0%

commission:
  amount: 9.99

stock-prices:
  policy: gaussian
  mean: 5%
  std-dev: 15%

federal:
  personal-amount: 14000
  personal-amount-additional: 1500
  personal-amount-clawback: "150000_200000"
  age-amount: 8000
  age-amount-threshold: 40000
  pension-amount: 2000
  brackets:
    - {rate: 15%, max: 50000}
    - {rate: 20.5%, max: 100000}
    - {rate: 26%, max: 1000000}
  withholding:
    - {rate: 10%, max: 5000}
    - {rate: 20%, max: 15000}
    - {rate: 30%, max: 1000000}

provincial:
  jurisdiction: AB
  personal_amt: 21000
  age_amt: 5000
  age_amt_threshold: 40000
  pension_income_max: 1500
  dvd_gross_up_mult: 8.12%
  tax_brackets:
    - {rate: 10%, max: 150000}
    - {rate: 12%, max: 1000000}

year-zero:
  net-income: 30000

cpp:
  start: 2025-01-01
  nominal: 800
  monthly-reward: 0.7%
  monthly-penalty: 0.6%
  payment-day: 25

oas:
  start: 2025-01-01
  at-nominal: 700
  monthly-reward: 0.6%
  boost: 10%
  clawback-threshold: 90000
  clawback-rate: 15%
  gis-table: gis.utf8
  gis-exempt: 5000

transactions:
  - kind: annuity
    when: "on *-15"
    amount: 1000
  - kind: buy-gic
    in: nra
    gic:
      principal: 200
      sold-by: ABC Bank
      rate: 2%
      purchase: 2025-03-01
      term: 1
  - kind: update-stock-prices
    when: "on *-12-31"
  - kind: pay-taxes
    when: "on *-12-31"
`

const femaleLx = `"65 years","100,000"
"70 years","90,000"
"71 years","90,000"
"72 years","80,000"
"80 years and over","0"
`

const gisBrackets = `0.00_23.99:935.72
24.00_47.99:934.00
18,960.00_18,983.99:0.79
`

// write writes the scenario and its reference tables in a temporary
// directory, and returns the scenario path.
func write(t *testing.T, name, scenario string) string {
	t.Helper()
	dir := t.TempDir()
	for file, text := range map[string]string{
		name:             scenario,
		"female-lx.utf8": femaleLx,
		"gis.utf8":       gisBrackets,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(text), 0o644))
	}
	return filepath.Join(dir, name)
}

func TestLoad(t *testing.T) {
	f, err := Load(write(t, "scenario.yaml", scenarioYAML))
	require.NoError(t, err)
	assert.Equal(t, "two years on a RIF and an annuity", f.Description)
	assert.Equal(t, 2, f.Iterations)
	require.NotNil(t, f.NRA)
	require.Len(t, f.NRA.Positions, 1)
	assert.Equal(t, 100, f.NRA.Positions[0].Shares)
	assert.True(t, f.NRA.Positions[0].BookValue.Equal(endgame.CAD(800)))
	require.NotNil(t, f.Provincial)
	require.NotNil(t, f.Provincial.PersonalAmount)
	assert.True(t, f.Provincial.PersonalAmount.Equal(endgame.CAD(21000)))
	assert.Nil(t, f.Provincial.LowIncomeBasic)
	require.Len(t, f.Transactions, 4)
	assert.Equal(t, "on *-15", f.Transactions[0].When.String())

	sc, err := f.Check()
	require.NoError(t, err)
	assert.NotNil(t, sc.RIF)
	assert.NotNil(t, sc.TFSA)
	assert.NotNil(t, sc.Room)
	assert.Nil(t, sc.LIF)
	assert.NotNil(t, sc.Survival)
	assert.False(t, sc.SurvivalTest)
	require.NotNil(t, sc.Provincial)
	assert.Equal(t, "AB", sc.Provincial.Jurisdiction())
	assert.True(t, sc.NRA.Value().Equal(endgame.CAD(1500)))

	// GIC purchase, accrual and redemption, CPP, OAS and the dividends come
	// with the four listed transactions.
	kinds := make(map[string]int)
	for _, tx := range sc.Transactions {
		kinds[strings.SplitN(tx.Action.String(), " ", 2)[0]]++
	}
	assert.Len(t, sc.Transactions, 3+3+3)
	assert.Equal(t, 1, kinds["CPP"])
	assert.Equal(t, 1, kinds["OAS/GIS"])
	assert.Equal(t, 1, kinds["dividend"])
}

func TestRun(t *testing.T) {
	f, err := Load(write(t, "scenario.yml", scenarioYAML))
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	r, err := f.Runner(logger, sim.NewMetrics())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Iterations)
	assert.Equal(t, uint64(7), r.Seed)

	histories, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, histories, 2)
	for _, h := range histories {
		require.Len(t, h.Years, 2)
		first := h.Years[0]
		assert.True(t, first.CashFlow.Pension.Equal(endgame.CAD(12000)))
		assert.True(t, first.CashFlow.CPP.IsPositive())
		assert.True(t, first.CashFlow.OAS.IsPositive())
		assert.True(t, first.CashFlow.Dividends.Equal(endgame.CAD(100)))
		assert.Equal(t, 100.0, first.Survival)
		// The one year GIC bought in March pays its interest the next year.
		assert.True(t, first.CashFlow.Interest.IsZero())
		assert.True(t, h.Years[1].CashFlow.Interest.IsPositive())
	}
}

const scenarioTOML = `syntax-version = "1"
description = "minimal"
birth = "1955-06-01"
start-year = 2025
end-year = 2026

[bank]
cash = "$1,000"
small-balance-limit = "100"

[tfsa]
cash = "500"
room = "7000"
yearly-room = "7000"

[federal]
personal-amount = "14000"
age-amount = "8000"
age-amount-threshold = "40000"
brackets = [{ rate = "15%", max = "50000" }, { rate = "26%", max = "1000000" }]
withholding = [{ rate = "10%", max = "1000000" }]

[[transactions]]
kind = "annuity"
when = "on *-15"
amount = "1000"

[[transactions]]
kind = "move-cash"
when = "on *-12-20"
from = "bank"
to = "tfsa"
amount = "500"
`

func TestParseTOML(t *testing.T) {
	f, err := Parse([]byte(scenarioTOML), TOML)
	require.NoError(t, err)
	assert.True(t, f.Bank.Cash.Equal(endgame.CAD(1000)))
	require.NotNil(t, f.TFSA)
	assert.True(t, f.TFSA.Cash.Equal(endgame.CAD(500)))
	require.Len(t, f.Federal.Brackets, 2)
	assert.Equal(t, "26.00%", f.Federal.Brackets[1].Rate.String())

	sc, err := f.Check()
	require.NoError(t, err)
	assert.Len(t, sc.Transactions, 2)
	assert.Equal(t, 65, sc.Federal.RetirementAge())
	assert.Nil(t, sc.Prices)
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{"a.yaml": YAML, "b.YML": YAML, "c.toml": TOML} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatOf("scenario.ini")
	assert.ErrorIs(t, err, endgame.ErrConfig)
}

func TestSyntaxVersion(t *testing.T) {
	for _, text := range []string{
		"description: no version\n",
		"syntax-version: \"0.9\"\n",
	} {
		_, err := Parse([]byte(text), YAML)
		assert.ErrorIs(t, err, endgame.ErrConfig, text)
		assert.ErrorContains(t, err, "syntax-version")
	}
	_, err := Parse([]byte("syntax-version = \"2\"\n"), TOML)
	assert.ErrorContains(t, err, "syntax-version")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		text   string
	}{
		{"unknown yaml key", YAML, "syntax-version: \"1\"\nbirthday: 1955-06-01\n"},
		{"unknown toml key", TOML, "syntax-version = \"1\"\nbirthday = \"1955-06-01\"\n"},
		{"bad amount", YAML, "syntax-version: \"1\"\nbank:\n  cash: lots\n"},
		{"bad schedule", YAML, "syntax-version: \"1\"\ntransactions:\n  - kind: pay-taxes\n    when: every day\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text), tt.format)
			assert.ErrorIs(t, err, endgame.ErrConfig)
		})
	}
}

// edit returns the TOML scenario with old replaced by new.
func edit(t *testing.T, old, new string) *File {
	t.Helper()
	require.Contains(t, scenarioTOML, old)
	f, err := Parse([]byte(strings.Replace(scenarioTOML, old, new, 1)), TOML)
	require.NoError(t, err)
	return f
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
	}{
		{"no birth", `birth = "1955-06-01"`, ""},
		{"no end", "end-year = 2026", ""},
		{"end before start", "end-year = 2026", "end-year = 2024"},
		{"no federal brackets", `brackets = [{ rate = "15%", max = "50000" }, { rate = "26%", max = "1000000" }]`, ""},
		{"unordered brackets", `max = "50000"`, `max = "5000000"`},
		{"additional amount without clawback", `personal-amount = "14000"`, "personal-amount = \"14000\"\npersonal-amount-additional = \"1500\""},
		{"unknown kind", `kind = "annuity"`, `kind = "lottery"`},
		{"no schedule", `when = "on *-15"`, ""},
		{"unknown account", `to = "tfsa"`, `to = "rrsp"`},
		{"move onto itself", `to = "tfsa"`, `to = "bank"`},
		{"unknown price policy", "[bank]", "[stock-prices]\npolicy = \"random\"\n\n[bank]"},
		{"explicit policy with one rate", "[bank]", "[stock-prices]\npolicy = \"explicit\"\nrates = [\"5%\"]\n\n[bank]"},
		{"two commissions", "[bank]", "[commission]\namount = \"10\"\npercent = \"1%\"\n\n[bank]"},
		{"position in undeclared stock", "yearly-room = \"7000\"", "yearly-room = \"7000\"\npositions = [{ symbol = \"ABC\", shares = 10 }]"},
		{"provincial field of another jurisdiction", "[bank]", "[provincial]\njurisdiction = \"MB\"\nlive_alone_amt = \"1000\"\n\n[bank]"},
		{"lif without maxima", "[bank]", "[lif]\ncash = \"1000\"\nconversion = \"2024-12-31\"\njurisdiction = \"ON\"\n\n[bank]"},
		{"missing mortality table", "[bank]", "[mortality]\ntable = \"nowhere.utf8\"\n\n[bank]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edit(t, tt.old, tt.new).Check()
			assert.Error(t, err)
		})
	}
}

func TestTransactionKinds(t *testing.T) {
	valid := []Transaction{
		{Kind: "move-cash", From: "bank", To: "tfsa", Amount: endgame.CAD(600)},
		{Kind: "sweep-cash", From: "rif"},
		{Kind: "bank-deposit", Amount: endgame.CAD(10)},
		{Kind: "bank-withdrawal", Amount: endgame.CAD(10)},
		{Kind: "bank-debit-credit", Amount: endgame.CAD(-10)},
		{Kind: "employment-payday", Monthly: endgame.CAD(10), JobStart: jan1, JobEnd: jan1.AddYears(1)},
		{Kind: "small-paycheck", Monthly: endgame.CAD(10)},
		{Kind: "splurge", MinBalance: endgame.CAD(10)},
		{Kind: "convert-rsp-to-rif"},
		{Kind: "buy-stock", In: "tfsa", Symbol: "XYZ", Shares: 1},
		{Kind: "sell-stock", In: "nra", Symbol: "XYZ", Shares: 1},
		{Kind: "move-stock", From: "nra", To: "tfsa", Symbol: "XYZ", Value: endgame.CAD(100)},
		{Kind: "transfer-stock-in", In: "nra", Symbol: "XYZ", Shares: 3},
		{Kind: "transfer-stock-out", In: "nra", Symbol: "XYZ", Shares: 3},
		{Kind: "stock-split", Symbols: []string{"XYZ"}, Factor: 2},
		{Kind: "liquidate", Accounts: []string{"nra", "rif"}, Percent: endgame.R(0.04)},
		{Kind: "tfsa-top-up", Accounts: []string{"nra"}, Symbols: []string{"XYZ"}},
	}
	for _, tx := range valid {
		tx.When = mustSchedule(t, "on *-01")
		txs, err := tx.transactions(jan1)
		require.NoError(t, err, tx.Kind)
		assert.Len(t, txs, 1, tx.Kind)
	}

	invalid := []Transaction{
		{Kind: "bank-deposit"},
		{Kind: "move-cash", From: "bank", To: "tfsa", Amount: endgame.CAD(-600)},
		{Kind: "employment-payday", JobStart: jan1},
		{Kind: "buy-stock", In: "tfsa", Symbol: "XYZ"},
		{Kind: "move-stock", From: "nra", To: "tfsa", Symbol: "XYZ", Shares: 1, Value: endgame.CAD(100)},
		{Kind: "transfer-stock-in", In: "nra", Symbol: "XYZ"},
		{Kind: "stock-split", Symbols: []string{"XYZ"}, Factor: 1},
		{Kind: "liquidate", Accounts: []string{"nra"}},
		{Kind: "liquidate", Percent: endgame.R(0.04)},
		{Kind: "tfsa-top-up"},
		{Kind: "buy-gic", In: "nra"},
	}
	for _, tx := range invalid {
		tx.When = mustSchedule(t, "on *-01")
		_, err := tx.transactions(jan1)
		assert.ErrorIs(t, err, endgame.ErrConfig, tx.Kind)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ENDGAME_OUTPUT", "")
	t.Setenv("LOG_LEVEL", "debug")
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "reports", env.Output)
	assert.Equal(t, "debug", env.LogLevel)

	t.Setenv("ENDGAME_OUTPUT", "  ")
	_, err = LoadEnv()
	assert.Error(t, err)
}

func TestPriceHistory(t *testing.T) {
	path := write(t, "scenario.yaml", scenarioYAML+"\nprice-history: prices.json\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "prices.json"), []byte(`{"XYZ": {"2024-06-30": 12.00}}`), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	sc, err := f.Check()
	require.NoError(t, err)
	xyz, err := sc.Stocks.Get("XYZ")
	require.NoError(t, err)
	assert.Equal(t, 2, xyz.History().Len())

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "prices.json"), []byte(`{"ABC": {"2024-06-30": 12.00}}`), 0o644))
	f, err = Load(path)
	require.NoError(t, err)
	_, err = f.Check()
	assert.ErrorIs(t, err, endgame.ErrConfig)
}
