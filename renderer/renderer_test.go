package renderer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/sim"
	"github.com/etnz/endgame/survival"
	"github.com/etnz/endgame/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var birth = date.New(1955, 6, 1)

func yearEnd(year int, cpp, payable, netWorth, alive float64) sim.YearEnd {
	cf := *sim.NewCashFlow()
	cf.CPP = endgame.CAD(cpp)
	return sim.YearEnd{
		Year:     year,
		Age:      date.YearsOnly(birth, year),
		Summary:  tax.Summary{Year: year, TaxableIncome: endgame.CAD(cpp), TaxPayable: endgame.CAD(payable)},
		CashFlow: cf,
		Accounts: account.Set{{Name: "Bank", Cash: endgame.CAD(netWorth)}},
		NetWorth: endgame.CAD(netWorth),
		Survival: alive,
	}
}

func single() *Report {
	h := &sim.History{Iteration: 1, Years: []sim.YearEnd{
		yearEnd(2025, 1000, 100, 5000, 98.5),
		yearEnd(2026, 1200, 150, 6000, 96.25),
	}}
	return NewReport("run-1", "scenarios/101.6-early-cpp.yaml", "Early CPP", birth, 2025, 2026, []*sim.History{h})
}

func multiple() *Report {
	hs := []*sim.History{
		{Iteration: 1, Years: []sim.YearEnd{yearEnd(2025, 1000, 100, 5000, 0), yearEnd(2026, 1000, 100, 7000, 0)}},
		{Iteration: 2, Years: []sim.YearEnd{yearEnd(2025, 1000, 100, 3000, 0)}, DeathYear: 2025},
		{Iteration: 3, Years: []sim.YearEnd{yearEnd(2025, 1000, 100, 4000, 0), yearEnd(2026, 1000, 100, 2000, 0)}},
		{Iteration: 4, Err: errors.New("insufficient cash")},
	}
	return NewReport("run-2", "102-random.toml", "", birth, 2025, 2026, hs)
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		scenario string
		want     string
	}{
		{"scenarios/101.6-early-cpp.yaml", "101.6"},
		{"plan.toml", "plan"},
		{"-odd.yaml", "-odd"},
		{"", "endgame"},
	}
	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			r := &Report{Scenario: tt.scenario}
			if got := r.Prefix(); got != tt.want {
				t.Errorf("Prefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewReport(t *testing.T) {
	r := multiple()
	assert.Equal(t, []Failure{{Iteration: 4, Error: "insufficient cash"}}, r.Failures)
	assert.Equal(t, 1, r.Deaths())
	assert.Nil(t, r.Single())
	assert.Equal(t, []int{2025, 2026}, r.Years())
	assert.Equal(t, 71, r.Age(2026))
}

func TestSpreads(t *testing.T) {
	spreads := multiple().Spreads(NetWorth)
	require.Len(t, spreads, 2)

	assert.Equal(t, 2025, spreads[0].Year)
	assert.Equal(t, 3, spreads[0].Count)
	assert.Equal(t, "3000.00", spreads[0].Low.Plain())
	assert.Equal(t, "4000.00", spreads[0].Median.Plain())
	assert.Equal(t, "5000.00", spreads[0].High.Plain())

	assert.Equal(t, 2, spreads[1].Count)
	assert.Equal(t, "2000.00", spreads[1].Low.Plain())
	assert.Equal(t, "7000.00", spreads[1].High.Plain())
}

func TestCashAndTaxSummary(t *testing.T) {
	r := single()
	var b bytes.Buffer
	require.NoError(t, CashAndTaxSummary(&b, r, r.Single()))
	want := "Year,Age,Net Cash,Cash Generated,Taxable Income,Tax Payable,Net Worth,Survival Chances\n" +
		"2025,70,900.00,1000.00,1000.00,100.00,5000.00,98.50\n" +
		"2026,71,1050.00,1200.00,1200.00,150.00,6000.00,96.25\n"
	assert.Equal(t, want, b.String())
}

func TestCashFlows(t *testing.T) {
	r := single()
	var b bytes.Buffer
	require.NoError(t, CashFlows(&b, r, r.Single()))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Year,Age,CPP,OAS,GIS,Pension,Dividends,Liquidation,Interest,Survival Chances", lines[0])
	assert.Equal(t, "2025,70,1000.00,0.00,0.00,0.00,0.00,0.00,0.00,98.50", lines[1])
}

func TestHistories(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Histories(&b, multiple(), NetWorth))
	want := "Year,1,2,3,4\n" +
		"2025,5000.00,3000.00,4000.00,\n" +
		"2026,7000.00,,2000.00,\n"
	assert.Equal(t, want, b.String())
}

func TestWriteCSV(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		dir := t.TempDir()
		paths, err := WriteCSV(dir, single())
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "101.6-cash-and-tax-summary.csv"),
			filepath.Join(dir, "101.6-cash-flows.csv"),
		}, paths)
	})
	t.Run("multiple", func(t *testing.T) {
		dir := t.TempDir()
		paths, err := WriteCSV(dir, multiple())
		require.NoError(t, err)
		assert.Len(t, paths, len(Metrics))
		assert.FileExists(t, filepath.Join(dir, "102-histories-net-cash.csv"))
		assert.FileExists(t, filepath.Join(dir, "102-histories-interest.csv"))
	})
}

func TestRenderRun(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		got := RenderRun(single(), RenderOptions{})
		assert.Contains(t, got, "# Early CPP")
		assert.Contains(t, got, "| Iterations | 1 |")
		assert.Contains(t, got, "| 2025 | 70 | $900.00 | $1,000.00 | $1,000.00 | $100.00 | $5,000.00 | 98.50% |")
		assert.Contains(t, got, "## Totals over 2 years")
		assert.Contains(t, got, "| Tax payable | $250.00 | $125.00 |")
		assert.Contains(t, got, "## Accounts at the End")
		assert.NotContains(t, got, "error")
	})
	t.Run("skip accounts", func(t *testing.T) {
		got := RenderRun(single(), RenderOptions{SkipAccounts: true})
		assert.NotContains(t, got, "## Accounts at the End")
	})
	t.Run("multiple", func(t *testing.T) {
		got := RenderRun(multiple(), RenderOptions{})
		assert.Contains(t, got, "# Retirement simulation")
		assert.Contains(t, got, "| Deaths | 1 |")
		assert.Contains(t, got, "## Net Worth across Iterations")
		assert.Contains(t, got, "| 2025 | 3 | $3,000.00 | $4,000.00 | $5,000.00 |")
		assert.Contains(t, got, "| 4 | insufficient cash |")
		assert.NotContains(t, got, "## Cash Flows")
	})
	t.Run("skip failures", func(t *testing.T) {
		got := RenderRun(multiple(), RenderOptions{SkipFailures: true})
		assert.NotContains(t, got, "## Failed Iterations")
	})
}

func TestHTML(t *testing.T) {
	page, err := HTML("A & B", RenderRun(single(), RenderOptions{}))
	require.NoError(t, err)
	assert.Contains(t, page, "<title>A &amp; B</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<h1>Early CPP</h1>")
}

func TestWriteXLSX(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteXLSX(&b, multiple()))

	f, err := excelize.OpenReader(&b)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Net cash", "Tax payable", "Gross cash", "CPP", "OAS", "GIS", "Dividends", "Liquidation", "Interest", "Net worth"}, f.GetSheetList())
	year, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2025", year)
	alive, err := f.GetCellValue("Summary", "C3")
	require.NoError(t, err)
	assert.Equal(t, "2", alive)
	worth, err := f.GetCellValue("Net worth", "C2")
	require.NoError(t, err)
	assert.Equal(t, "3000", worth)
}

func TestWritePDF(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WritePDF(&b, multiple()))
	assert.True(t, bytes.HasPrefix(b.Bytes(), []byte("%PDF")))
}

func TestWriteNetWorthChart(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteNetWorthChart(&b, multiple()))
	assert.True(t, bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")))

	short := single()
	short.Histories[0].Years = short.Histories[0].Years[:1]
	assert.Error(t, WriteNetWorthChart(&b, short))
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := WriteAll(dir, single())
	require.NoError(t, err)
	for _, name := range []string{"101.6-report.json", "101.6-report.md", "101.6-report.html", "101.6-report.xlsx", "101.6-report.pdf", "101.6-net-worth.png", "101.6-cash-flows.csv"} {
		assert.Contains(t, paths, filepath.Join(dir, name))
	}

	r, err := ReadReportFile(filepath.Join(dir, JSONName("101.6")))
	require.NoError(t, err)
	assert.Equal(t, "run-1", r.ID)
	assert.Equal(t, birth, r.Birth)
	require.NotNil(t, r.Single())
	assert.Equal(t, "6000.00", r.Single().Years[1].NetWorth.Plain())
}

func TestSurvivalMarkdown(t *testing.T) {
	table, err := survival.Parse(strings.NewReader("\"70 years\",\"1000\"\n\"71 years\",\"900\"\n\"72 years\",\"450\"\n"))
	require.NoError(t, err)

	got, err := SurvivalMarkdown(table, survival.Female, birth, 2025, 2027)
	require.NoError(t, err)
	assert.Contains(t, got, "# Survival chances (female, born 1955-06-01)")
	assert.Contains(t, got, "| 2025 | 70 | 100.00% |")
	assert.Contains(t, got, "| 2026 | 71 | 90.00% |")
	assert.Contains(t, got, "| 2027 | 72 | 45.00% |")
}

func TestReadReportError(t *testing.T) {
	_, err := ReadReport(strings.NewReader("{"))
	assert.Error(t, err)
	_, err = ReadReportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestQuery(t *testing.T) {
	r := multiple()

	got, err := r.Query("$.histories[0].years[1].net_worth")
	require.NoError(t, err)
	assert.Equal(t, 7000.0, got)

	got, err = r.Query("$.histories[?(@.death_year > 0)].iteration")
	require.NoError(t, err)
	assert.Equal(t, []any{2.0}, got)

	_, err = r.Query("$.nowhere")
	assert.Error(t, err)
}
