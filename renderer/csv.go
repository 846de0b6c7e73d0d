package renderer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/etnz/endgame/sim"
)

// WriteCSV writes the spreadsheet-friendly files of r into dir and returns
// their paths. A one-iteration run gets a cash-and-tax summary and a
// cash-flows file. A larger run gets one file per metric, with a column
// per iteration.
func WriteCSV(dir string, r *Report) ([]string, error) {
	if h := r.Single(); h != nil {
		return writeFiles(dir, r.Prefix(), map[string]func(io.Writer) error{
			"cash-and-tax-summary": func(w io.Writer) error { return CashAndTaxSummary(w, r, h) },
			"cash-flows":           func(w io.Writer) error { return CashFlows(w, r, h) },
		})
	}
	files := make(map[string]func(io.Writer) error)
	for _, m := range Metrics {
		files["histories-"+m.Name] = func(w io.Writer) error { return Histories(w, r, m) }
	}
	return writeFiles(dir, r.Prefix(), files)
}

func writeFiles(dir, prefix string, files map[string]func(io.Writer) error) ([]string, error) {
	var paths []string
	for name, write := range files {
		path := filepath.Join(dir, prefix+"-"+name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		if err := write(f); err != nil {
			f.Close()
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CashAndTaxSummary writes the yearly net cash, gross cash, taxable
// income, tax, net worth and survival chance of h.
func CashAndTaxSummary(w io.Writer, r *Report, h *sim.History) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Year", "Age", "Net Cash", "Cash Generated", "Taxable Income", "Tax Payable", "Net Worth", "Survival Chances"})
	for _, y := range h.Years {
		cw.Write([]string{
			strconv.Itoa(y.Year),
			strconv.Itoa(r.Age(y.Year)),
			y.Net().Plain(),
			y.Gross().Plain(),
			y.Summary.TaxableIncome.Plain(),
			y.Tax().Plain(),
			y.NetWorth.Plain(),
			survivalCell(y),
		})
	}
	cw.Flush()
	return cw.Error()
}

// CashFlows writes the yearly sources of cash of h.
func CashFlows(w io.Writer, r *Report, h *sim.History) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Year", "Age", "CPP", "OAS", "GIS", "Pension", "Dividends", "Liquidation", "Interest", "Survival Chances"})
	for _, y := range h.Years {
		c := y.CashFlow
		cw.Write([]string{
			strconv.Itoa(y.Year),
			strconv.Itoa(r.Age(y.Year)),
			c.CPP.Plain(), c.OAS.Plain(), c.GIS.Plain(), c.Pension.Plain(),
			c.Dividends.Plain(), c.Liquidation.Plain(), c.Interest.Plain(),
			survivalCell(y),
		})
	}
	cw.Flush()
	return cw.Error()
}

// Histories writes a row per year and a column per iteration. Cells of
// iterations that ended earlier are empty.
func Histories(w io.Writer, r *Report, m Metric) error {
	cw := csv.NewWriter(w)
	header := []string{"Year"}
	for _, h := range r.Histories {
		header = append(header, strconv.Itoa(h.Iteration))
	}
	cw.Write(header)
	for _, s := range r.Series(m) {
		row := []string{strconv.Itoa(s.Year)}
		for _, v := range s.Values {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, v.Plain())
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

func survivalCell(y sim.YearEnd) string {
	if y.Survival == 0 {
		return ""
	}
	return strconv.FormatFloat(y.Survival, 'f', 2, 64)
}
