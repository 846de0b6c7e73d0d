package renderer

import (
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the report as a workbook. The first sheet holds the
// yearly net cash, tax and net worth spread. Each metric gets a sheet with
// a column per iteration.
func WriteXLSX(w io.Writer, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	header := []any{"Year", "Age", "Alive", "Net Cash (median)", "Tax Payable (median)", "Net Worth (median)", "Net Worth (low)", "Net Worth (high)"}
	if err := f.SetSheetRow(summary, "A1", &header); err != nil {
		return err
	}
	netCash := spreadsByYear(r.Spreads(Metrics[0]))
	tax := spreadsByYear(r.Spreads(Metrics[1]))
	row := 2
	for _, s := range r.Spreads(NetWorth) {
		cells := []any{
			s.Year, r.Age(s.Year), s.Count,
			netCash[s.Year].Median.Float(), tax[s.Year].Median.Float(),
			s.Median.Float(), s.Low.Float(), s.High.Float(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &cells); err != nil {
			return err
		}
		row++
	}

	for _, m := range append(append([]Metric{}, Metrics...), NetWorth) {
		if _, err := f.NewSheet(m.Title); err != nil {
			return err
		}
		header := []any{"Year"}
		for _, h := range r.Histories {
			header = append(header, h.Iteration)
		}
		if err := f.SetSheetRow(m.Title, "A1", &header); err != nil {
			return err
		}
		for i, s := range r.Series(m) {
			cells := []any{s.Year}
			for _, v := range s.Values {
				if v == nil {
					cells = append(cells, nil)
					continue
				}
				cells = append(cells, v.Float())
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(m.Title, cell, &cells); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func spreadsByYear(spreads []Spread) map[int]Spread {
	res := make(map[int]Spread, len(spreads))
	for _, s := range spreads {
		res[s.Year] = s
	}
	return res
}
