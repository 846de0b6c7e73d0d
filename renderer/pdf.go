package renderer

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes a printable summary of the report: the scenario, then a
// table of the yearly net cash, tax and net worth. A larger run prints the
// medians across iterations.
func WritePDF(w io.Writer, r *Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(newRunView(r).Title, false)
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, newRunView(r).Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Scenario: %s", r.Scenario),
		fmt.Sprintf("Born: %s", r.Birth),
		fmt.Sprintf("Years: %d to %d", r.StartYear, r.EndYear),
		fmt.Sprintf("Iterations: %d, deaths: %d, failures: %d", len(r.Histories), r.Deaths(), len(r.Failures)),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	headers := []string{"Year", "Age", "Net Cash", "Tax Payable", "Net Worth", "Alive"}
	widths := []float64{20, 15, 40, 40, 45, 20}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	netCash := spreadsByYear(r.Spreads(Metrics[0]))
	tax := spreadsByYear(r.Spreads(Metrics[1]))
	for _, s := range r.Spreads(NetWorth) {
		cells := []string{
			fmt.Sprint(s.Year),
			fmt.Sprint(r.Age(s.Year)),
			netCash[s.Year].Median.Plain(),
			tax[s.Year].Median.Plain(),
			s.Median.Plain(),
			fmt.Sprint(s.Count),
		}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	for _, f := range r.Failures {
		pdf.Ln(4)
		pdf.MultiCell(0, 5, fmt.Sprintf("Iteration %d failed: %s", f.Iteration, f.Error), "", "L", false)
	}
	return pdf.Output(w)
}
