package sim

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/tax"
)

// YearEnd is the state of a scenario on December 31.
type YearEnd struct {
	Year     int           `json:"year"`
	Age      int           `json:"age"`
	Summary  tax.Summary   `json:"tax"`
	CashFlow CashFlow      `json:"cash_flow"`
	Accounts account.Set   `json:"accounts"`
	NetWorth endgame.Money `json:"net_worth"`
	// Survival is the probability, in percent, of being alive at the end of
	// the year given being alive at the start of the simulation. It is zero
	// without a mortality table.
	Survival float64 `json:"survival,omitempty"`
}

// Gross is the cash generated in the year.
func (y YearEnd) Gross() endgame.Money { return y.CashFlow.Total() }

// Tax is the tax payable of the year.
func (y YearEnd) Tax() endgame.Money { return y.Summary.TaxPayable }

// Net is the cash left after tax.
func (y YearEnd) Net() endgame.Money { return y.Gross().Sub(y.Tax()) }

// History is the yearly record of a single iteration.
type History struct {
	Iteration int       `json:"iteration"`
	Years     []YearEnd `json:"years"`
	// DeathYear is set when the survival draw ended the iteration.
	DeathYear int `json:"death_year,omitempty"`
	// Err is set when the iteration failed in isolated mode.
	Err error `json:"-"`
}

// Failure is the error message of a failed iteration.
func (h *History) Failure() string {
	if h.Err == nil {
		return ""
	}
	return h.Err.Error()
}

// Died reports whether the owner died during the simulation.
func (h *History) Died() bool { return h.DeathYear != 0 }

// Year returns the record of year.
func (h *History) Year(year int) (YearEnd, bool) {
	for _, y := range h.Years {
		if y.Year == year {
			return y, true
		}
	}
	return YearEnd{}, false
}

// Last returns the last recorded year.
func (h *History) Last() (YearEnd, bool) {
	if len(h.Years) == 0 {
		return YearEnd{}, false
	}
	return h.Years[len(h.Years)-1], true
}

// Totals sums a history over its years.
type Totals struct {
	Years           int         `json:"years"`
	Summary         tax.Summary `json:"tax"`
	CashFlow        CashFlow    `json:"cash_flow"`
	AverageSummary  tax.Summary `json:"average_tax"`
	AverageCashFlow CashFlow    `json:"average_cash_flow"`
}

// Totals returns the sums and the yearly averages of the history.
func (h *History) Totals() Totals {
	summaries := make([]tax.Summary, len(h.Years))
	flows := make([]CashFlow, len(h.Years))
	for i, y := range h.Years {
		summaries[i], flows[i] = y.Summary, y.CashFlow
	}
	t := Totals{
		Years:          len(h.Years),
		Summary:        tax.SumOver(summaries),
		CashFlow:       SumCashFlows(flows),
		AverageSummary: tax.AveragePerYear(summaries),
	}
	t.AverageCashFlow = *NewCashFlow()
	if t.Years > 0 {
		t.AverageCashFlow = t.CashFlow.DivByInt(t.Years)
	}
	return t
}

// String is a text report of the yearly net, gross and tax amounts.
func (h *History) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Iteration %d\n", h.Iteration)
	for _, y := range h.Years {
		fmt.Fprintf(&b, "%d net:%s gross:%s tax:%s net worth:%s\n", y.Year, y.Net().Plain(), y.Gross().Plain(), y.Tax().Plain(), y.NetWorth.Plain())
	}
	if h.Died() {
		fmt.Fprintf(&b, "died in %d\n", h.DeathYear)
	}
	if h.Err != nil {
		fmt.Fprintf(&b, "failed: %v\n", h.Err)
	}
	return b.String()
}
