package renderer

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/sim"
)

// Report is the outcome of a run: the yearly histories of every iteration
// and enough of the scenario to label them.
type Report struct {
	ID          string         `json:"id"`
	Scenario    string         `json:"scenario"`
	Description string         `json:"description,omitempty"`
	Birth       date.Date      `json:"birth"`
	StartYear   int            `json:"start_year"`
	EndYear     int            `json:"end_year"`
	Histories   []*sim.History `json:"histories"`
	Failures    []Failure      `json:"failures,omitempty"`
}

// Failure is an iteration that stopped on an error.
type Failure struct {
	Iteration int    `json:"iteration"`
	Error     string `json:"error"`
}

// NewReport collects the histories of a run.
func NewReport(id, scenario, description string, birth date.Date, start, end int, histories []*sim.History) *Report {
	r := &Report{
		ID:          id,
		Scenario:    scenario,
		Description: description,
		Birth:       birth,
		StartYear:   start,
		EndYear:     end,
		Histories:   histories,
	}
	for _, h := range histories {
		if h.Err != nil {
			r.Failures = append(r.Failures, Failure{Iteration: h.Iteration, Error: h.Failure()})
		}
	}
	return r
}

// ReadReport decodes a report written by WriteJSON.
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Single returns the history of a one-iteration run.
func (r *Report) Single() *sim.History {
	if len(r.Histories) != 1 {
		return nil
	}
	return r.Histories[0]
}

// Years lists the simulated years.
func (r *Report) Years() []int {
	var years []int
	for y := r.StartYear; y <= r.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// Age is the age reached by the owner during year.
func (r *Report) Age(year int) int { return date.YearsOnly(r.Birth, year) }

// Prefix is the leading part of the scenario file name, up to its first
// dash, used to name the files written next to each other. A scenario
// named "101.6-early-cpp.yaml" gives "101.6".
func (r *Report) Prefix() string {
	base := filepath.Base(r.Scenario)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "-"); i > 0 {
		return base[:i]
	}
	if base == "" || base == "." {
		return "endgame"
	}
	return base
}

// Metric extracts one amount from a year end.
type Metric struct {
	Name  string
	Title string
	Value func(sim.YearEnd) endgame.Money
}

// Metrics are the amounts tracked across histories.
var Metrics = []Metric{
	{"net-cash", "Net cash", sim.YearEnd.Net},
	{"tax-payable", "Tax payable", sim.YearEnd.Tax},
	{"gross-cash", "Gross cash", sim.YearEnd.Gross},
	{"cpp", "CPP", func(y sim.YearEnd) endgame.Money { return y.CashFlow.CPP }},
	{"oas", "OAS", func(y sim.YearEnd) endgame.Money { return y.CashFlow.OAS }},
	{"gis", "GIS", func(y sim.YearEnd) endgame.Money { return y.CashFlow.GIS }},
	{"dividends", "Dividends", func(y sim.YearEnd) endgame.Money { return y.CashFlow.Dividends }},
	{"liquidation", "Liquidation", func(y sim.YearEnd) endgame.Money { return y.CashFlow.Liquidation }},
	{"interest", "Interest", func(y sim.YearEnd) endgame.Money { return y.CashFlow.Interest }},
}

// NetWorth is the metric charted by WriteNetWorthChart.
var NetWorth = Metric{"net-worth", "Net worth", func(y sim.YearEnd) endgame.Money { return y.NetWorth }}

// Series is a metric for one year across every history. A history that
// ended before the year has no value.
type Series struct {
	Year   int
	Values []*endgame.Money
}

// Series returns the yearly values of m for every history.
func (r *Report) Series(m Metric) []Series {
	var res []Series
	for _, year := range r.Years() {
		s := Series{Year: year, Values: make([]*endgame.Money, len(r.Histories))}
		for i, h := range r.Histories {
			if y, ok := h.Year(year); ok {
				v := m.Value(y)
				s.Values[i] = &v
			}
		}
		res = append(res, s)
	}
	return res
}

// Spread is the low, median and high value of a metric in a year, over
// the histories that reached it.
type Spread struct {
	Year   int
	Count  int
	Low    endgame.Money
	Median endgame.Money
	High   endgame.Money
}

// Spreads returns the yearly spread of m. Years nobody reached are left
// out.
func (r *Report) Spreads(m Metric) []Spread {
	var res []Spread
	for _, s := range r.Series(m) {
		var values []endgame.Money
		for _, v := range s.Values {
			if v != nil {
				values = append(values, *v)
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
		res = append(res, Spread{
			Year:   s.Year,
			Count:  len(values),
			Low:    values[0],
			Median: values[len(values)/2],
			High:   values[len(values)-1],
		})
	}
	return res
}

// Deaths counts the histories cut short by the survival draw.
func (r *Report) Deaths() int {
	n := 0
	for _, h := range r.Histories {
		if h.Died() {
			n++
		}
	}
	return n
}
