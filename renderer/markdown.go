package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/sim"
	"github.com/etnz/endgame/survival"
)

// runView is the data handed to the run templates.
type runView struct {
	Title      string
	Scenario   string
	ID         string
	Birth      string
	StartYear  int
	EndYear    int
	Iterations int
	Deaths     int
	Years      []yearRow
	Totals     *sim.Totals
	Accounts   []accountRow
	DeathYear  int
	NetCash    []Spread
	NetWorth   []Spread
	Failures   []Failure
}

type yearRow struct {
	sim.YearEnd
	HasSurvival bool
}

type accountRow struct {
	Name        string
	Cash        string
	Positions   int
	GICs        int
	MarketValue string
}

func newRunView(r *Report) runView {
	v := runView{
		Title:      r.Description,
		Scenario:   r.Scenario,
		ID:         r.ID,
		Birth:      r.Birth.String(),
		StartYear:  r.StartYear,
		EndYear:    r.EndYear,
		Iterations: len(r.Histories),
		Deaths:     r.Deaths(),
		Failures:   r.Failures,
	}
	if v.Title == "" {
		v.Title = "Retirement simulation"
	}
	h := r.Single()
	if h == nil {
		v.NetCash = r.Spreads(Metrics[0])
		v.NetWorth = r.Spreads(NetWorth)
		return v
	}
	for _, y := range h.Years {
		v.Years = append(v.Years, yearRow{YearEnd: y, HasSurvival: y.Survival > 0})
	}
	totals := h.Totals()
	v.Totals = &totals
	v.DeathYear = h.DeathYear
	if last, ok := h.Last(); ok {
		for _, a := range last.Accounts {
			v.Accounts = append(v.Accounts, accountRow{
				Name:        a.Name,
				Cash:        a.Cash.String(),
				Positions:   len(a.Positions),
				GICs:        len(a.GICs),
				MarketValue: a.MarketValue().String(),
			})
		}
	}
	return v
}

// SurvivalMarkdown renders the chance of a person born on birth, alive at
// the start of each year from start, to reach the end of each year up to
// end.
func SurvivalMarkdown(t *survival.Table, sex survival.Sex, birth date.Date, start, end int) (string, error) {
	points, err := t.RelativeProbability(birth, start, end, 100)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	who := "born " + birth.String()
	if sex != 0 {
		who = sex.String() + ", " + who
	}
	fmt.Fprintf(&b, "# Survival chances (%s)\n\n", who)
	fmt.Fprintf(&b, "Alive at the start of %d.\n\n", start)
	fmt.Fprintln(&b, "| Year | Age | Chance |")
	fmt.Fprintln(&b, "|---:|---:|---:|")
	for _, p := range points {
		fmt.Fprintf(&b, "| %d | %d | %.2f%% |\n", p.Year, date.YearsOnly(birth, p.Year), p.Value)
	}
	return b.String(), nil
}

// AgeTableMarkdown renders, for every starting age from first to last,
// the chance to reach the following ages in steps of five years.
func AgeTableMarkdown(t *survival.Table, first, last int) (string, error) {
	chances, err := t.Chances(first, last)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprint(&b, "| From | To | Chance |\n|---:|---:|---:|\n")
	for from := first; from <= last; from++ {
		for to := from + 5; to <= last+1; to += 5 {
			fmt.Fprintf(&b, "| %d | %d | %.2f%% |\n", from, to, chances[from][to]*100)
		}
	}
	return b.String(), nil
}
