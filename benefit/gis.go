package benefit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/tax"
)

type gisRow struct {
	max    endgame.Money
	amount endgame.Money
}

// GISTable maps last year's income, OAS excluded, to a monthly GIS amount,
// for a single person.
type GISTable struct {
	rows []gisRow
}

// ParseGIS reads a table, one bracket per line:
//
//	0.00_23.99:935.72
//	18,960.00_18,983.99:0.79
//
// Blank lines and lines starting with # are ignored.
func ParseGIS(r io.Reader) (*GISTable, error) {
	t := &GISTable{}
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rng, amount, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: GIS line %d: expecting min_max:amount, got %q", endgame.ErrConfig, n, line)
		}
		_, upper, ok := strings.Cut(rng, "_")
		if !ok {
			return nil, fmt.Errorf("%w: GIS line %d: expecting min_max, got %q", endgame.ErrConfig, n, rng)
		}
		var row gisRow
		var err error
		if row.max, err = endgame.ParseMoney(upper); err != nil {
			return nil, fmt.Errorf("GIS line %d: %w", n, err)
		}
		if row.amount, err = endgame.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("GIS line %d: %w", n, err)
		}
		if len(t.rows) > 0 && !row.max.GreaterThan(t.rows[len(t.rows)-1].max) {
			return nil, fmt.Errorf("%w: GIS line %d: brackets are not in increasing order", endgame.ErrConfig, n)
		}
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return nil, fmt.Errorf("%w: empty GIS table", endgame.ErrConfig)
	}
	return t, nil
}

var gisCache sync.Map // path to *GISTable

// LoadGIS reads the table in file path. A file is read once per process.
func LoadGIS(path string) (*GISTable, error) {
	if t, ok := gisCache.Load(path); ok {
		return t.(*GISTable), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", endgame.ErrConfig, err)
	}
	defer f.Close()
	t, err := ParseGIS(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	actual, _ := gisCache.LoadOrStore(path, t)
	return actual.(*GISTable), nil
}

// Lookup returns the monthly amount for an income. Above the last bracket
// there is no GIS.
func (t *GISTable) Lookup(income endgame.Money) endgame.Money {
	for _, r := range t.rows {
		if income.LessThanOrEqual(r.max) {
			return r.amount
		}
	}
	return endgame.Zero(income.Currency())
}

// MonthlyAmount returns the monthly GIS from last year's amounts. GIS is
// reduced by half of the employment income above the exemption, after a
// second exemption of up to the same size on half the excess.
func (t *GISTable) MonthlyAmount(netIncome, oas, employment, exempt endgame.Money) endgame.Money {
	amount := t.Lookup(netIncome.Sub(oas))
	if !amount.IsPositive() {
		return amount
	}
	return tax.NonNegative(amount.Sub(gisClawback(employment, exempt)))
}

func gisClawback(employment, exempt endgame.Money) endgame.Money {
	if employment.LessThan(exempt) {
		return endgame.Zero(employment.Currency())
	}
	half := employment.Sub(exempt).DivByInt(2)
	exemption := exempt.Add(half.Min(exempt))
	return employment.Sub(exemption).DivByInt(2)
}

// Len is the number of brackets.
func (t *GISTable) Len() int { return len(t.rows) }
