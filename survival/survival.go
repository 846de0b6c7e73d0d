// Package survival draws whether a person survives each simulated year,
// using life tables.
//
// A life table gives lx, the number of survivors at each age of a cohort of
// 100,000 born together. Files are quoted CSV, one age per line:
//
//	"0 years","100,000"
//	"1 year","99,515"
//	"110 years and over","6"
package survival

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

// Sex selects the life table.
type Sex int

const (
	Male Sex = iota + 1
	Female
)

func (s Sex) String() string {
	switch s {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return fmt.Sprintf("Sex(%d)", int(s))
}

// ParseSex accepts male, female, m or f, ignoring case.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return 0, fmt.Errorf("%w: unknown sex %q", endgame.ErrConfig, s)
}

// Table is a life table.
type Table struct {
	lx     map[int]int
	maxAge int
}

// Parse reads a life table. Blank lines and lines starting with # are
// ignored.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{lx: make(map[int]int)}
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		age, survivors, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: life table line %d: %v", endgame.ErrConfig, n, err)
		}
		t.lx[age] = survivors
		t.maxAge = max(t.maxAge, age)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(t.lx) == 0 {
		return nil, fmt.Errorf("%w: empty life table", endgame.ErrConfig)
	}
	return t, nil
}

// parseLine parses `"71 years","80,123"`.
func parseLine(line string) (age, survivors int, err error) {
	label, count, ok := strings.Cut(line, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expecting \"<age> years\",\"<survivors>\", got %q", line)
	}
	label = strings.Trim(strings.TrimSpace(label), `"`)
	years, _, _ := strings.Cut(label, " ")
	if age, err = strconv.Atoi(years); err != nil {
		return 0, 0, fmt.Errorf("invalid age in %q", line)
	}
	count = strings.ReplaceAll(strings.Trim(strings.TrimSpace(count), `"`), ",", "")
	if survivors, err = strconv.Atoi(count); err != nil {
		return 0, 0, fmt.Errorf("invalid survivor count in %q", line)
	}
	return age, survivors, nil
}

var cache sync.Map // path to *Table

// Load reads the life table in file path. A file is read once per process.
func Load(path string) (*Table, error) {
	if t, ok := cache.Load(path); ok {
		return t.(*Table), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", endgame.ErrConfig, err)
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	actual, _ := cache.LoadOrStore(path, t)
	return actual.(*Table), nil
}

// LoadFor reads the table of sex in dir, named male-lx.utf8 or
// female-lx.utf8.
func LoadFor(dir string, sex Sex) (*Table, error) {
	return Load(filepath.Join(dir, sex.String()+"-lx.utf8"))
}

// Survivors returns lx at age.
func (t *Table) Survivors(age int) (int, bool) {
	n, ok := t.lx[age]
	return n, ok
}

// MaxAge is the oldest age of the table.
func (t *Table) MaxAge() int { return t.maxAge }

// Probability returns the probability of someone aged from to reach age to.
func (t *Table) Probability(from, to int) (float64, error) {
	start, ok := t.lx[from]
	if !ok || start == 0 {
		return 0, fmt.Errorf("%w: no survivors at age %d in the life table", endgame.ErrConfig, from)
	}
	end, ok := t.lx[to]
	if !ok {
		return 0, fmt.Errorf("%w: age %d is not in the life table", endgame.ErrConfig, to)
	}
	return float64(end) / float64(start), nil
}

// SurvivesYear draws whether a person born on birth survives year. The age
// is counted in years only. Beyond the table, nobody survives.
func (t *Table) SurvivesYear(year int, birth date.Date, rng *rand.Rand) (bool, error) {
	age := date.YearsOnly(birth, year)
	if age > t.maxAge {
		return false, nil
	}
	p, err := t.Probability(age-1, age)
	if err != nil {
		return false, err
	}
	return rng.Float64() < p, nil
}

// Point is the survival chance to the end of Year.
type Point struct {
	Year  int
	Value float64
}

// RelativeProbability returns, for every year from start to end, the
// chance of a person born on birth, alive in start, to still be alive. The
// values are multiplied by scale, and rounded to 2 decimals.
func (t *Table) RelativeProbability(birth date.Date, start, end int, scale float64) ([]Point, error) {
	from := date.YearsOnly(birth, start)
	var res []Point
	for year := start; year <= end; year++ {
		to := date.YearsOnly(birth, year)
		if to > t.maxAge {
			break
		}
		p, err := t.Probability(from, to)
		if err != nil {
			return nil, err
		}
		res = append(res, Point{Year: year, Value: math.Round(p*scale*100) / 100})
	}
	return res, nil
}

// Chances returns the probability to reach each age up to last, for every
// starting age from first to last.
func (t *Table) Chances(first, last int) (map[int]map[int]float64, error) {
	res := make(map[int]map[int]float64)
	for from := first; from <= last; from++ {
		row := make(map[int]float64)
		for to := from + 1; to <= last+1; to++ {
			p, err := t.Probability(from, to)
			if err != nil {
				return nil, err
			}
			row[to] = p
		}
		res[from] = row
	}
	return res, nil
}
