package account

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/shopspring/decimal"
)

// Minima is the RIF and LIF minimum withdrawal table: age on Jan 1 to the
// fraction of the Jan 1 value that must be withdrawn during the year.
//
// Only ages 71 to 94 are read from the table. Younger owners use 1/(90-age),
// older ones 20%.
type Minima struct {
	rates map[int]endgame.Rate
}

// NewMinima returns a table from its rows.
func NewMinima(rows map[int]endgame.Rate) *Minima {
	return &Minima{rates: maps.Clone(rows)}
}

// DefaultMinima returns the prescribed factors in force since 2015.
func DefaultMinima() *Minima {
	rates := []float64{
		.0528, .0540, .0553, .0567, .0582, .0598, .0617, .0636, .0658, .0682, .0708, .0738,
		.0771, .0808, .0851, .0899, .0955, .1021, .1099, .1192, .1306, .1449, .1634, .1879,
	}
	m := &Minima{rates: make(map[int]endgame.Rate, len(rates))}
	for i, r := range rates {
		m.rates[71+i] = endgame.R(r)
	}
	return m
}

// Rate returns the minimum withdrawal fraction at age.
func (m *Minima) Rate(age int) (endgame.Rate, error) {
	switch {
	case age < 71:
		one := decimal.NewFromInt(1)
		return endgame.R(one.DivRound(decimal.NewFromInt(int64(90-age)), 16)), nil
	case age < 95:
		r, ok := m.rates[age]
		if !ok {
			return endgame.Rate{}, fmt.Errorf("%w: no minimum withdrawal rate for age %d", endgame.ErrConfig, age)
		}
		return r, nil
	default:
		return endgame.R(0.20), nil
	}
}

// Applicable reports whether withdrawal limits apply in year, that is from
// the year following the conversion.
func Applicable(year int, conversion date.Date) bool {
	return year >= conversion.Year()+1
}

// LIF maximum withdrawal jurisdiction groups. PE has no LIF.
const (
	GroupFederal  = "CA-YT-NT-NU"
	GroupManitoba = "MN-QC-NS"
	GroupAlberta  = "AB-BC-ON-NB-NL-SK"
)

func groupOf(jurisdiction string) (string, error) {
	for _, g := range []string{GroupFederal, GroupManitoba, GroupAlberta} {
		if slices.Contains(strings.Split(g, "-"), strings.ToUpper(jurisdiction)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: no LIF jurisdiction group for %q", endgame.ErrConfig, jurisdiction)
}

// Maxima is the LIF maximum withdrawal table, by jurisdiction group and age
// on Jan 1.
type Maxima struct {
	rates map[string]map[int]endgame.Rate
}

const (
	firstMaxAge = 55
	lastMaxAge  = 95
)

func NewMaxima() *Maxima { return &Maxima{rates: make(map[string]map[int]endgame.Rate)} }

// Add sets a row of the table. group is one of the Group constants.
func (m *Maxima) Add(group string, age int, rate endgame.Rate) error {
	if !slices.Contains([]string{GroupFederal, GroupManitoba, GroupAlberta}, group) {
		return fmt.Errorf("%w: unknown LIF jurisdiction group %q", endgame.ErrConfig, group)
	}
	if m.rates[group] == nil {
		m.rates[group] = make(map[int]endgame.Rate)
	}
	m.rates[group][age] = rate
	return nil
}

// Rate returns the maximum withdrawal fraction for a jurisdiction and age.
// Ages above 95 use the age 95 row.
func (m *Maxima) Rate(jurisdiction string, age int) (endgame.Rate, error) {
	if age < firstMaxAge {
		return endgame.Rate{}, fmt.Errorf("%w: LIF owner is %d, expecting a minimum age of %d", endgame.ErrInvalid, age, firstMaxAge)
	}
	group, err := groupOf(jurisdiction)
	if err != nil {
		return endgame.Rate{}, err
	}
	r, ok := m.rates[group][min(age, lastMaxAge)]
	if !ok {
		return endgame.Rate{}, fmt.Errorf("%w: no LIF maximum for %s at age %d", endgame.ErrConfig, group, age)
	}
	return r, nil
}

// WithdrawalMin returns the minimum to withdraw from a RIF or LIF during
// year, given its value on Jan 1. It is zero up to the conversion year.
func (a *Account) WithdrawalMin(valueJan1 endgame.Money, year int) (endgame.Money, error) {
	zero := endgame.Zero(valueJan1.Currency())
	if a.reg == nil {
		return zero, a.notPermitted("minimum withdrawal")
	}
	if !Applicable(year, a.reg.conversion) {
		return zero, nil
	}
	r, err := a.reg.minima.Rate(date.YearsOnly(a.reg.birth, year))
	if err != nil {
		return zero, err
	}
	return valueJan1.TimesRate(r), nil
}

// WithdrawalMax returns the maximum to withdraw from a LIF during year, and
// whether a maximum applies at all.
func (a *Account) WithdrawalMax(valueJan1 endgame.Money, year int) (endgame.Money, bool, error) {
	zero := endgame.Zero(valueJan1.Currency())
	if a.kind != LIF {
		return zero, false, a.notPermitted("maximum withdrawal")
	}
	if !Applicable(year, a.reg.conversion) {
		return zero, false, nil
	}
	r, err := a.reg.maxima.Rate(a.reg.jurisdiction, date.YearsOnly(a.reg.birth, year))
	if err != nil {
		return zero, false, err
	}
	return valueJan1.TimesRate(r), true, nil
}

// Conversion returns the RIF or LIF conversion date.
func (a *Account) Conversion() date.Date {
	if a.reg == nil {
		return date.Date{}
	}
	return a.reg.conversion
}
