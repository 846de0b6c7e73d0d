// Package date provides a day-granularity calendar date and the age
// arithmetic used by retirement rules.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2"

// DateFormat is the layout dates are written with.
const DateFormat = "2006-01-02"

// Date is a calendar day. The zero Date is not a valid day.
type Date struct {
	y int
	m time.Month
	d int
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the day at midnight UTC.
func (d Date) Time() time.Time { return d.time() }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current day, in local time.
func Today() Date { return New(time.Now().Date()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }

// Add returns the day i days after d. The simulation steps with Add(1).
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonths adds n months. When the day does not exist in the target month,
// the result is the first day of the following month (Jan 31 + 1 month is Mar 1).
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	last := first.firstOfNextMonth().Add(-1).d
	if d.d > last {
		return first.firstOfNextMonth()
	}
	return Date{first.y, first.m, d.d}
}

func (d Date) firstOfNextMonth() Date { return New(d.y, d.m+1, 1) }

// AddYears adds n years with the same overflow rule as AddMonths.
func (d Date) AddYears(n int) Date { return d.AddMonths(12 * n) }

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date { return Date{d.y, d.m, 1} }

// IsStartOfYear reports whether d is Jan 1.
func (d Date) IsStartOfYear() bool { return d.m == time.January && d.d == 1 }

// IsEndOfYear reports whether d is Dec 31.
func (d Date) IsEndOfYear() bool { return d.m == time.December && d.d == 31 }

func (d Date) String() string { return d.time().Format(DateFormat) }

// Format formats d with a time package layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Parse reads "2025-07-01", or "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// UnmarshalText lets YAML and TOML decoders read dates from strings.
func (j *Date) UnmarshalText(text []byte) error {
	d, err := Parse(string(text))
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalText() ([]byte, error) { return []byte(j.String()), nil }

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
