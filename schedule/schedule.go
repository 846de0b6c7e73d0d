// Package schedule decides on which simulated days a transaction runs.
//
// A schedule is written as
//
//	on 2022-02-28                         # one specific day
//	on *-12-25                            # every December 25
//	on *-01                               # the first day of every month
//	on *-01-04, *-04-04, *-08-04          # lists are comma separated
//	on *-12-25 | 2022-01-01..2027-12-31   # limited to a range of dates
//	on *-12-25 | 2030-01-01..             # open ended range
//	on *-12-25 | ..2042-12-25
//	cron 0 0 1 */3 * | 2030-01-01..       # any standard cron expression
//
// Patterns are matched as suffixes of the YYYY-MM-DD text of the day.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/robfig/cron/v3"
)

var (
	// Earliest is the default start of a schedule.
	Earliest = date.New(1, time.January, 1)
	// Latest is the default stop of a schedule.
	Latest = date.New(9999, time.December, 31)
)

const (
	onPrefix   = "on "
	cronPrefix = "cron "
	starPrefix = "*-"
	ymdLength  = len("9999-01-31")
)

// Schedule is an inclusive date range plus the patterns a day must match.
type Schedule struct {
	Start, Stop date.Date
	patterns    []string
	crons       []cron.Schedule
	text        string
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse parses the textual form of a schedule.
func Parse(s string) (Schedule, error) {
	text := strings.TrimSpace(s)
	sc := Schedule{Start: Earliest, Stop: Latest, text: text}

	head, rng, hasRange := strings.Cut(text, "|")
	if hasRange {
		if err := sc.parseRange(strings.TrimSpace(rng)); err != nil {
			return Schedule{}, fmt.Errorf("%w: schedule %q: %w", endgame.ErrConfig, s, err)
		}
	}
	head = strings.TrimSpace(head)

	switch {
	case strings.HasPrefix(head, cronPrefix):
		spec := strings.TrimSpace(strings.TrimPrefix(head, cronPrefix))
		c, err := cronParser.Parse(spec)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: schedule %q: %w", endgame.ErrConfig, s, err)
		}
		sc.crons = append(sc.crons, c)
	case strings.HasPrefix(head, onPrefix):
		for part := range strings.SplitSeq(strings.TrimPrefix(head, onPrefix), ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			if len(p) != ymdLength {
				p = strings.TrimPrefix(p, starPrefix)
				p = strings.TrimPrefix(p, starPrefix) // "*-*-01" is "*-01"
			}
			if !validPattern(p) {
				return Schedule{}, fmt.Errorf("%w: schedule %q: invalid date pattern %q", endgame.ErrConfig, s, part)
			}
			sc.patterns = append(sc.patterns, p)
		}
		if len(sc.patterns) == 0 {
			return Schedule{}, fmt.Errorf("%w: schedule %q has no dates", endgame.ErrConfig, s)
		}
	default:
		return Schedule{}, fmt.Errorf("%w: schedule %q must start with %q or %q", endgame.ErrConfig, s, onPrefix, cronPrefix)
	}
	if sc.Stop.Before(sc.Start) {
		return Schedule{}, fmt.Errorf("%w: schedule %q stops before it starts", endgame.ErrConfig, s)
	}
	return sc, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Schedule {
	sc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sc
}

// On returns a schedule that matches a single day.
func On(d date.Date) Schedule { return MustParse(onPrefix + d.String()) }

// MonthlyOn returns a schedule matching the given day of every month, from start onward.
func MonthlyOn(day int, start date.Date) Schedule {
	return MustParse(fmt.Sprintf("on *-%02d | %s..", day, start))
}

func (sc *Schedule) parseRange(rng string) error {
	from, to, ok := strings.Cut(rng, "..")
	if !ok {
		return fmt.Errorf("range %q is missing '..'", rng)
	}
	if from = strings.TrimSpace(from); from != "" {
		d, err := date.Parse(from)
		if err != nil {
			return err
		}
		sc.Start = d
	}
	if to = strings.TrimSpace(to); to != "" {
		d, err := date.Parse(to)
		if err != nil {
			return err
		}
		sc.Stop = d
	}
	return nil
}

// validPattern accepts DD, MM-DD and YYYY-MM-DD.
func validPattern(p string) bool {
	var layout string
	switch len(p) {
	case 2:
		layout = "02"
	case 5:
		layout = "01-02"
	case ymdLength:
		layout = date.DateFormat
	default:
		return false
	}
	_, err := time.Parse(layout, p)
	return err == nil || (len(p) == 5 && p == "02-29")
}

// Matches reports whether the schedule fires on day.
func (sc Schedule) Matches(day date.Date) bool {
	if day.Before(sc.Start) || day.After(sc.Stop) {
		return false
	}
	text := day.String()
	for _, p := range sc.patterns {
		if strings.HasSuffix(text, p) {
			return true
		}
	}
	for _, c := range sc.crons {
		midnight := day.Time()
		if next := c.Next(midnight.Add(-time.Nanosecond)); next.Before(midnight.Add(24 * time.Hour)) {
			return true
		}
	}
	return false
}

func (sc Schedule) String() string { return sc.text }

// MarshalText returns the textual form the schedule was parsed from.
func (sc Schedule) MarshalText() ([]byte, error) { return []byte(sc.text), nil }

func (sc *Schedule) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*sc = v
	return nil
}
