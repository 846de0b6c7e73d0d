package date

import (
	"fmt"
	"iter"
)

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days iterates over every day of the range, in order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Years returns the number of calendar years touched by the range.
func (r Range) Years() int {
	if r.To.Before(r.From) {
		return 0
	}
	return r.To.Year() - r.From.Year() + 1
}

// Identifier compute a unique identifier for the Range.
func (r Range) Identifier() string {
	if r.From.IsStartOfYear() && r.To.IsEndOfYear() {
		if r.From.Year() == r.To.Year() {
			return r.From.Format("2006")
		}
		return fmt.Sprintf("%d-%d", r.From.Year(), r.To.Year())
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
