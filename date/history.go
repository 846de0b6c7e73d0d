package date

import (
	"iter"
	"slices"
)

// History is a series of values by day, kept in chronological order with at
// most one value per day. Stocks keep their prices in one.
type History[T any] struct {
	days   []Date
	values []T
}

func compareDays(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// Append records value on day. A value already recorded that day is
// replaced.
func (h *History[T]) Append(day Date, value T) *History[T] {
	i, found := slices.BinarySearchFunc(h.days, day, compareDays)
	if found {
		h.values[i] = value
		return h
	}
	h.days = slices.Insert(h.days, i, day)
	h.values = slices.Insert(h.values, i, value)
	return h
}

// Len returns the number of days recorded.
func (h *History[T]) Len() int { return len(h.days) }

// Latest returns the last day and its value, or zero values when empty.
func (h *History[T]) Latest() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, value
	}
	last := len(h.days) - 1
	return h.days[last], h.values[last]
}

// Get returns the value recorded on day.
func (h *History[T]) Get(day Date) (T, bool) {
	var value T
	i, found := slices.BinarySearchFunc(h.days, day, compareDays)
	if !found {
		return value, false
	}
	return h.values[i], true
}

// Values iterates over the days and their values, oldest first.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, day := range h.days {
			if !yield(day, h.values[i]) {
				return
			}
		}
	}
}

// Map replaces every value by f(value). Stock splits use it to restate
// past prices.
func (h *History[T]) Map(f func(T) T) {
	for i, v := range h.values {
		h.values[i] = f(v)
	}
}
