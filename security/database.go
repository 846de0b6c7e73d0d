package security

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Securities holds the stock universe of a simulation, in declaration order.
type Securities struct {
	content map[string]*Stock
	order   []string
}

// New returns a new empty database.
func New(stocks ...*Stock) *Securities {
	s := &Securities{content: make(map[string]*Stock)}
	for _, st := range stocks {
		s.Add(st)
	}
	return s
}

// Add adds a stock, replacing any stock with the same symbol.
func (s *Securities) Add(st *Stock) {
	key := strings.ToUpper(st.Symbol())
	if _, ok := s.content[key]; !ok {
		s.order = append(s.order, key)
	}
	s.content[key] = st
}

func (s *Securities) Has(symbol string) bool {
	_, ok := s.content[strings.ToUpper(symbol)]
	return ok
}

// Get returns the stock for symbol, ignoring case.
func (s *Securities) Get(symbol string) (*Stock, error) {
	st, ok := s.content[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("unknown stock symbol %q", symbol)
	}
	return st, nil
}

// All iterates over the stocks in declaration order.
func (s *Securities) All() iter.Seq[*Stock] {
	return func(yield func(*Stock) bool) {
		for _, key := range s.order {
			if !yield(s.content[key]) {
				return
			}
		}
	}
}

// Symbols returns the sorted list of symbols.
func (s *Securities) Symbols() []string {
	var res []string
	for st := range s.All() {
		res = append(res, st.Symbol())
	}
	slices.Sort(res)
	return res
}

func (s *Securities) Len() int { return len(s.order) }
