package security

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

// this file contains functions to handle the price history import/export format.
// It should remain human readable and single file.

// Import merges price histories from 'r' into the known stocks.
//
// The import format is a json file whose property names are stock symbols and values are
// objects mapping a date.Date parseable string to a price.
//
// Imported points only extend the history shown in reports, the current
// price is left untouched.
func (s *Securities) Import(r io.Reader) error {
	content := make(map[string]map[string]endgame.Money)
	if err := json.NewDecoder(r).Decode(&content); err != nil {
		return fmt.Errorf("cannot parse price history file: %v", err)
	}

	var dateErrors []error
	for symbol, history := range content {
		if !s.Has(symbol) {
			return fmt.Errorf("%w: price history for unknown stock %q", endgame.ErrConfig, symbol)
		}
		for day := range history {
			if _, err := date.Parse(day); err != nil {
				dateErrors = append(dateErrors, fmt.Errorf("invalid date in %q history: %w", symbol, err))
			}
		}
	}
	if len(dateErrors) == 1 {
		return dateErrors[0]
	}
	if len(dateErrors) > 1 {
		return fmt.Errorf("errors parsing dates: %v", dateErrors)
	}

	for symbol, history := range content {
		st, _ := s.Get(symbol)
		for day, price := range history {
			// error has been checked before
			d, _ := date.Parse(day)
			st.prices.Append(d, price)
		}
	}
	return nil
}

// Export writes every stock's price history to 'w' in the import format.
func (s *Securities) Export(w io.Writer) error {
	content := make(map[string]map[string]endgame.Money)
	for st := range s.All() {
		history := make(map[string]endgame.Money)
		for day, price := range st.prices.Values() {
			history[day.String()] = price
		}
		content[st.Symbol()] = history
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(content); err != nil {
		return fmt.Errorf("cannot write price history: %v", err)
	}
	return nil
}
