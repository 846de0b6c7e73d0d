package security

import (
	"fmt"

	"github.com/etnz/endgame"
)

// Commission is an investment dealer's fee on a trade.
type Commission interface {
	On(shares int, price endgame.Money) endgame.Money
}

// FixedAmount charges the same amount per trade.
type FixedAmount struct{ Amount endgame.Money }

func (f FixedAmount) On(int, endgame.Money) endgame.Money { return f.Amount }
func (f FixedAmount) String() string                       { return fmt.Sprintf("%s per trade", f.Amount) }

// FixedPercent charges a percentage of the gross amount of the trade.
type FixedPercent struct{ Rate endgame.Rate }

func (f FixedPercent) On(shares int, price endgame.Money) endgame.Money {
	return price.TimesInt(shares).TimesRate(f.Rate)
}
func (f FixedPercent) String() string { return fmt.Sprintf("%s of the trade", f.Rate) }

// NoCommission is free trading.
type NoCommission struct{}

func (NoCommission) On(_ int, price endgame.Money) endgame.Money { return endgame.Zero(price.Currency()) }
func (NoCommission) String() string                              { return "no commission" }
