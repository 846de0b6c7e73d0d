package sim

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/security"
)

// Sale is one sale of a SequentialLiquidation.
type Sale struct {
	Account  account.Kind
	Symbol   string
	Shares   int
	Gross    endgame.Money
	Proceeds endgame.Money
	// Partial is set when only part of the position was sold, which ends
	// the liquidation.
	Partial bool
}

func (s Sale) String() string {
	return fmt.Sprintf("%s sold %d %s net:%s", s.Account, s.Shares, s.Symbol, s.Proceeds)
}

// SequentialLiquidation sells stocks to generate cash, in a fixed order:
// accounts first, then stocks within an account. It sells a gross Amount,
// or a Percent of the investments when Amount is zero.
//
// A stock whose price is below any of its prices of the last
// AvoidDownturnYears years is not sold.
type SequentialLiquidation struct {
	AvoidDownturnYears int
	Accounts           []Holder
	Symbols            []string
	Amount             endgame.Money
	Percent            endgame.Rate
}

// NewSequentialLiquidation checks that exactly one of amount and percent is
// set.
func NewSequentialLiquidation(avoid int, accounts []Holder, symbols []string, amount endgame.Money, percent endgame.Rate) (*SequentialLiquidation, error) {
	if amount.IsZero() == percent.IsZero() {
		return nil, fmt.Errorf("%w: a liquidation needs either an amount or a percent", endgame.ErrConfig)
	}
	if avoid < 0 {
		return nil, fmt.Errorf("%w: negative number of downturn years %d", endgame.ErrConfig, avoid)
	}
	return &SequentialLiquidation{AvoidDownturnYears: avoid, Accounts: accounts, Symbols: symbols, Amount: amount, Percent: percent}, nil
}

func (l *SequentialLiquidation) Execute(day date.Date, sc *Scenario) error {
	sales, err := l.Sell(day, sc)
	if err != nil {
		return err
	}
	total := endgame.Zero(endgame.DefaultCurrency)
	for _, s := range sales {
		total = total.Add(s.Proceeds)
	}
	sc.CashFlow.Liquidation = sc.CashFlow.Liquidation.Add(total)
	logFor(sc, day, l).Infof("%d sales for %s: %v", len(sales), total, sales)
	return nil
}

// Sell performs the sales of day and returns them.
func (l *SequentialLiquidation) Sell(day date.Date, sc *Scenario) ([]Sale, error) {
	target := l.Amount
	if target.IsZero() {
		target = sc.InvestmentsWorth().TimesRate(l.Percent)
	}
	sold := endgame.Zero(target.Currency())
	var sales []Sale
	for _, h := range l.Accounts {
		a, err := sc.Account(h)
		if err != nil {
			return sales, err
		}
		for _, symbol := range l.Symbols {
			stock, err := sc.Stock(symbol)
			if err != nil {
				return sales, err
			}
			held, value, ok := positionValue(a, stock)
			if !ok || l.recentDownturn(stock) {
				continue
			}
			sale := Sale{Account: a.Kind(), Symbol: stock.Symbol(), Shares: held, Gross: value}
			if remaining := target.Sub(sold); value.GreaterThan(remaining) {
				sale.Partial = true
				sale.Shares = remaining.FlooredDiv(stock.Price())
				sale.Gross = stock.MarketValue(sale.Shares)
			}
			if sale.Shares <= 0 {
				continue
			}
			sale.Proceeds, err = a.SellShares(sale.Shares, stock, sc.Commission.On(sale.Shares, stock.Price()))
			if err != nil {
				return sales, err
			}
			sold = sold.Add(sale.Gross)
			sales = append(sales, sale)
			if sale.Partial {
				return sales, nil
			}
		}
	}
	return sales, nil
}

// recentDownturn reports whether a price of the last AvoidDownturnYears
// years, counted from the latest price, is above the current price.
func (l *SequentialLiquidation) recentDownturn(stock *security.Stock) bool {
	h := stock.History()
	if l.AvoidDownturnYears <= 0 || h.Len() == 0 {
		return false
	}
	latest, _ := h.Latest()
	since := latest.Year() - l.AvoidDownturnYears
	for day, price := range h.Values() {
		if day.Year() >= since && price.GreaterThan(stock.Price()) {
			return true
		}
	}
	return false
}

func (l *SequentialLiquidation) String() string {
	what := l.Amount.String()
	if l.Amount.IsZero() {
		what = l.Percent.String() + " of investments"
	}
	return fmt.Sprintf("liquidate %s from %s", what, holders(l.Accounts))
}

// TfsaTopUp uses up the TFSA room of the year by transferring stocks in
// kind from other investment accounts, in a fixed order. Transfers out of
// the RIF are capped at the yearly RIF minimum, which avoids withholding
// tax when done early in January.
//
// Running it on January 1 is best avoided, since the room is recomputed
// that day.
type TfsaTopUp struct {
	Accounts []Holder
	Symbols  []string
}

func (t *TfsaTopUp) Execute(day date.Date, sc *Scenario) error {
	if sc.TFSA == nil {
		return fmt.Errorf("%w: the scenario has no TFSA", endgame.ErrConfig)
	}
	year := day.Year()
	room := sc.Room.RoomFor(year)
	log := logFor(sc, day, t)
	log.Infof("TFSA room for %d: %s", year, room)
	moved := endgame.Zero(room.Currency())
	for _, h := range t.Accounts {
		a, err := sc.Account(h)
		if err != nil {
			return err
		}
		for _, symbol := range t.Symbols {
			stock, err := sc.Stock(symbol)
			if err != nil {
				return err
			}
			held, value, ok := positionValue(a, stock)
			if !ok {
				continue
			}
			limit := room.Sub(moved)
			if h == RIF {
				minimum, err := sc.RifMinimum(year)
				if err != nil {
					return err
				}
				if limit.GreaterThan(minimum) {
					limit = minimum
					log.Info("transferring the RIF minimum, not the full TFSA room")
				}
			}
			n, partial := held, false
			if value.GreaterThan(limit) {
				n, partial = limit.FlooredDiv(stock.Price()), true
			}
			if n <= 0 {
				continue
			}
			if err := sc.TFSA.CanReceive(stock.MarketValue(n), day); err != nil {
				return err
			}
			if _, err := a.TransferSharesOut(n, stock, day); err != nil {
				return err
			}
			if _, err := sc.TFSA.TransferSharesIn(n, stock, day); err != nil {
				return err
			}
			moved = moved.Add(stock.MarketValue(n))
			log.Infof("transfer %d %s from %s, room left %s", n, stock, a.Kind(), sc.Room.RoomFor(year))
			if partial {
				return nil
			}
		}
	}
	return nil
}

func (t *TfsaTopUp) String() string { return "top up the TFSA from " + holders(t.Accounts) }

// ConvertRspToRif marks the conversion of the RSP into a RIF. The RIF
// account models the RSP before its conversion date, minimum withdrawals
// start the following year. The opening value used for the minimum is
// taken on the day of the conversion.
type ConvertRspToRif struct{}

func (c *ConvertRspToRif) Execute(day date.Date, sc *Scenario) error {
	if sc.RIF == nil {
		return fmt.Errorf("%w: the scenario has no RIF", endgame.ErrConfig)
	}
	sc.RifJan1 = sc.RIF.Value()
	logFor(sc, day, c).Infof("RSP converted to a RIF worth %s, minimum withdrawals enforced", sc.RifJan1)
	return nil
}

func (c *ConvertRspToRif) String() string { return "convert RSP to RIF" }
