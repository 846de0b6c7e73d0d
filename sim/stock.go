package sim

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/security"
)

// BuySellStock buys or sells shares at the current price. Without enough
// cash to buy, or shares to sell, the trade is skipped.
type BuySellStock struct {
	In     Holder
	Symbol string
	Shares int
	Sell   bool
}

func (b *BuySellStock) Execute(day date.Date, sc *Scenario) error {
	a, err := sc.Account(b.In)
	if err != nil {
		return err
	}
	stock, err := sc.Stock(b.Symbol)
	if err != nil {
		return err
	}
	commission := sc.Commission.On(b.Shares, stock.Price())
	log := logFor(sc, day, b).WithField("commission", commission.String())
	if b.Sell {
		held, ok := a.PositionFor(stock.Symbol())
		if !ok || held < b.Shares {
			skip(sc, day, b, "the %s holds %d shares", strings.ToUpper(string(b.In)), held)
			return nil
		}
		proceeds, err := a.SellShares(b.Shares, stock, commission)
		if err != nil {
			return err
		}
		sc.CashFlow.Liquidation = sc.CashFlow.Liquidation.Add(proceeds)
		log.Infof("sold %d %s for %s", b.Shares, stock, proceeds)
		return nil
	}
	cost := stock.MarketValue(b.Shares).Add(commission)
	if a.Cash().LessThan(cost) {
		skip(sc, day, b, "insufficient cash %s for %s", a.Cash(), cost)
		return nil
	}
	if _, err := a.BuyShares(b.Shares, stock, commission); err != nil {
		return err
	}
	sc.CashFlow.Liquidation = sc.CashFlow.Liquidation.Sub(cost)
	log.Infof("bought %d %s for %s", b.Shares, stock, cost)
	return nil
}

func (b *BuySellStock) String() string {
	verb := "buy"
	if b.Sell {
		verb = "sell"
	}
	return fmt.Sprintf("%s %d %s in %s", verb, b.Shares, b.Symbol, strings.ToUpper(string(b.In)))
}

// DividendPayment pays a stock's dividend to every account holding it. The
// dividend per share grows yearly from the start of the simulation.
type DividendPayment struct {
	Symbol string
}

// DividendTransaction schedules the dividends of stock, and reports false
// if it pays none.
func DividendTransaction(stock *security.Stock) (Transaction, bool) {
	d := stock.Dividend()
	if d == nil {
		return Transaction{}, false
	}
	return Transaction{When: d.When, Action: &DividendPayment{Symbol: stock.Symbol()}}, true
}

func (d *DividendPayment) Execute(day date.Date, sc *Scenario) error {
	stock, err := sc.Stock(d.Symbol)
	if err != nil {
		return err
	}
	if stock.Dividend() == nil {
		return nil
	}
	perShare := stock.Dividend().PerShare(day.Year(), sc.StartYear())
	for _, a := range sc.InvestmentAccounts() {
		held, ok := a.PositionFor(stock.Symbol())
		if !ok {
			continue
		}
		amount := perShare.TimesInt(held)
		a.Dividend(amount)
		sc.CashFlow.Dividends = sc.CashFlow.Dividends.Add(amount)
		logFor(sc, day, d).WithField("account", a.Kind().String()).Infof("%s %d@%s = %s", stock.Symbol(), held, perShare, amount)
	}
	return nil
}

func (d *DividendPayment) String() string { return "dividend " + d.Symbol }

// shareCount converts a market value to whole shares at the current price.
func shareCount(shares int, value endgame.Money, stock *security.Stock) int {
	if shares > 0 {
		return shares
	}
	return value.FlooredDiv(stock.Price())
}

// MoveStock moves shares in kind between two investment accounts, either a
// number of shares or a market value's worth. A transfer out of an account
// that does not hold enough shares fails.
type MoveStock struct {
	From, To Holder
	Symbol   string
	Shares   int
	Value    endgame.Money // used when Shares is 0
}

func (m *MoveStock) Execute(day date.Date, sc *Scenario) error {
	from, err := sc.Account(m.From)
	if err != nil {
		return err
	}
	to, err := sc.Account(m.To)
	if err != nil {
		return err
	}
	stock, err := sc.Stock(m.Symbol)
	if err != nil {
		return err
	}
	n := shareCount(m.Shares, m.Value, stock)
	if n == 0 {
		skip(sc, day, m, "%s buys no share at %s", m.Value, stock.Price())
		return nil
	}
	if err := to.CanReceive(stock.MarketValue(n), day); err != nil {
		return err
	}
	if _, err := from.TransferSharesOut(n, stock, day); err != nil {
		return err
	}
	if _, err := to.TransferSharesIn(n, stock, day); err != nil {
		return err
	}
	logFor(sc, day, m).Infof("moved %d %s", n, stock)
	return nil
}

func (m *MoveStock) String() string {
	what := fmt.Sprintf("%d shares", m.Shares)
	if m.Shares == 0 {
		what = m.Value.String()
	}
	return fmt.Sprintf("move %s of %s from %s to %s", what, m.Symbol, strings.ToUpper(string(m.From)), strings.ToUpper(string(m.To)))
}

// TransferStock is one leg of a MoveStock: shares coming in from, or going
// out to, somewhere outside the simulation.
type TransferStock struct {
	In     bool
	Of     Holder
	Symbol string
	Shares int
	Value  endgame.Money // used when Shares is 0
}

func (t *TransferStock) Execute(day date.Date, sc *Scenario) error {
	a, err := sc.Account(t.Of)
	if err != nil {
		return err
	}
	stock, err := sc.Stock(t.Symbol)
	if err != nil {
		return err
	}
	n := shareCount(t.Shares, t.Value, stock)
	if n == 0 {
		skip(sc, day, t, "%s buys no share at %s", t.Value, stock.Price())
		return nil
	}
	if t.In {
		_, err = a.TransferSharesIn(n, stock, day)
	} else {
		_, err = a.TransferSharesOut(n, stock, day)
	}
	if err != nil {
		return err
	}
	logFor(sc, day, t).Infof("%d %s", n, stock)
	return nil
}

func (t *TransferStock) String() string {
	dir := "transfer out"
	if t.In {
		dir = "transfer in"
	}
	what := fmt.Sprintf("%d shares", t.Shares)
	if t.Shares == 0 {
		what = t.Value.String()
	}
	return fmt.Sprintf("%s %s of %s in %s", dir, what, t.Symbol, strings.ToUpper(string(t.Of)))
}

// StockSplit splits stocks factor-to-1: prices, price history and dividend
// are divided, positions multiplied.
type StockSplit struct {
	Symbols []string
	Factor  int
}

func (s *StockSplit) Execute(day date.Date, sc *Scenario) error {
	for _, symbol := range s.Symbols {
		stock, err := sc.Stock(symbol)
		if err != nil {
			return err
		}
		stock.Split(s.Factor)
		for _, a := range sc.InvestmentAccounts() {
			before, ok := a.PositionFor(stock.Symbol())
			if !ok {
				continue
			}
			a.SplitPosition(stock.Symbol(), s.Factor)
			after, _ := a.PositionFor(stock.Symbol())
			logFor(sc, day, s).WithField("account", a.Kind().String()).Infof("%s position from %d to %d", stock.Symbol(), before, after)
		}
	}
	return nil
}

func (s *StockSplit) String() string {
	return fmt.Sprintf("stock split %s %d-to-1", strings.Join(s.Symbols, ","), s.Factor)
}

// UpdateStockPrices applies the scenario's price policy to every stock.
type UpdateStockPrices struct{}

func (u *UpdateStockPrices) Execute(day date.Date, sc *Scenario) error {
	if sc.Prices == nil {
		return fmt.Errorf("%w: no stock price policy", endgame.ErrConfig)
	}
	for stock := range sc.Stocks.All() {
		old := stock.Price()
		price := security.UpdatePrice(sc.Prices, stock, day)
		logFor(sc, day, u).Infof("%s %s [%s]", stock.Symbol(), price, change(old, price))
	}
	return nil
}

func (u *UpdateStockPrices) String() string { return "stock price update" }

// change formats the relative change from old to price, as in "5.73%".
func change(old, price endgame.Money) string {
	if old.IsZero() {
		return "n/a"
	}
	return endgame.R(price.Sub(old).Decimal().Div(old.Decimal())).String()
}

// positionValue is the market value of what a holds of stock.
func positionValue(a *account.Account, stock *security.Stock) (int, endgame.Money, bool) {
	held, ok := a.PositionFor(stock.Symbol())
	if !ok {
		return 0, endgame.Money{}, false
	}
	return held, stock.MarketValue(held), true
}
