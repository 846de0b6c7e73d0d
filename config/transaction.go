package config

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/etnz/endgame/sim"
)

// Transaction is a scheduled action. Kind selects the action, and the
// other fields it reads:
//
//	move-cash             from, to, amount (0 moves all the cash)
//	sweep-cash            from
//	bank-deposit          amount
//	bank-withdrawal       amount
//	bank-debit-credit     amount (positive spends, negative receives)
//	employment-payday     monthly, job-start, job-end
//	small-paycheck        monthly
//	splurge               min-balance
//	annuity               amount
//	pay-taxes
//	convert-rsp-to-rif
//	buy-gic               in, gic (scheduled on the purchase date)
//	buy-stock             in, symbol, shares
//	sell-stock            in, symbol, shares
//	move-stock            from, to, symbol, shares or value
//	transfer-stock-in     in, symbol, shares or value
//	transfer-stock-out    in, symbol, shares or value
//	stock-split           symbols, factor
//	update-stock-prices
//	liquidate             accounts, symbols, amount or percent, avoid-downturn-years
//	tfsa-top-up           accounts, symbols
//
// Dividends, CPP and OAS payments, and the life of the GICs held at the
// start are scheduled without being listed.
type Transaction struct {
	Kind string            `yaml:"kind" toml:"kind"`
	When schedule.Schedule `yaml:"when" toml:"when"`

	From     string   `yaml:"from" toml:"from"`
	To       string   `yaml:"to" toml:"to"`
	In       string   `yaml:"in" toml:"in"`
	Accounts []string `yaml:"accounts" toml:"accounts"`

	Symbol  string   `yaml:"symbol" toml:"symbol"`
	Symbols []string `yaml:"symbols" toml:"symbols"`
	Shares  int      `yaml:"shares" toml:"shares"`
	Factor  int      `yaml:"factor" toml:"factor"`

	Amount     endgame.Money `yaml:"amount" toml:"amount"`
	Value      endgame.Money `yaml:"value" toml:"value"`
	Monthly    endgame.Money `yaml:"monthly" toml:"monthly"`
	MinBalance endgame.Money `yaml:"min-balance" toml:"min-balance"`
	Percent    endgame.Rate  `yaml:"percent" toml:"percent"`

	JobStart date.Date `yaml:"job-start" toml:"job-start"`
	JobEnd   date.Date `yaml:"job-end" toml:"job-end"`

	AvoidDownturnYears int  `yaml:"avoid-downturn-years" toml:"avoid-downturn-years"`
	GIC                *GIC `yaml:"gic" toml:"gic"`
}

// transactions returns the scheduled actions of t. start is the first day
// of the simulation.
func (t Transaction) transactions(start date.Date) ([]sim.Transaction, error) {
	kind := strings.ToLower(strings.TrimSpace(t.Kind))
	if kind == "buy-gic" {
		if t.GIC == nil {
			return nil, fmt.Errorf("%w: buy-gic needs a gic", endgame.ErrConfig)
		}
		in, err := sim.ParseHolder(t.In)
		if err != nil {
			return nil, err
		}
		g, err := t.GIC.gic()
		if err != nil {
			return nil, err
		}
		return sim.GicTransactions(in, g, true, start), nil
	}
	if t.When.String() == "" {
		return nil, fmt.Errorf("%w: %s needs a when schedule", endgame.ErrConfig, kind)
	}
	a, err := t.action(kind)
	if err != nil {
		return nil, err
	}
	return []sim.Transaction{{When: t.When, Action: a}}, nil
}

func (t Transaction) action(kind string) (sim.Action, error) {
	switch kind {
	case "move-cash":
		from, to, err := t.fromTo()
		if err != nil {
			return nil, err
		}
		return sim.NewMoveCash(from, to, cad(t.Amount))
	case "sweep-cash":
		from, err := sim.ParseHolder(t.From)
		if err != nil {
			return nil, err
		}
		return &sim.SweepCashFrom{From: from}, nil
	case "bank-deposit", "bank-withdrawal":
		if !t.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: %s needs a positive amount", endgame.ErrConfig, kind)
		}
		return &sim.BankDepositWithdrawal{Amount: cad(t.Amount), Deposit: kind == "bank-deposit"}, nil
	case "bank-debit-credit":
		return &sim.BankDebitCredit{Amount: cad(t.Amount)}, nil
	case "employment-payday":
		if t.JobStart.IsZero() || t.JobEnd.IsZero() || t.JobEnd.Before(t.JobStart) {
			return nil, fmt.Errorf("%w: employment-payday needs job-start and job-end, in that order", endgame.ErrConfig)
		}
		return &sim.EmploymentPayday{Job: date.Range{From: t.JobStart, To: t.JobEnd}, Monthly: cad(t.Monthly)}, nil
	case "small-paycheck":
		return &sim.SmallPaycheck{Monthly: cad(t.Monthly)}, nil
	case "splurge":
		return &sim.SplurgeSpending{MinBalance: cad(t.MinBalance)}, nil
	case "annuity":
		return &sim.AnnuityPayment{Amount: cad(t.Amount)}, nil
	case "pay-taxes":
		return &sim.PayTaxes{}, nil
	case "convert-rsp-to-rif":
		return &sim.ConvertRspToRif{}, nil
	case "buy-stock", "sell-stock":
		in, err := sim.ParseHolder(t.In)
		if err != nil {
			return nil, err
		}
		if t.Shares <= 0 {
			return nil, fmt.Errorf("%w: %s needs a positive number of shares", endgame.ErrConfig, kind)
		}
		return &sim.BuySellStock{In: in, Symbol: t.Symbol, Shares: t.Shares, Sell: kind == "sell-stock"}, nil
	case "move-stock":
		from, to, err := t.fromTo()
		if err != nil {
			return nil, err
		}
		if err := t.sharesOrValue(kind); err != nil {
			return nil, err
		}
		return &sim.MoveStock{From: from, To: to, Symbol: t.Symbol, Shares: t.Shares, Value: cad(t.Value)}, nil
	case "transfer-stock-in", "transfer-stock-out":
		of, err := sim.ParseHolder(t.In)
		if err != nil {
			return nil, err
		}
		if err := t.sharesOrValue(kind); err != nil {
			return nil, err
		}
		return &sim.TransferStock{In: kind == "transfer-stock-in", Of: of, Symbol: t.Symbol, Shares: t.Shares, Value: cad(t.Value)}, nil
	case "stock-split":
		if t.Factor < 2 {
			return nil, fmt.Errorf("%w: stock-split needs a factor of at least 2", endgame.ErrConfig)
		}
		return &sim.StockSplit{Symbols: t.Symbols, Factor: t.Factor}, nil
	case "update-stock-prices":
		return &sim.UpdateStockPrices{}, nil
	case "liquidate":
		accounts, err := holders(t.Accounts)
		if err != nil {
			return nil, err
		}
		return sim.NewSequentialLiquidation(t.AvoidDownturnYears, accounts, t.Symbols, cad(t.Amount), t.Percent)
	case "tfsa-top-up":
		accounts, err := holders(t.Accounts)
		if err != nil {
			return nil, err
		}
		return &sim.TfsaTopUp{Accounts: accounts, Symbols: t.Symbols}, nil
	}
	return nil, fmt.Errorf("%w: unknown transaction kind %q", endgame.ErrConfig, t.Kind)
}

func (t Transaction) fromTo() (sim.Holder, sim.Holder, error) {
	from, err := sim.ParseHolder(t.From)
	if err != nil {
		return "", "", err
	}
	to, err := sim.ParseHolder(t.To)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func (t Transaction) sharesOrValue(kind string) error {
	if (t.Shares > 0) == t.Value.IsPositive() {
		return fmt.Errorf("%w: %s needs either shares or a value", endgame.ErrConfig, kind)
	}
	return nil
}

func holders(names []string) ([]sim.Holder, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no accounts listed", endgame.ErrConfig)
	}
	hs := make([]sim.Holder, 0, len(names))
	for _, n := range names {
		h, err := sim.ParseHolder(n)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}
