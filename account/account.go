// Package account models the investment accounts of a retiree.
//
// An Account is a tagged variant: every kind shares the same base record
// (cash, stock positions, GIC holdings) and the same nominal operations, but
// each Kind layers its own tax consequences on top of them.
//
//   - RIF: withdrawals are taxable income, deposits are not permitted.
//   - LIF: a RIF that is locked until its conversion date, with a yearly maximum.
//   - TFSA: contributions consume room, withdrawals restore it the following year.
//   - NRA: tracks book values, disposals produce capital gains or losses.
//
// Operations that a kind does not support return an error wrapping
// endgame.ErrNotPermitted. Failed validations wrap endgame.ErrInvalid.
package account

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/security"
)

// Kind is the account variant.
type Kind int

const (
	RIF Kind = iota + 1
	LIF
	TFSA
	NRA
)

func (k Kind) String() string {
	switch k {
	case RIF:
		return "RIF"
	case LIF:
		return "LIF"
	case TFSA:
		return "TFSA"
	case NRA:
		return "NRA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the reverse of Kind.String, ignoring case.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{RIF, LIF, TFSA, NRA} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown account kind %q", endgame.ErrConfig, s)
}

// TaxRecorder receives the income generated by account operations. It is
// implemented by the federal tax return.
type TaxRecorder interface {
	Year() int
	// AddRifIncome records a RIF withdrawal and returns the withholding tax.
	AddRifIncome(gross endgame.Money) (endgame.Money, error)
	// AddLifIncome records a LIF withdrawal and returns the withholding tax.
	AddLifIncome(gross endgame.Money) (endgame.Money, error)
	AddNraDividend(amount endgame.Money)
	AddNraInterest(amount endgame.Money)
}

// GainRecorder receives capital gains (positive) and losses (negative).
type GainRecorder interface {
	AddGainOrLoss(year int, amount endgame.Money)
}

// Position is a number of shares of a stock.
type Position struct {
	Stock  *security.Stock
	Shares int
}

// MarketValue is the value of the position at the current stock price.
func (p Position) MarketValue() endgame.Money { return p.Stock.MarketValue(p.Shares) }

// Account is an investment account of any Kind.
type Account struct {
	kind      Kind
	cash      endgame.Money
	positions []*Position
	gics      []security.GIC

	// variant payloads, set according to kind.
	reg  *registered
	room *TfsaRoom
	nra  *taxable
}

// registered is the RIF and LIF payload.
type registered struct {
	birth        date.Date
	conversion   date.Date
	jurisdiction string
	minima       *Minima
	maxima       *Maxima
	tax          TaxRecorder
}

// taxable is the NRA payload.
type taxable struct {
	bookValues []*BookValue
	tax        TaxRecorder
	gains      GainRecorder
}

// Holdings is the initial content shared by every kind of account.
type Holdings struct {
	Cash      endgame.Money
	Positions []Position
	GICs      []security.GIC
}

func newAccount(kind Kind, h Holdings) *Account {
	a := &Account{kind: kind, cash: h.Cash, gics: slices.Clone(h.GICs)}
	if a.cash.Currency() == "" {
		a.cash = a.cash.Add(endgame.Zero(endgame.DefaultCurrency))
	}
	for _, p := range h.Positions {
		a.increase(p.Shares, p.Stock)
	}
	return a
}

// RegisteredConfig holds what a RIF or LIF needs beyond its holdings.
type RegisteredConfig struct {
	Birth        date.Date
	Conversion   date.Date // when the RSP (or LIRA) became a RIF (or LIF)
	Jurisdiction string    // LIF only: CA for federal, ON, AB, ...
	Minima       *Minima
	Maxima       *Maxima // LIF only
	Tax          TaxRecorder
}

// NewRIF returns a registered retirement income fund.
//
// The conversion must happen on or before Dec 31 of the year the owner turns 71.
func NewRIF(h Holdings, cfg RegisteredConfig) (*Account, error) {
	lastChance := date.New(cfg.Birth.Year()+71, 12, 31)
	if cfg.Conversion.After(lastChance) {
		return nil, fmt.Errorf("%w: conversion date %s is too late, the last day is %s", endgame.ErrConfig, cfg.Conversion, lastChance)
	}
	if cfg.Minima == nil {
		cfg.Minima = DefaultMinima()
	}
	a := newAccount(RIF, h)
	a.reg = &registered{
		birth:      cfg.Birth,
		conversion: cfg.Conversion,
		minima:     cfg.Minima,
		tax:        cfg.Tax,
	}
	return a, nil
}

// NewLIF returns a life income fund. Before the conversion date it is a
// locked-in account: nothing can move in or out.
func NewLIF(h Holdings, cfg RegisteredConfig) (*Account, error) {
	a, err := NewRIF(h, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Maxima == nil {
		return nil, fmt.Errorf("%w: a LIF needs a maximum withdrawal table", endgame.ErrConfig)
	}
	if _, err := groupOf(cfg.Jurisdiction); err != nil {
		return nil, err
	}
	a.kind = LIF
	a.reg.jurisdiction = cfg.Jurisdiction
	a.reg.maxima = cfg.Maxima
	return a, nil
}

// NewTFSA returns a tax free savings account drawing on room.
func NewTFSA(h Holdings, room *TfsaRoom) *Account {
	a := newAccount(TFSA, h)
	a.room = room
	return a
}

// NewNRA returns a non registered account with the given book values.
func NewNRA(h Holdings, bookValues []BookValue, tax TaxRecorder, gains GainRecorder) *Account {
	a := newAccount(NRA, h)
	a.nra = &taxable{tax: tax, gains: gains}
	for _, bv := range bookValues {
		a.nra.increase(bv.Symbol, bv.Amount)
	}
	return a
}

func (a *Account) Kind() Kind           { return a.kind }
func (a *Account) Cash() endgame.Money  { return a.cash }
func (a *Account) Room() *TfsaRoom      { return a.room }
func (a *Account) GICs() []security.GIC { return slices.Clone(a.gics) }

// Positions returns a copy of the stock positions, in acquisition order.
func (a *Account) Positions() []Position {
	res := make([]Position, 0, len(a.positions))
	for _, p := range a.positions {
		res = append(res, *p)
	}
	return res
}

// PositionFor returns the number of shares held for symbol.
func (a *Account) PositionFor(symbol string) (int, bool) {
	p := a.lookUp(symbol)
	if p == nil {
		return 0, false
	}
	return p.Shares, true
}

// Value is the current market value: cash, stocks and GIC principals.
func (a *Account) Value() endgame.Money {
	v := a.cash
	for _, p := range a.positions {
		v = v.Add(p.MarketValue())
	}
	for _, g := range a.gics {
		v = v.Add(g.Principal)
	}
	return v
}

func (a *Account) notPermitted(op string) error {
	return fmt.Errorf("%w: %s from a %s", endgame.ErrNotPermitted, op, a.kind)
}

func (a *Account) notPermittedInto(op string) error {
	return fmt.Errorf("%w: %s into a %s", endgame.ErrNotPermitted, op, a.kind)
}

func positive(op string, amount endgame.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s of %s, the amount must be positive", endgame.ErrInvalid, op, amount)
	}
	return nil
}

// CanReceive checks, with no effect, that amount can be deposited or
// transferred in on when: a RIF or LIF never receives, a TFSA needs the room.
func (a *Account) CanReceive(amount endgame.Money, when date.Date) error {
	switch a.kind {
	case RIF, LIF:
		return a.notPermittedInto("transfer")
	case TFSA:
		if room := a.room.RoomFor(when.Year()); amount.GreaterThan(room) {
			return fmt.Errorf("%w: TFSA contribution %s exceeds room %s", endgame.ErrRoomExceeded, amount, room)
		}
	}
	return nil
}

// locked reports whether a LIF is still before its conversion date.
func (a *Account) locked(when date.Date) bool {
	return a.kind == LIF && when.Before(a.reg.conversion)
}

// DepositCash adds cash to the account.
func (a *Account) DepositCash(amount endgame.Money, when date.Date) error {
	if err := positive("deposit", amount); err != nil {
		return err
	}
	switch a.kind {
	case RIF, LIF:
		return a.notPermittedInto("deposit")
	case TFSA:
		if err := a.room.ReduceFromContribution(amount, when.Year()); err != nil {
			return err
		}
	}
	a.cash = a.cash.Add(amount)
	return nil
}

// WithdrawCash removes cash from the account and returns the withholding
// tax, if any. It fails, with no effect, if the account has less cash than
// amount.
func (a *Account) WithdrawCash(amount endgame.Money, when date.Date) (endgame.Money, error) {
	withheld := endgame.Zero(a.cash.Currency())
	if err := positive("withdrawal", amount); err != nil {
		return withheld, err
	}
	if a.locked(when) {
		return withheld, a.notPermitted("withdrawal before " + a.reg.conversion.String())
	}
	if a.cash.LessThan(amount) {
		return withheld, fmt.Errorf("%w: cannot withdraw %s from a %s holding %s", endgame.ErrInsufficientCash, amount, a.kind, a.cash)
	}
	var err error
	switch a.kind {
	case RIF:
		withheld, err = a.reg.tax.AddRifIncome(amount)
	case LIF:
		withheld, err = a.reg.tax.AddLifIncome(amount)
	case TFSA:
		a.room.IncreaseFromWithdrawal(amount, when.Year())
	}
	if err != nil {
		return withheld, err
	}
	a.cash = a.cash.Sub(amount)
	return withheld, nil
}

// BuyShares buys n shares and returns the total cost, commission included.
func (a *Account) BuyShares(n int, stock *security.Stock, commission endgame.Money) (endgame.Money, error) {
	cost := stock.MarketValue(n).Add(commission)
	if a.cash.LessThan(cost) {
		return cost, fmt.Errorf("%w: cannot buy %d %s for %s in a %s holding %s", endgame.ErrInsufficientCash, n, stock.Symbol(), cost, a.kind, a.cash)
	}
	a.cash = a.cash.Sub(cost)
	a.increase(n, stock)
	if a.kind == NRA {
		a.nra.increase(stock.Symbol(), cost)
	}
	return cost, nil
}

// SellShares sells n shares and returns the proceeds, net of commission.
//
// In a NRA, the sale produces a capital gain or loss against the book value.
// A sale whose commission the cash cannot cover fails with no effect.
func (a *Account) SellShares(n int, stock *security.Stock, commission endgame.Money) (endgame.Money, error) {
	proceeds := stock.MarketValue(n).Sub(commission)
	if held, _ := a.PositionFor(stock.Symbol()); held < n {
		return proceeds, fmt.Errorf("%w: cannot sell %d %s out of a %s holding %d", endgame.ErrInsufficientShares, n, stock.Symbol(), a.kind, held)
	}
	if a.cash.Add(proceeds).IsNegative() {
		return proceeds, fmt.Errorf("%w: selling %d %s for %s leaves the %s with %s", endgame.ErrInsufficientCash, n, stock.Symbol(), proceeds, a.kind, a.cash.Add(proceeds))
	}
	if a.kind == NRA {
		consumed, err := a.nra.dispose(a.lookUp(stock.Symbol()), n, stock.Symbol())
		if err != nil {
			return proceeds, fmt.Errorf("cannot sell: %w", err)
		}
		a.nra.gains.AddGainOrLoss(a.nra.tax.Year(), proceeds.Sub(consumed))
	}
	if _, err := a.reduce(n, stock); err != nil {
		return proceeds, err
	}
	a.cash = a.cash.Add(proceeds)
	return proceeds, nil
}

// TransferSharesIn adds n shares coming from another account and returns
// the number of shares held before.
func (a *Account) TransferSharesIn(n int, stock *security.Stock, when date.Date) (int, error) {
	mv := stock.MarketValue(n)
	switch a.kind {
	case RIF, LIF:
		return 0, a.notPermittedInto("transfer")
	case TFSA:
		if err := a.room.ReduceFromContribution(mv, when.Year()); err != nil {
			return 0, err
		}
	case NRA:
		a.nra.increase(stock.Symbol(), mv)
	}
	return a.increase(n, stock), nil
}

// TransferSharesOut removes n shares going to another account and returns
// the number of shares held before.
//
// A RIF or LIF records the market value as income. A NRA makes a deemed
// disposition at market value, where a loss is superficial and dropped.
func (a *Account) TransferSharesOut(n int, stock *security.Stock, when date.Date) (int, error) {
	if a.locked(when) {
		return 0, a.notPermitted("transfer out before " + a.reg.conversion.String())
	}
	mv := stock.MarketValue(n)
	if held, _ := a.PositionFor(stock.Symbol()); held < n {
		return 0, fmt.Errorf("%w: cannot transfer %d %s out of a %s holding %d", endgame.ErrInsufficientShares, n, stock.Symbol(), a.kind, held)
	}
	var err error
	switch a.kind {
	case RIF:
		_, err = a.reg.tax.AddRifIncome(mv)
	case LIF:
		_, err = a.reg.tax.AddLifIncome(mv)
	case NRA:
		var consumed endgame.Money
		if consumed, err = a.nra.dispose(a.lookUp(stock.Symbol()), n, stock.Symbol()); err != nil {
			err = fmt.Errorf("cannot transfer out: %w", err)
		} else if gain := mv.Sub(consumed); !gain.IsNegative() {
			a.nra.gains.AddGainOrLoss(a.nra.tax.Year(), gain)
		}
	}
	if err != nil {
		return 0, err
	}
	orig, err := a.reduce(n, stock)
	if err != nil {
		return 0, err
	}
	if a.kind == TFSA {
		a.room.IncreaseFromWithdrawal(mv, when.Year())
	}
	return orig, nil
}

// SplitPosition multiplies the shares held for symbol by factor.
func (a *Account) SplitPosition(symbol string, factor int) {
	if p := a.lookUp(symbol); p != nil {
		p.Shares *= factor
	}
}

// BuyGIC pays the principal out of cash and holds the GIC until maturity.
func (a *Account) BuyGIC(g security.GIC) error {
	if a.HoldsGIC(g) {
		return fmt.Errorf("%w: the %s already holds %s", endgame.ErrInvalid, a.kind, g)
	}
	if a.cash.LessThan(g.Principal) {
		return fmt.Errorf("%w: cannot buy a GIC for %s, the %s has only %s", endgame.ErrInsufficientCash, g.Principal, a.kind, a.cash)
	}
	a.cash = a.cash.Sub(g.Principal)
	a.gics = append(a.gics, g)
	return nil
}

// HoldsGIC reports whether the account holds g.
func (a *Account) HoldsGIC(g security.GIC) bool {
	return slices.ContainsFunc(a.gics, func(h security.GIC) bool { return h.Key() == g.Key() })
}

// RedeemGIC cashes in principal plus interest and returns the proceeds.
func (a *Account) RedeemGIC(g security.GIC) (endgame.Money, error) {
	i := slices.IndexFunc(a.gics, func(h security.GIC) bool { return h.Key() == g.Key() })
	if i < 0 {
		return endgame.Money{}, fmt.Errorf("%w: the %s does not hold %s", endgame.ErrInvalid, a.kind, g)
	}
	proceeds := g.RedemptionValue()
	a.cash = a.cash.Add(proceeds)
	a.gics = slices.Delete(a.gics, i, i+1)
	return proceeds, nil
}

// AccrueGICInterest reports the interest accrued on a GIC anniversary as
// taxable interest income. Only a NRA does that.
func (a *Account) AccrueGICInterest(g security.GIC, anniversary date.Date) (endgame.Money, error) {
	if a.kind != NRA {
		return endgame.Money{}, a.notPermitted("interest accrual")
	}
	if !a.HoldsGIC(g) {
		return endgame.Money{}, fmt.Errorf("%w: the %s does not hold %s", endgame.ErrInvalid, a.kind, g)
	}
	interest, err := g.AccruedInterestFor(anniversary)
	if err != nil {
		return interest, err
	}
	a.nra.tax.AddNraInterest(interest)
	return interest, nil
}

// Dividend adds a dividend to cash. All dividends are eligible dividends.
func (a *Account) Dividend(amount endgame.Money) {
	a.cash = a.cash.Add(amount)
	if a.kind == NRA {
		a.nra.tax.AddNraDividend(amount)
	}
}

func (a *Account) lookUp(symbol string) *Position {
	for _, p := range a.positions {
		if p.Stock.Symbol() == symbol {
			return p
		}
	}
	return nil
}

// increase increases an existing position or creates a new one, and returns
// the original number of shares.
func (a *Account) increase(n int, stock *security.Stock) int {
	p := a.lookUp(stock.Symbol())
	if p == nil {
		a.positions = append(a.positions, &Position{Stock: stock, Shares: n})
		return 0
	}
	orig := p.Shares
	p.Shares += n
	return orig
}

// reduce reduces an existing position, removing it when empty, and returns
// the original number of shares.
func (a *Account) reduce(n int, stock *security.Stock) (int, error) {
	p := a.lookUp(stock.Symbol())
	if p == nil {
		return 0, fmt.Errorf("%w: no %s position in the %s", endgame.ErrInsufficientShares, stock.Symbol(), a.kind)
	}
	if n > p.Shares {
		return 0, fmt.Errorf("%w: cannot remove %d %s, the %s position is only %d", endgame.ErrInsufficientShares, n, stock.Symbol(), a.kind, p.Shares)
	}
	orig := p.Shares
	p.Shares -= n
	a.positions = slices.DeleteFunc(a.positions, func(p *Position) bool { return p.Shares == 0 })
	return orig, nil
}

func (a *Account) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s {cash:%s stocks:[", a.kind, a.cash)
	for i, p := range a.positions {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d %s", p.Shares, p.Stock)
	}
	fmt.Fprintf(&b, "] GICs:%d", len(a.gics))
	if a.reg != nil {
		fmt.Fprintf(&b, " conversion:%s", a.reg.conversion)
	}
	if a.kind == LIF {
		fmt.Fprintf(&b, " jurisdiction:%s", a.reg.jurisdiction)
	}
	b.WriteString("}")
	return b.String()
}
