package account

import (
	"fmt"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/sirupsen/logrus"
)

// Cashable is anything cash can be moved in and out of.
type Cashable interface {
	Cash() endgame.Money
	DepositCash(amount endgame.Money, when date.Date) error
	WithdrawCash(amount endgame.Money, when date.Date) (withheld endgame.Money, err error)
}

var (
	_ Cashable = (*Bank)(nil)
	_ Cashable = (*Account)(nil)
)

// Bank is a cash-only bank account. It never goes into overdraft.
type Bank struct {
	cash  endgame.Money
	limit endgame.Money
	log   logrus.FieldLogger
}

// NewBank returns a bank account warning through log whenever its balance
// falls under the small balance limit.
func NewBank(cash, smallBalanceLimit endgame.Money, log logrus.FieldLogger) *Bank {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bank{cash: cash, limit: smallBalanceLimit, log: log}
}

func (b *Bank) Cash() endgame.Money              { return b.cash }
func (b *Bank) SmallBalanceLimit() endgame.Money { return b.limit }

// SetLogger replaces the logger, typically with one carrying run fields.
func (b *Bank) SetLogger(log logrus.FieldLogger) { b.log = log }

// Deposit adds amount to the balance.
func (b *Bank) Deposit(amount endgame.Money, when date.Date) {
	b.cash = b.cash.Add(amount)
}

// Withdraw subtracts amount from the balance.
func (b *Bank) Withdraw(amount endgame.Money, when date.Date) error {
	if b.cash.LessThan(amount) {
		return fmt.Errorf("%w: withdrawing %s from the bank, which has only %s", endgame.ErrInsufficientCash, amount, b.cash)
	}
	b.cash = b.cash.Sub(amount)
	if b.cash.LessThan(b.limit) {
		b.log.WithFields(logrus.Fields{"date": when, "balance": b.cash.String()}).
			Warnf("bank balance is under the small balance limit of %s", b.limit)
	}
	return nil
}

// DepositCash is Deposit, so that a bank can stand where an account is expected.
func (b *Bank) DepositCash(amount endgame.Money, when date.Date) error {
	b.Deposit(amount, when)
	return nil
}

// WithdrawCash is Withdraw. Nothing is ever withheld from a bank withdrawal.
func (b *Bank) WithdrawCash(amount endgame.Money, when date.Date) (endgame.Money, error) {
	return endgame.Zero(amount.Currency()), b.Withdraw(amount, when)
}

func (b *Bank) String() string { return fmt.Sprintf("BANK {cash:%s limit:%s}", b.cash, b.limit) }
