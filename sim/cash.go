package sim

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/date"
)

// MoveCash moves cash between two accounts, the bank included. With a zero
// Amount, the full cash balance of From is moved.
//
// Withdrawals from a RIF or LIF are taxable and usually have tax withheld,
// the target receives the net amount. Deposits to a RIF or LIF fail.
type MoveCash struct {
	From, To Holder
	Amount   endgame.Money
}

// NewMoveCash returns a MoveCash, refusing to move cash onto itself or to
// move a negative amount.
func NewMoveCash(from, to Holder, amount endgame.Money) (*MoveCash, error) {
	if from == to {
		return nil, fmt.Errorf("%w: cannot move cash from the %s back to the %s", endgame.ErrConfig, from, to)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: cannot move a negative amount %s from the %s to the %s", endgame.ErrConfig, amount, from, to)
	}
	return &MoveCash{From: from, To: to, Amount: amount}, nil
}

func (m *MoveCash) Execute(day date.Date, sc *Scenario) error {
	from, err := sc.Cashable(m.From)
	if err != nil {
		return err
	}
	to, err := sc.Cashable(m.To)
	if err != nil {
		return err
	}
	gross := m.Amount
	if gross.IsNegative() {
		return fmt.Errorf("%w: cannot move a negative amount %s", endgame.ErrInvalid, gross)
	}
	if gross.IsZero() {
		gross = from.Cash()
	} else if gross.GreaterThan(from.Cash()) {
		return fmt.Errorf("%w: cannot move %s out of the %s, only %s available", endgame.ErrInsufficientCash, gross, m.From, from.Cash())
	}
	if !from.Cash().IsPositive() {
		return nil
	}
	// The target is checked for the gross amount, an upper bound of what
	// it receives.
	if a, ok := to.(*account.Account); ok {
		if err := a.CanReceive(gross, day); err != nil {
			return err
		}
	}
	withheld, err := from.WithdrawCash(gross, day)
	if err != nil {
		return err
	}
	net := gross.Sub(withheld)
	if err := to.DepositCash(net, day); err != nil {
		return err
	}
	if m.To == Bank {
		sc.CashFlow.Swept = sc.CashFlow.Swept.Add(net)
	}
	logFor(sc, day, m).WithField("withheld", withheld.String()).Infof("%s: net %s", m, net)
	return nil
}

func (m *MoveCash) String() string {
	amount := "all the cash"
	if !m.Amount.IsZero() {
		amount = m.Amount.String()
	}
	return fmt.Sprintf("move %s from %s to %s", amount, strings.ToUpper(string(m.From)), strings.ToUpper(string(m.To)))
}

// SweepCashFrom moves the whole cash balance of an investment account into
// the bank.
type SweepCashFrom struct {
	From Holder
}

func (s *SweepCashFrom) Execute(day date.Date, sc *Scenario) error {
	from, err := sc.Account(s.From)
	if err != nil {
		return err
	}
	amount := from.Cash()
	if !amount.IsPositive() {
		return nil
	}
	withheld, err := from.WithdrawCash(amount, day)
	if err != nil {
		return err
	}
	net := amount.Sub(withheld)
	sc.Bank.Deposit(net, day)
	sc.CashFlow.Swept = sc.CashFlow.Swept.Add(net)
	logFor(sc, day, s).WithField("withheld", withheld.String()).Infof("%s: %s", s, net)
	return nil
}

func (s *SweepCashFrom) String() string {
	return "sweep cash from " + strings.ToUpper(string(s.From))
}

// BankDepositWithdrawal is a bank deposit or withdrawal with no tax
// consequences: rent, household spending, a windfall.
type BankDepositWithdrawal struct {
	Amount  endgame.Money
	Deposit bool
}

func (b *BankDepositWithdrawal) Execute(day date.Date, sc *Scenario) error {
	logFor(sc, day, b).Info(b.String())
	if b.Deposit {
		sc.Bank.Deposit(b.Amount, day)
		return nil
	}
	return sc.Bank.Withdraw(b.Amount, day)
}

func (b *BankDepositWithdrawal) String() string {
	if b.Deposit {
		return "bank deposit " + b.Amount.String()
	}
	return "bank withdrawal " + b.Amount.String()
}

// BankDebitCredit is a signed BankDepositWithdrawal: a positive amount is
// withdrawn, a negative one deposited.
type BankDebitCredit struct {
	Amount endgame.Money
}

func (b *BankDebitCredit) Execute(day date.Date, sc *Scenario) error {
	logFor(sc, day, b).Info(b.String())
	if b.Amount.IsPositive() {
		return sc.Bank.Withdraw(b.Amount, day)
	}
	sc.Bank.Deposit(b.Amount.Abs(), day)
	return nil
}

func (b *BankDebitCredit) String() string { return "bank spend " + b.Amount.String() }

// EmploymentPayday is a gross paycheck from a job held between two dates.
// The gross amount is employment income.
type EmploymentPayday struct {
	Job     date.Range
	Monthly endgame.Money
}

func (e *EmploymentPayday) Execute(day date.Date, sc *Scenario) error {
	if !e.Job.Contains(day) {
		return nil
	}
	return paycheck(day, sc, e, e.Monthly)
}

func (e *EmploymentPayday) String() string {
	return fmt.Sprintf("payday %s (job %s)", e.Monthly, e.Job)
}

// SmallPaycheck is an EmploymentPayday with no job dates: its schedule is
// enough.
type SmallPaycheck struct {
	Monthly endgame.Money
}

func (s *SmallPaycheck) Execute(day date.Date, sc *Scenario) error {
	return paycheck(day, sc, s, s.Monthly)
}

func (s *SmallPaycheck) String() string { return "small paycheck " + s.Monthly.String() }

func paycheck(day date.Date, sc *Scenario, a Action, gross endgame.Money) error {
	sc.Bank.Deposit(gross, day)
	sc.Federal.AddEmploymentIncome(gross)
	logFor(sc, day, a).Info(a.String())
	return nil
}

// SplurgeSpending spends whatever is in the bank above a minimum balance.
type SplurgeSpending struct {
	MinBalance endgame.Money
}

func (s *SplurgeSpending) Execute(day date.Date, sc *Scenario) error {
	balance := sc.Bank.Cash()
	if !balance.GreaterThan(s.MinBalance) {
		return nil
	}
	amount := balance.Sub(s.MinBalance)
	if err := sc.Bank.Withdraw(amount, day); err != nil {
		return err
	}
	logFor(sc, day, s).Infof("splurge %s", amount)
	return nil
}

func (s *SplurgeSpending) String() string { return "splurge above " + s.MinBalance.String() }

// AnnuityPayment is a fixed pension deposited to the bank, reported as
// pension income.
type AnnuityPayment struct {
	Amount endgame.Money
}

func (a *AnnuityPayment) Execute(day date.Date, sc *Scenario) error {
	sc.Bank.Deposit(a.Amount, day)
	sc.Federal.AddPensionIncome(a.Amount)
	sc.CashFlow.Pension = sc.CashFlow.Pension.Add(a.Amount)
	logFor(sc, day, a).Info(a.String())
	return nil
}

func (a *AnnuityPayment) String() string { return "annuity payment " + a.Amount.String() }

// PayTaxes settles the balance owing of the year from the bank. A refund is
// deposited. It is meant to be the last transaction of December 31.
type PayTaxes struct{}

func (p *PayTaxes) Execute(day date.Date, sc *Scenario) error {
	owed, err := sc.Federal.BalanceOwing()
	if err != nil {
		return err
	}
	logFor(sc, day, p).Infof("balance owing %s", owed)
	if owed.IsPositive() {
		return sc.Bank.Withdraw(owed, day)
	}
	sc.Bank.Deposit(owed.Neg(), day)
	return nil
}

func (p *PayTaxes) String() string { return "pay taxes" }
