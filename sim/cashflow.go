package sim

import (
	"fmt"
	"strings"

	"github.com/etnz/endgame"
)

// CashFlow accumulates the cash generated during a year.
type CashFlow struct {
	CPP       endgame.Money `json:"cpp"`
	OAS       endgame.Money `json:"oas"`
	GIS       endgame.Money `json:"gis"`
	Pension   endgame.Money `json:"pension"`
	Dividends endgame.Money `json:"dividends"`
	// Liquidation is the net of sales minus purchases.
	Liquidation endgame.Money `json:"liquidation"`
	Interest    endgame.Money `json:"interest"`
	// Swept is the cash moved from investment accounts into the bank.
	Swept endgame.Money `json:"swept"`
}

// NewCashFlow returns a cash flow with every amount at zero.
func NewCashFlow() *CashFlow {
	c := new(CashFlow)
	for _, m := range c.amounts() {
		*m = endgame.Zero(endgame.DefaultCurrency)
	}
	return c
}

func (c *CashFlow) amounts() []*endgame.Money {
	return []*endgame.Money{&c.CPP, &c.OAS, &c.GIS, &c.Pension, &c.Dividends, &c.Liquidation, &c.Interest, &c.Swept}
}

// Total is the cash generated, swept cash excluded since it was already
// counted when it was generated.
func (c CashFlow) Total() endgame.Money {
	return c.CPP.Add(c.OAS).Add(c.GIS).Add(c.Pension).Add(c.Dividends).Add(c.Liquidation).Add(c.Interest)
}

// EntitlementsAndSweeps is the cash that reached the bank account.
func (c CashFlow) EntitlementsAndSweeps() endgame.Money {
	return c.CPP.Add(c.OAS).Add(c.GIS).Add(c.Pension).Add(c.Swept)
}

// Add returns the sum of two cash flows.
func (c CashFlow) Add(o CashFlow) CashFlow {
	a, b := c.amounts(), o.amounts()
	for i := range a {
		*a[i] = a[i].Add(*b[i])
	}
	return c
}

// DivByInt divides every amount by n.
func (c CashFlow) DivByInt(n int) CashFlow {
	for _, m := range c.amounts() {
		*m = m.DivByInt(n)
	}
	return c
}

// SumCashFlows sums a list of cash flows.
func SumCashFlows(flows []CashFlow) CashFlow {
	total := *NewCashFlow()
	for _, f := range flows {
		total = total.Add(f)
	}
	return total
}

func (c CashFlow) String() string {
	var b strings.Builder
	line := func(m endgame.Money, name string) { fmt.Fprintf(&b, "%14s %s\n", m.Plain(), name) }
	b.WriteString("Cash generated\n")
	line(c.EntitlementsAndSweeps(), "Entitlements and sweeps")
	line(c.CPP, "CPP")
	line(c.OAS, "OAS")
	line(c.GIS, "GIS")
	line(c.Pension, "Pension")
	line(c.Dividends, "Dividends")
	line(c.Liquidation, "Net liquidation (sell minus buy)")
	line(c.Interest, "Interest")
	line(c.Swept, "Cash swept into the bank")
	line(c.Total(), "Total cash generated")
	return b.String()
}
