package account

import (
	"github.com/etnz/endgame"
	"github.com/etnz/endgame/security"
)

// Snapshot is an immutable copy of an account, taken for reporting.
type Snapshot struct {
	Name      string             `json:"name"`
	Cash      endgame.Money      `json:"cash"`
	Positions []PositionSnapshot `json:"positions,omitempty"`
	GICs      []GICSnapshot      `json:"gics,omitempty"`
}

// PositionSnapshot is a stock position valued at the snapshot time.
type PositionSnapshot struct {
	Symbol string        `json:"symbol"`
	Shares int           `json:"shares"`
	Price  endgame.Money `json:"price"`
}

func (p PositionSnapshot) MarketValue() endgame.Money { return p.Price.TimesInt(p.Shares) }

// GICSnapshot is a GIC held at the snapshot time.
type GICSnapshot struct {
	Name      string        `json:"name"`
	Principal endgame.Money `json:"principal"`
}

// Snapshot returns a snapshot of the account at current prices.
func (a *Account) Snapshot() Snapshot {
	s := Snapshot{Name: a.kind.String(), Cash: a.cash}
	for _, p := range a.positions {
		s.Positions = append(s.Positions, PositionSnapshot{Symbol: p.Stock.Symbol(), Shares: p.Shares, Price: p.Stock.Price()})
	}
	for _, g := range a.gics {
		s.GICs = append(s.GICs, snapshotGIC(g))
	}
	return s
}

func snapshotGIC(g security.GIC) GICSnapshot {
	return GICSnapshot{Name: g.ShortName(), Principal: g.Principal}
}

// Snapshot returns a snapshot of the bank account.
func (b *Bank) Snapshot() Snapshot { return Snapshot{Name: "Bank", Cash: b.cash} }

// MarketValue is cash plus positions plus GIC principals.
func (s Snapshot) MarketValue() endgame.Money {
	v := s.Cash
	for _, p := range s.Positions {
		v = v.Add(p.MarketValue())
	}
	for _, g := range s.GICs {
		v = v.Add(g.Principal)
	}
	return v
}

// Set is the snapshot of every account at one point in time.
type Set []Snapshot

// NetWorth sums the market value of every account.
func (s Set) NetWorth() endgame.Money {
	var total endgame.Money
	for _, a := range s {
		total = total.Add(a.MarketValue())
	}
	return total
}

// Get returns the snapshot of the named account.
func (s Set) Get(name string) (Snapshot, bool) {
	for _, a := range s {
		if a.Name == name {
			return a, true
		}
	}
	return Snapshot{}, false
}
