package security

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

func TestSplit(t *testing.T) {
	start := date.New(2025, time.January, 1)
	s := NewStock("BNS", endgame.CAD(100), &Dividend{Amount: endgame.CAD(1)}, start)
	s.UpdatePrice(endgame.CAD(120), start.Add(1))

	s.Split(2)

	if got, want := s.Price(), endgame.CAD(60); !got.Equal(want) {
		t.Errorf("Price() = %v, want %v", got, want)
	}
	if got, want := s.Dividend().Amount, endgame.CAD(0.5); !got.Equal(want) {
		t.Errorf("Dividend().Amount = %v, want %v", got, want)
	}
	if got, _ := s.History().Get(start); !got.Equal(endgame.CAD(50)) {
		t.Errorf("History().Get(%v) = %v, want %v", start, got, endgame.CAD(50))
	}
}

func TestDividendPerShare(t *testing.T) {
	d := &Dividend{Amount: endgame.CAD(1), Growth: endgame.MustParseRate("10%")}
	tests := []struct {
		year int
		want endgame.Money
	}{
		{2025, endgame.CAD(1)},
		{2024, endgame.CAD(1)},
		{2026, endgame.CAD(1.1)},
		{2027, endgame.CAD(1.21)},
	}
	for _, tt := range tests {
		if got := d.PerShare(tt.year, 2025); !got.Equal(tt.want) {
			t.Errorf("PerShare(%d, 2025) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestGICInterest(t *testing.T) {
	purchase := date.New(2025, time.March, 15)
	g, err := NewGIC(endgame.CAD(1000), "EQ Bank", endgame.MustParseRate("5%"), purchase, 3)
	if err != nil {
		t.Fatalf("NewGIC() error = %v", err)
	}

	if got, want := g.Maturity(), date.New(2028, time.March, 15); got != want {
		t.Errorf("Maturity() = %v, want %v", got, want)
	}
	if got, want := g.TotalInterest(), endgame.CAD(157.62); !got.Equal(want) {
		t.Errorf("TotalInterest() = %v, want %v", got, want)
	}
	if got, want := g.RedemptionValue(), endgame.CAD(1157.62); !got.Equal(want) {
		t.Errorf("RedemptionValue() = %v, want %v", got, want)
	}

	wants := []endgame.Money{endgame.CAD(50), endgame.CAD(52.5), endgame.CAD(55.12)}
	var total endgame.Money
	for i, anniversary := range g.Anniversaries() {
		got, err := g.AccruedInterestFor(anniversary)
		if err != nil {
			t.Fatalf("AccruedInterestFor(%v) error = %v", anniversary, err)
		}
		if !got.Equal(wants[i]) {
			t.Errorf("AccruedInterestFor(%v) = %v, want %v", anniversary, got, wants[i])
		}
		total = total.Add(got)
	}
	if !total.Equal(g.TotalInterest()) {
		t.Errorf("sum of accrued interest = %v, want %v", total, g.TotalInterest())
	}

	if _, err := g.AccruedInterestFor(purchase.Add(1)); !errors.Is(err, endgame.ErrInvalid) {
		t.Errorf("AccruedInterestFor(not an anniversary) error = %v, want ErrInvalid", err)
	}
}

func TestGICValidation(t *testing.T) {
	purchase := date.New(2025, time.March, 15)
	five := endgame.MustParseRate("5%")
	tests := []struct {
		name      string
		principal endgame.Money
		rate      endgame.Rate
		term      int
	}{
		{"negative principal", endgame.CAD(-1), five, 1},
		{"negative rate", endgame.CAD(1000), five.Neg(), 1},
		{"term too short", endgame.CAD(1000), five, 0},
		{"term too long", endgame.CAD(1000), five, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGIC(tt.principal, "Bank", tt.rate, purchase, tt.term); !errors.Is(err, endgame.ErrConfig) {
				t.Errorf("NewGIC() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestGICMaturingOn(t *testing.T) {
	maturity := date.New(2027, time.June, 1)
	g, err := NewGICMaturingOn(endgame.CAD(5000), "Bank", endgame.MustParseRate("4%"), maturity, 2)
	if err != nil {
		t.Fatalf("NewGICMaturingOn() error = %v", err)
	}
	if got, want := g.Purchase, date.New(2025, time.June, 1); got != want {
		t.Errorf("Purchase = %v, want %v", got, want)
	}
	if g.Maturity() != maturity {
		t.Errorf("Maturity() = %v, want %v", g.Maturity(), maturity)
	}
}

func TestUpdatePrice(t *testing.T) {
	start := date.New(2025, time.January, 1)
	s := NewStock("RY", endgame.CAD(100), nil, start)
	p := FixedGrowth{Rate: endgame.MustParseRate("10%")}

	UpdatePrice(p, s, start.AddYears(1))
	UpdatePrice(p, s, start.AddYears(2))

	if got, want := s.Price(), endgame.CAD(121); !got.Equal(want) {
		t.Errorf("Price() = %v, want %v", got, want)
	}
	if got, want := s.History().Len(), 3; got != want {
		t.Errorf("History().Len() = %d, want %d", got, want)
	}
}

func TestExplicitGrowth(t *testing.T) {
	if _, err := NewExplicitGrowth(endgame.R(0.1)); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("NewExplicitGrowth(one rate) error = %v, want ErrConfig", err)
	}

	p, err := NewExplicitGrowth(endgame.R(0.1), endgame.R(-0.05))
	if err != nil {
		t.Fatalf("NewExplicitGrowth() error = %v", err)
	}
	want := []endgame.Rate{endgame.R(0.1), endgame.R(-0.05), endgame.R(0.1), endgame.R(-0.05)}
	for i, w := range want {
		day := date.New(2030+i, time.January, 1)
		if got := p.Growth(day); !got.Equal(w) {
			t.Errorf("Growth(%v) = %v, want %v", day, got, w)
		}
	}
}

func TestRandomGrowth(t *testing.T) {
	day := date.New(2030, time.January, 1)
	lo, hi := endgame.R(-0.1), endgame.R(0.2)

	a := RangedGrowth{Low: lo, High: hi, Rand: rand.New(rand.NewPCG(1, 2))}
	b := RangedGrowth{Low: lo, High: hi, Rand: rand.New(rand.NewPCG(1, 2))}
	for range 100 {
		ga, gb := a.Growth(day), b.Growth(day)
		if !ga.Equal(gb) {
			t.Fatalf("same seed yields %v and %v", ga, gb)
		}
		if ga.Float() < lo.Float() || ga.Float() >= hi.Float() {
			t.Fatalf("Growth() = %v, not in range %v..%v", ga, lo, hi)
		}
	}

	g := GaussianGrowth{Mean: endgame.R(0.05), StdDev: endgame.R(0), Rand: rand.New(rand.NewPCG(3, 4))}
	if got := g.Growth(day); got.Float() != 0.05 {
		t.Errorf("GaussianGrowth with no deviation = %v, want 5%%", got)
	}
}

func TestCommission(t *testing.T) {
	price := endgame.CAD(10)
	tests := []struct {
		name string
		c    Commission
		want endgame.Money
	}{
		{"fixed amount", FixedAmount{Amount: endgame.CAD(9.99)}, endgame.CAD(9.99)},
		{"fixed percent", FixedPercent{Rate: endgame.MustParseRate("1%")}, endgame.CAD(10)},
		{"none", NoCommission{}, endgame.CAD(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.On(100, price); !got.Equal(tt.want) {
				t.Errorf("On(100, %v) = %v, want %v", price, got, tt.want)
			}
		})
	}
}
