package tax

import (
	"errors"
	"testing"

	"github.com/etnz/endgame"
)

func testBrackets(t *testing.T, rows ...[2]string) *Brackets {
	t.Helper()
	var bs []Bracket
	for _, r := range rows {
		b, err := ParseBracket(r[0], r[1])
		if err != nil {
			t.Fatalf("ParseBracket(%q, %q) error = %v", r[0], r[1], err)
		}
		bs = append(bs, b)
	}
	b, err := NewBrackets(bs...)
	if err != nil {
		t.Fatalf("NewBrackets() error = %v", err)
	}
	return b
}

func TestTaxFor(t *testing.T) {
	b := testBrackets(t, [2]string{"15.0%", "50000"}, [2]string{"20.5%", "100000"}, [2]string{"26%", "150000"})

	tests := []struct {
		income, want float64
	}{
		{-5, 0},
		{0, 0},
		{10000, 1500},
		{50000, 7500},
		{60000, 9550},
		{100000, 17750},
		{150000, 30750},
		{200000, 43750},
	}
	for _, tt := range tests {
		if got := b.TaxFor(endgame.CAD(tt.income)); !got.Equal(endgame.CAD(tt.want)) {
			t.Errorf("TaxFor(%v) = %v, want %v", tt.income, got, tt.want)
		}
	}
	if got, want := b.LowestRate(), endgame.R(0.15); !got.Equal(want) {
		t.Errorf("LowestRate() = %v, want %v", got, want)
	}
}

func TestTaxForIsContinuous(t *testing.T) {
	b := testBrackets(t, [2]string{"10%", "1000"}, [2]string{"20%", "2000"})
	cent := endgame.CAD(0.01)
	at, above := b.TaxFor(endgame.CAD(1000)), b.TaxFor(endgame.CAD(1000).Add(cent))
	if d := above.Sub(at); d.GreaterThan(cent) {
		t.Errorf("TaxFor jumps by %v at a bracket boundary", d)
	}
}

func TestNewBracketsErrors(t *testing.T) {
	if _, err := NewBrackets(); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("NewBrackets() error = %v, want ErrConfig", err)
	}
	rows := []Bracket{
		{Rate: endgame.R(0.1), Max: endgame.CAD(2000)},
		{Rate: endgame.R(0.2), Max: endgame.CAD(1000)},
	}
	if _, err := NewBrackets(rows...); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("NewBrackets(decreasing) error = %v, want ErrConfig", err)
	}
	if _, err := ParseBracket("ten", "1000"); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("ParseBracket(ten) error = %v, want ErrConfig", err)
	}
}

func TestClawbackHelpers(t *testing.T) {
	rate := endgame.R(0.15)
	if got, want := Clawback(endgame.CAD(40380), endgame.CAD(40000), rate), endgame.CAD(57); !got.Equal(want) {
		t.Errorf("Clawback() = %v, want %v", got, want)
	}
	if got := Clawback(endgame.CAD(100), endgame.CAD(40000), rate); !got.IsZero() {
		t.Errorf("Clawback(below threshold) = %v, want 0", got)
	}
	if got, want := BaseMinusClawback(endgame.CAD(8000), endgame.CAD(40380), endgame.CAD(40000), rate), endgame.CAD(7943); !got.Equal(want) {
		t.Errorf("BaseMinusClawback() = %v, want %v", got, want)
	}
	if got := BaseMinusClawback(endgame.CAD(8000), endgame.CAD(200000), endgame.CAD(40000), rate); !got.IsZero() {
		t.Errorf("BaseMinusClawback(high income) = %v, want 0", got)
	}
	if got, want := LesserOf(endgame.CAD(20000), endgame.CAD(2000)), endgame.CAD(2000); !got.Equal(want) {
		t.Errorf("LesserOf() = %v, want %v", got, want)
	}
	if got := LesserOf(endgame.CAD(-5), endgame.CAD(2000)); !got.IsZero() {
		t.Errorf("LesserOf(negative) = %v, want 0", got)
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("150000_200000")
	if err != nil {
		t.Fatalf("ParseRange() error = %v", err)
	}
	if !r.Min.Equal(endgame.CAD(150000)) || !r.Max.Equal(endgame.CAD(200000)) {
		t.Errorf("ParseRange() = %v", r)
	}
	for _, s := range []string{"150000", "200000_150000", "a_b"} {
		if _, err := ParseRange(s); !errors.Is(err, endgame.ErrConfig) {
			t.Errorf("ParseRange(%q) error = %v, want ErrConfig", s, err)
		}
	}
}
