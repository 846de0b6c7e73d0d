package endgame

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyAddSubRoundTrip(t *testing.T) {
	tests := []struct{ a, b string }{
		{"10.00", "0.01"},
		{"-5.25", "1234.5"},
		{"0", "0.001"},
		{"99999999.99", "-99999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"+"+tt.b, func(t *testing.T) {
			a, b := MustParseMoney(tt.a), MustParseMoney(tt.b)
			if got := a.Add(b).Sub(b); !got.Equal(a) {
				t.Errorf("%s + %s - %s = %s, want %s", a, b, b, got, a)
			}
		})
	}
}

func TestMoneyTimes(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		factor string
		want   string
		exp    int32
	}{
		{"integral keeps scale", "1.5", "3", "4.5", -1},
		{"integral keeps long scale", "1.2345", "2", "2.469", -4},
		{"fraction rounds half even down", "0.25", "0.5", "0.12", -2},
		{"fraction rounds half even up", "0.35", "0.5", "0.18", -2},
		{"gross up", "100.00", "1.38", "138.00", -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustParseMoney(tt.amount).Times(decimal.RequireFromString(tt.factor))
			if want := MustParseMoney(tt.want); !got.Equal(want) {
				t.Errorf("Times() = %s, want %s", got.Plain(), want.Plain())
			}
			if got.Decimal().Exponent() != tt.exp {
				t.Errorf("Times() exponent = %d, want %d", got.Decimal().Exponent(), tt.exp)
			}
		})
	}
}

func TestMoneyDivByInt(t *testing.T) {
	if got, want := MustParseMoney("10.00").DivByInt(3), MustParseMoney("3.33"); !got.Equal(want) {
		t.Errorf("DivByInt(3) = %s, want %s", got, want)
	}
	if got, want := MustParseMoney("0.05").DivByInt(2), MustParseMoney("0.02"); !got.Equal(want) {
		t.Errorf("DivByInt(2) = %s, want %s", got, want)
	}
}

func TestMoneyFlooredDiv(t *testing.T) {
	tests := []struct {
		amount, price string
		want          int
	}{
		{"1000.00", "33.00", 30},
		{"99.99", "100.00", 0},
		{"100.00", "25.00", 4},
		{"-100.00", "30.00", -3},
	}
	for _, tt := range tests {
		if got := MustParseMoney(tt.amount).FlooredDiv(MustParseMoney(tt.price)); got != tt.want {
			t.Errorf("%s.FlooredDiv(%s) = %d, want %d", tt.amount, tt.price, got, tt.want)
		}
	}
}

func TestMoneyEqualVersusIdentical(t *testing.T) {
	a, b := MustParseMoney("1.5"), MustParseMoney("1.50")
	if !a.Equal(b) {
		t.Errorf("%s should equal %s", a.Plain(), b.Plain())
	}
	if a.Identical(b) {
		t.Errorf("1.5 and 1.50 should not be identical")
	}
	if !b.Identical(MustParseMoney("1.50")) {
		t.Errorf("1.50 should be identical to itself")
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrCurrencyMismatch) {
			t.Errorf("recover() = %v, want ErrCurrencyMismatch", r)
		}
	}()
	M(1, "CAD").Add(M(1, "USD"))
}

func TestMoneyZeroValueIsWeak(t *testing.T) {
	var total Money
	total = total.Add(CAD(12))
	if got := total.Currency(); got != "CAD" {
		t.Errorf("Currency() = %q, want CAD", got)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"1,234.56", "1234.56", false},
		{"$1234.56", "1234.56", false},
		{"-$12", "-12", false},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseMoney(%q) error = %v, want error %v", tt.in, err, tt.err)
			continue
		}
		if !tt.err && !got.Equal(MustParseMoney(tt.want)) {
			t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"5%", 0.05},
		{"15.0%", 0.15},
		{"0.0528", 0.0528},
		{" 2.5 % ", 0.025},
	}
	for _, tt := range tests {
		got, err := ParseRate(tt.in)
		if err != nil {
			t.Fatalf("ParseRate(%q) error: %v", tt.in, err)
		}
		if !got.Equal(R(tt.want)) {
			t.Errorf("ParseRate(%q) = %s, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRateCompound(t *testing.T) {
	got := CAD(1000).TimesRate(MustParseRate("10%").Compound(2))
	if want := MustParseMoney("210.00"); !got.Equal(want) {
		t.Errorf("compound interest = %s, want %s", got, want)
	}
}
