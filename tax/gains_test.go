package tax

import (
	"testing"

	"github.com/etnz/endgame"
)

func TestGainAfterOffsets(t *testing.T) {
	tests := []struct {
		name  string
		gains []float64
		loss  float64
		want  float64
		left  float64 // loss left after offsets
	}{
		{"no loss", []float64{1000}, 0, 1000, 0},
		{"smaller loss", []float64{1000}, 400, 600, 0},
		{"equal loss", []float64{500}, 500, 0, 0},
		{"larger loss", []float64{300}, 1000, 0, 700},
		{"loss spread in order", []float64{100, 200}, 250, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCapitalGains()
			for _, g := range tt.gains {
				c.AddGainOrLoss(2025, endgame.CAD(g))
			}
			c.AddGainOrLoss(2025, endgame.CAD(-tt.loss))

			if got := c.GainAfterOffsetsApplied(2025); !got.Equal(endgame.CAD(tt.want)) {
				t.Errorf("GainAfterOffsetsApplied() = %v, want %v", got, tt.want)
			}
			if got := c.GainAfterOffsetsApplied(2025); !got.Equal(endgame.CAD(tt.want)) {
				t.Errorf("second GainAfterOffsetsApplied() = %v, want %v", got, tt.want)
			}
			left := endgame.CAD(0)
			for _, l := range c.Losses() {
				left = left.Add(l.Offsetable)
			}
			if !left.Equal(endgame.CAD(tt.left)) {
				t.Errorf("loss left = %v, want %v", left, tt.left)
			}
		})
	}
}

func TestLossCarryForward(t *testing.T) {
	c := NewCapitalGains()
	c.AddGainOrLoss(2025, endgame.CAD(300))
	c.AddGainOrLoss(2025, endgame.CAD(-1000))
	c.GainAfterOffsetsApplied(2025)

	c.AddGainOrLoss(2040, endgame.CAD(500))
	if got := c.GainAfterOffsetsApplied(2040); !got.IsZero() {
		t.Errorf("GainAfterOffsetsApplied(2040) = %v, want 0", got)
	}
	if got, want := c.Losses()[0].Offsetable, endgame.CAD(200); !got.Equal(want) {
		t.Errorf("loss left = %v, want %v", got, want)
	}
	if got, want := c.Losses()[0].Original, endgame.CAD(1000); !got.Equal(want) {
		t.Errorf("loss Original = %v, want %v", got, want)
	}
}

func TestGainExpires(t *testing.T) {
	c := NewCapitalGains()
	c.AddGainOrLoss(2020, endgame.CAD(1000))
	c.AddGainOrLoss(2022, endgame.CAD(0))
	if got, want := c.GainAfterOffsetsApplied(2022), endgame.CAD(1000); !got.Equal(want) {
		t.Errorf("GainAfterOffsetsApplied(2022) = %v, want %v", got, want)
	}

	c.AddGainOrLoss(2023, endgame.CAD(-100))
	if got := c.GainAfterOffsetsApplied(2023); !got.IsZero() {
		t.Errorf("GainAfterOffsetsApplied(2023) = %v, want 0", got)
	}
	if got, want := c.Losses()[0].Offsetable, endgame.CAD(100); !got.Equal(want) {
		t.Errorf("loss left = %v, want %v", got, want)
	}
	if got := len(c.Gains()); got != 1 {
		t.Errorf("len(Gains()) = %d, want 1, zero is ignored", got)
	}
}
