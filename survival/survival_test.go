package survival

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
)

const lx = `# synthetic table
"69 years","80,000"
"70 years","80,000"
"71 years","60,000"
"72 years","30,000"
"73 years and over","0"
`

func table(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(lx))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tbl
}

func TestParse(t *testing.T) {
	tbl := table(t)
	if n, ok := tbl.Survivors(71); !ok || n != 60000 {
		t.Errorf("Survivors(71) = %d, %v", n, ok)
	}
	if tbl.MaxAge() != 73 {
		t.Errorf("MaxAge() = %d, want 73", tbl.MaxAge())
	}
	for _, bad := range []string{"", `"seventy years","80,000"`, `"70 years"`, `"70 years","many"`} {
		if _, err := Parse(strings.NewReader(bad)); !errors.Is(err, endgame.ErrConfig) {
			t.Errorf("Parse(%q) error = %v, want ErrConfig", bad, err)
		}
	}
}

func TestProbability(t *testing.T) {
	tbl := table(t)
	tests := []struct {
		from, to int
		want     float64
	}{
		{70, 71, 0.75},
		{70, 72, 0.375},
		{71, 72, 0.5},
	}
	for _, tt := range tests {
		got, err := tbl.Probability(tt.from, tt.to)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Probability(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if _, err := tbl.Probability(73, 74); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("Probability(73, 74) error = %v, want ErrConfig", err)
	}
}

func TestSurvivesYear(t *testing.T) {
	tbl := table(t)
	birth := date.New(1955, time.June, 1)
	rng := rand.New(rand.NewPCG(1, 2))

	// 69 to 70 is certain.
	for range 50 {
		ok, err := tbl.SurvivesYear(2025, birth, rng)
		if err != nil || !ok {
			t.Fatalf("SurvivesYear(2025) = %v, %v, want true", ok, err)
		}
	}
	// 72 to 73 is impossible.
	if ok, _ := tbl.SurvivesYear(2028, birth, rng); ok {
		t.Error("SurvivesYear(2028) = true, want false")
	}
	// Beyond the table.
	if ok, err := tbl.SurvivesYear(2040, birth, rng); ok || err != nil {
		t.Errorf("SurvivesYear(2040) = %v, %v, want false", ok, err)
	}

	alive := 0
	for range 10000 {
		if ok, _ := tbl.SurvivesYear(2026, birth, rng); ok {
			alive++
		}
	}
	if alive < 7000 || alive > 8000 {
		t.Errorf("survived 70 to 71 %d times out of 10000, want about 7500", alive)
	}
}

func TestRelativeProbability(t *testing.T) {
	tbl := table(t)
	got, err := tbl.RelativeProbability(date.New(1955, time.June, 1), 2025, 2030, 100)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{2025, 100}, {2026, 75}, {2027, 37.5}, {2028, 0}}
	if len(got) != len(want) {
		t.Fatalf("RelativeProbability() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RelativeProbability()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoadFor(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "female-lx.utf8"), []byte(lx), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFor(dir, Female); err != nil {
		t.Errorf("LoadFor(Female) error = %v", err)
	}
	if _, err := LoadFor(dir, Male); !errors.Is(err, endgame.ErrConfig) {
		t.Errorf("LoadFor(Male) error = %v, want ErrConfig", err)
	}
	if s, err := ParseSex("F"); err != nil || s != Female {
		t.Errorf("ParseSex(F) = %v, %v", s, err)
	}
}
