package level

import (
	"strings"
	"testing"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		total       int64
		level       int
		accumulated int64
	}{
		{0, 1, 0},
		{29, 1, 0},
		{30, 2, 30},
		{89, 2, 30},
		{90, 3, 90},
		{209, 3, 90},
		{210, 4, 210},
		{450, 5, 450},
		{-5, 1, 0},
	}

	for _, tt := range tests {
		level, accumulated := Calculate(tt.total)
		if level != tt.level || accumulated != tt.accumulated {
			t.Errorf("Calculate(%d) = (%d, %d), want (%d, %d)",
				tt.total, level, accumulated, tt.level, tt.accumulated)
		}
	}
}

func TestCalculateMonotonic(t *testing.T) {
	prev := 1
	for total := int64(0); total <= 20000; total++ {
		level, _ := Calculate(total)
		if level < prev {
			t.Fatalf("level decreased at %d: %d < %d", total, level, prev)
		}
		prev = level
	}
}

func TestCalculateIdempotent(t *testing.T) {
	for _, total := range []int64{0, 31, 1000, 123456} {
		l1, a1 := Calculate(total)
		l2, a2 := Calculate(total)
		if l1 != l2 || a1 != a2 {
			t.Errorf("Calculate(%d) not idempotent", total)
		}
	}
}

func TestCalculateLargeTotals(t *testing.T) {
	level, accumulated := Calculate(1 << 62)
	if level < 10 || accumulated <= 0 {
		t.Errorf("Calculate(1<<62) = (%d, %d)", level, accumulated)
	}
}

func TestNextLevelRequired(t *testing.T) {
	tests := map[int]int64{1: 30, 2: 60, 3: 120, 5: 480, 0: 30}
	for lvl, want := range tests {
		if got := NextLevelRequired(lvl); got != want {
			t.Errorf("NextLevelRequired(%d) = %d, want %d", lvl, got, want)
		}
	}
}

func TestRemaining(t *testing.T) {
	tests := map[int64]int64{0: 30, 29: 1, 30: 60, 89: 1, 100: 110}
	for total, want := range tests {
		if got := Remaining(total); got != want {
			t.Errorf("Remaining(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(60)
	if p.Level != 2 || p.IntoLevel != 30 || p.Required != 60 || p.Remaining != 30 {
		t.Errorf("ProgressFor(60) = %+v", p)
	}
	if f := p.Fraction(); f != 0.5 {
		t.Errorf("Fraction() = %v, want 0.5", f)
	}
	if f := (Progress{}).Fraction(); f != 0 {
		t.Errorf("zero Progress Fraction() = %v", f)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int64]string{0: "0분 0초", 29: "0분 29초", 61: "1분 1초", 3600: "60분 0초", -3: "0분 0초"}
	for secs, want := range tests {
		if got := FormatDuration(secs); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", secs, got, want)
		}
	}
}

func TestMessage(t *testing.T) {
	if Message(1) != "쉼이랑 무엇인가? 느껴지시나요?" {
		t.Errorf("unexpected level 1 message %q", Message(1))
	}
	if !strings.Contains(Message(10), "만렙") {
		t.Errorf("unexpected level 10 message %q", Message(10))
	}
	if got := Message(11); got != "레벨 11 달성! 계속해서 휴식을 즐기세요!" {
		t.Errorf("Message(11) = %q", got)
	}
}

func TestCelebrationIntensity(t *testing.T) {
	if CelebrationIntensity(2).Enabled() {
		t.Error("levels below 3 should not celebrate")
	}
	prev := 0
	for lvl := 3; lvl <= 12; lvl++ {
		c := CelebrationIntensity(lvl)
		if !c.Enabled() {
			t.Fatalf("level %d should celebrate", lvl)
		}
		if c.Particles < prev {
			t.Errorf("particles decreased at level %d", lvl)
		}
		prev = c.Particles
	}
}
