package carousel

import (
	"math"
	"testing"
	"time"
)

func TestHeroStepperWrapsAfterNAdvances(t *testing.T) {
	for n := 1; n <= 7; n++ {
		h := NewHeroStepper(n, AutoplayInterval)
		h.Jump(n / 2)
		start := h.Index()
		for i := 0; i < n; i++ {
			h.Advance()
		}
		if h.Index() != start {
			t.Errorf("n=%d: index after %d advances = %d, want %d", n, n, h.Index(), start)
		}
	}
}

func TestHeroStepperRetreatInvertsAdvance(t *testing.T) {
	h := NewHeroStepper(5, AutoplayInterval)
	for start := 0; start < 5; start++ {
		h.Jump(start)
		h.Advance()
		h.Retreat()
		if h.Index() != start {
			t.Errorf("advance+retreat from %d = %d", start, h.Index())
		}
		h.Retreat()
		h.Advance()
		if h.Index() != start {
			t.Errorf("retreat+advance from %d = %d", start, h.Index())
		}
	}
	h.Jump(0)
	h.Retreat()
	if h.Index() != 4 {
		t.Errorf("retreat from 0 = %d, want 4", h.Index())
	}
}

func TestHeroStepperJumpBounds(t *testing.T) {
	h := NewHeroStepper(3, AutoplayInterval)
	tests := []struct {
		target int
		ok     bool
		want   int
	}{
		{2, true, 2},
		{3, false, 2},
		{-1, false, 2},
		{0, true, 0},
	}
	for _, tt := range tests {
		if got := h.Jump(tt.target); got != tt.ok {
			t.Errorf("Jump(%d) = %v, want %v", tt.target, got, tt.ok)
		}
		if h.Index() != tt.want {
			t.Errorf("after Jump(%d) index = %d, want %d", tt.target, h.Index(), tt.want)
		}
	}
}

func TestHeroStepperAutoplayOnlyWithSeveralSlides(t *testing.T) {
	if got := NewHeroStepper(0, AutoplayInterval).Interval(); got != 0 {
		t.Errorf("n=0 interval = %v", got)
	}
	one := NewHeroStepper(1, AutoplayInterval)
	if one.Interval() != 0 {
		t.Errorf("n=1 interval = %v", one.Interval())
	}
	if one.Tick(time.Second) {
		t.Error("single slide must not tick")
	}
	if got := NewHeroStepper(2, AutoplayInterval).Interval(); got != 5*time.Second {
		t.Errorf("n=2 interval = %v, want 5s", got)
	}
}

func TestWindowedStepperBound(t *testing.T) {
	for total := 0; total <= 12; total++ {
		w := NewWindowedStepper(total, WindowSize, AutoplayInterval)
		maxStart := max(total-min(total, WindowSize), 0)
		if w.MaxStart() != maxStart {
			t.Fatalf("total=%d MaxStart = %d, want %d", total, w.MaxStart(), maxStart)
		}
		sawReset := false
		for i := 0; i < 3*(total+1); i++ {
			before := w.Index()
			w.Advance()
			if w.Index() > maxStart {
				t.Fatalf("total=%d index %d exceeds %d", total, w.Index(), maxStart)
			}
			if before == maxStart && maxStart > 0 {
				if w.Index() != 0 {
					t.Fatalf("total=%d advance from max start = %d, want 0", total, w.Index())
				}
				sawReset = true
			}
		}
		if maxStart > 0 && !sawReset {
			t.Errorf("total=%d never reset", total)
		}
	}
}

func TestWindowedStepperPinnedWhenFits(t *testing.T) {
	w := NewWindowedStepper(4, WindowSize, AutoplayInterval)
	if w.Interval() != 0 {
		t.Errorf("interval = %v, want 0", w.Interval())
	}
	if w.Tick(time.Hour) {
		t.Error("pinned stepper must not tick")
	}
	w.Advance()
	if w.Index() != 0 {
		t.Errorf("index = %d, want 0", w.Index())
	}
}

func TestWindowedStepperSequence(t *testing.T) {
	w := NewWindowedStepper(6, 4, AutoplayInterval)
	var got []int
	for i := 0; i < 5; i++ {
		w.Advance()
		got = append(got, w.Index())
	}
	want := []int{1, 2, 0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", got, want)
		}
	}
}

func TestMarqueeWrapLaw(t *testing.T) {
	const perFrame = 0.25
	for count := 5; count <= 9; count++ {
		m := NewMarquee(count, DefaultMarqueeSpeed, DefaultFrameInterval)
		tw := m.TotalWidth()
		steps := int(math.Round(tw / perFrame))
		for i := 0; i < steps; i++ {
			m.Advance(perFrame)
			if m.Offset() >= tw || m.Offset() < 0 {
				t.Fatalf("count=%d step %d offset %v outside [0,%v)", count, i, m.Offset(), tw)
			}
		}
		if math.Abs(m.Offset()) > 1e-9 {
			t.Errorf("count=%d offset after %d steps = %v, want 0", count, steps, m.Offset())
		}
	}
}

func TestMarqueeTickIsTimeBased(t *testing.T) {
	m := NewMarquee(6, 15, DefaultFrameInterval)
	m.Tick(2 * time.Second)
	if math.Abs(m.Offset()-30) > 1e-9 {
		t.Errorf("offset = %v, want 30", m.Offset())
	}
	// A stall longer than a full lap still lands inside the track.
	m.Tick(200 * time.Second)
	if m.Offset() < 0 || m.Offset() >= m.TotalWidth() {
		t.Errorf("offset %v outside track", m.Offset())
	}
}

func TestTotalWidth(t *testing.T) {
	if got := TotalWidth(6); got != 1656 {
		t.Errorf("TotalWidth(6) = %v, want 1656", got)
	}
}

func TestSelectIsMutuallyExclusive(t *testing.T) {
	for count := 1; count <= 20; count++ {
		d := Select(count, Options{})
		switch {
		case count > MarqueeThreshold && d.Mode() != ModeMarquee:
			t.Errorf("count=%d mode = %s, want marquee", count, d.Mode())
		case count <= MarqueeThreshold && d.Mode() != ModeWindowed:
			t.Errorf("count=%d mode = %s, want windowed", count, d.Mode())
		}
	}
}

func TestNewDriverHeroForTop(t *testing.T) {
	d := NewDriver(PositionTop, 3, Options{})
	if d.Mode() != ModeHero {
		t.Fatalf("mode = %s, want hero", d.Mode())
	}
	if _, ok := d.(Navigator); !ok {
		t.Error("hero driver should accept navigation")
	}
}
