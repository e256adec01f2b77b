package carousel

import "time"

// HeroStepper cycles a single active index through n slides.
type HeroStepper struct {
	n        int
	index    int
	interval time.Duration
}

func NewHeroStepper(n int, interval time.Duration) *HeroStepper {
	return &HeroStepper{n: max(n, 0), interval: interval}
}

func (h *HeroStepper) Mode() Mode { return ModeHero }

// Interval is zero for a single slide so autoplay never runs.
func (h *HeroStepper) Interval() time.Duration {
	if h.n <= 1 {
		return 0
	}
	return h.interval
}

func (h *HeroStepper) Tick(time.Duration) bool {
	if h.n <= 1 {
		return false
	}
	h.Advance()
	return true
}

func (h *HeroStepper) Advance() {
	if h.n == 0 {
		return
	}
	h.index = (h.index + 1) % h.n
}

func (h *HeroStepper) Retreat() {
	if h.n == 0 {
		return
	}
	h.index = (h.index - 1 + h.n) % h.n
}

// Jump moves to target. Out-of-range targets are ignored.
func (h *HeroStepper) Jump(target int) bool {
	if target < 0 || target >= h.n {
		return false
	}
	h.index = target
	return true
}

func (h *HeroStepper) Index() int { return h.index }

func (h *HeroStepper) Frame() Frame {
	return Frame{Mode: ModeHero, Index: h.index, Count: h.n}
}

func (h *HeroStepper) Reset() { h.index = 0 }

// WindowedStepper pages a window of items one step at a time and resets to
// the first window after the last one instead of wrapping.
type WindowedStepper struct {
	total    int
	window   int
	index    int
	interval time.Duration
}

func NewWindowedStepper(total, window int, interval time.Duration) *WindowedStepper {
	if window <= 0 {
		window = WindowSize
	}
	return &WindowedStepper{total: max(total, 0), window: window, interval: interval}
}

func (w *WindowedStepper) Mode() Mode { return ModeWindowed }

// Visible is the number of items shown at rest.
func (w *WindowedStepper) Visible() int { return min(w.total, w.window) }

// MaxStart is the last valid window start.
func (w *WindowedStepper) MaxStart() int { return max(w.total-w.Visible(), 0) }

func (w *WindowedStepper) pinned() bool { return w.total <= w.window }

func (w *WindowedStepper) Interval() time.Duration {
	if w.pinned() {
		return 0
	}
	return w.interval
}

func (w *WindowedStepper) Tick(time.Duration) bool {
	if w.pinned() {
		return false
	}
	w.Advance()
	return true
}

func (w *WindowedStepper) Advance() {
	if w.pinned() {
		w.index = 0
		return
	}
	if w.index >= w.MaxStart() {
		w.index = 0
		return
	}
	w.index++
}

func (w *WindowedStepper) Index() int { return w.index }

func (w *WindowedStepper) Frame() Frame {
	return Frame{Mode: ModeWindowed, Index: w.index, Count: w.total}
}

func (w *WindowedStepper) Reset() { w.index = 0 }
