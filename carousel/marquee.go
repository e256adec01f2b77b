package carousel

import (
	"math"
	"time"
)

// Marquee scrolls a continuous offset across count items and wraps at the
// width of one (un-duplicated) copy of the list.
type Marquee struct {
	count    int
	speed    float64 // px per second
	interval time.Duration
	offset   float64
}

func NewMarquee(count int, speed float64, frameInterval time.Duration) *Marquee {
	if speed <= 0 {
		speed = DefaultMarqueeSpeed
	}
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Marquee{count: max(count, 0), speed: speed, interval: frameInterval}
}

// TotalWidth is count × (item width + gap).
func TotalWidth(count int) float64 {
	return float64(count * (ItemWidth + ItemGap))
}

func (m *Marquee) Mode() Mode { return ModeMarquee }

func (m *Marquee) TotalWidth() float64 { return TotalWidth(m.count) }

func (m *Marquee) Interval() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.interval
}

// Advance moves the offset by px, keeping it in [0, TotalWidth).
func (m *Marquee) Advance(px float64) {
	tw := m.TotalWidth()
	if tw <= 0 {
		return
	}
	m.offset += px
	if m.offset >= tw {
		m.offset = math.Mod(m.offset, tw)
	}
}

// Tick advances by speed × dt.
func (m *Marquee) Tick(dt time.Duration) bool {
	if m.count == 0 || dt <= 0 {
		return false
	}
	m.Advance(m.speed * dt.Seconds())
	return true
}

func (m *Marquee) Offset() float64 { return m.offset }

func (m *Marquee) Frame() Frame {
	return Frame{Mode: ModeMarquee, Offset: m.offset, Count: m.count}
}

func (m *Marquee) Reset() { m.offset = 0 }
