package carousel

import "time"

// Mode names the mechanism animating a collection.
type Mode string

const (
	ModeHero     Mode = "hero"
	ModeWindowed Mode = "windowed"
	ModeMarquee  Mode = "marquee"
)

// Frame is a snapshot of a driver's state, sent to viewers.
type Frame struct {
	Mode   Mode    `json:"mode"`
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
	Count  int     `json:"count"`
	Paused bool    `json:"paused"`
	Seq    uint64  `json:"seq"`
}

// Driver animates one slide collection. Interval is how often Tick must be
// called; zero means the driver is static and nothing is scheduled.
type Driver interface {
	Mode() Mode
	Interval() time.Duration
	// Tick advances by one scheduled step covering dt of wall time and
	// reports whether the visible state changed.
	Tick(dt time.Duration) bool
	Frame() Frame
	Reset()
}

// Navigator is a Driver that also accepts manual navigation.
type Navigator interface {
	Driver
	Advance()
	Retreat()
	Jump(target int) bool
}

// Options tunes driver construction. Zero fields take the package defaults.
type Options struct {
	WindowSize       int
	Threshold        int
	AutoplayInterval time.Duration
	MarqueeSpeed     float64
	FrameInterval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.WindowSize <= 0 {
		o.WindowSize = WindowSize
	}
	if o.Threshold <= 0 {
		o.Threshold = MarqueeThreshold
	}
	if o.AutoplayInterval <= 0 {
		o.AutoplayInterval = AutoplayInterval
	}
	if o.MarqueeSpeed <= 0 {
		o.MarqueeSpeed = DefaultMarqueeSpeed
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = DefaultFrameInterval
	}
	return o
}

// Select picks the strip driver for count items: a marquee above the
// threshold, the windowed stepper otherwise. It is called once per load.
func Select(count int, opts Options) Driver {
	opts = opts.withDefaults()
	if count > opts.Threshold {
		return NewMarquee(count, opts.MarqueeSpeed, opts.FrameInterval)
	}
	return NewWindowedStepper(count, opts.WindowSize, opts.AutoplayInterval)
}

// NewDriver builds the driver for a loaded collection.
func NewDriver(pos Position, count int, opts Options) Driver {
	if pos == PositionTop {
		return NewHeroStepper(count, opts.withDefaults().AutoplayInterval)
	}
	return Select(count, opts)
}
