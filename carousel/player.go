package carousel

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrNotNavigable = errors.New("carousel: driver does not accept manual navigation")
	ErrOutOfRange   = errors.New("carousel: jump target out of range")
	ErrStopped      = errors.New("carousel: player stopped")
)

// Player runs one Driver for one viewer. Run schedules the driver's ticks
// until its context ends; Pause suspends ticks without discarding state.
// Frames are delivered on a one-slot channel that always holds the newest
// frame, so a slow reader never blocks the ticker.
type Player struct {
	id       string
	position Position

	mu      sync.Mutex
	driver  Driver
	paused  bool
	stopped bool
	last    time.Time
	seq     uint64

	frames  chan Frame
	restart chan struct{}
	now     func() time.Time
}

// NewPlayer wraps d. The player does nothing until Run is called.
func NewPlayer(id string, pos Position, d Driver) *Player {
	return &Player{
		id:       id,
		position: pos,
		driver:   d,
		frames:   make(chan Frame, 1),
		restart:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

func (p *Player) ID() string { return p.id }
func (p *Player) Position() Position { return p.position }
func (p *Player) Frames() <-chan Frame { return p.frames }

// Frame returns the current state.
func (p *Player) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameLocked()
}

func (p *Player) frameLocked() Frame {
	f := p.driver.Frame()
	f.Paused = p.paused
	f.Seq = p.seq
	return f
}

// publishLocked replaces any unread frame with the current one.
func (p *Player) publishLocked() {
	if p.stopped {
		return
	}
	p.seq++
	f := p.frameLocked()
	for {
		select {
		case p.frames <- f:
			return
		default:
		}
		select {
		case <-p.frames:
		default:
		}
	}
}

// Run blocks until ctx is done. At most one ticker is live per player and
// it is stopped on return, after which Frames is closed.
func (p *Player) Run(ctx context.Context) {
	p.mu.Lock()
	p.last = p.now()
	p.publishLocked()
	interval := p.driver.Interval()
	p.mu.Unlock()

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	if interval > 0 {
		ticker = time.NewTicker(interval)
		tick = ticker.C
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
		p.mu.Lock()
		p.stopped = true
		close(p.frames)
		p.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.restart:
			if ticker != nil {
				ticker.Reset(interval)
			}
		case <-tick:
			p.step()
		}
	}
}

func (p *Player) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	dt := now.Sub(p.last)
	p.last = now
	if p.paused {
		return
	}
	if p.driver.Tick(dt) {
		p.publishLocked()
	}
}

// Pause freezes the driver. The offset or index is kept as is.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	p.publishLocked()
}

// Resume continues from the frozen state. Elapsed time restarts at the
// resume instant so the first tick after resuming moves by one interval.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	p.last = p.now()
	p.publishLocked()
}

// Next, Prev and Jump are manual hero controls. Each restarts the autoplay
// interval so a click is never followed by an immediate automatic step.
func (p *Player) Next() error {
	return p.navigate(func(n Navigator) error { n.Advance(); return nil })
}

func (p *Player) Prev() error {
	return p.navigate(func(n Navigator) error { n.Retreat(); return nil })
}

func (p *Player) Jump(target int) error {
	return p.navigate(func(n Navigator) error {
		if !n.Jump(target) {
			return ErrOutOfRange
		}
		return nil
	})
}

func (p *Player) navigate(fn func(Navigator) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrStopped
	}
	nav, ok := p.driver.(Navigator)
	if !ok {
		return ErrNotNavigable
	}
	if err := fn(nav); err != nil {
		return err
	}
	p.publishLocked()
	select {
	case p.restart <- struct{}{}:
	default:
	}
	return nil
}
