package carousel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitFrame(t *testing.T, p *Player) Frame {
	t.Helper()
	select {
	case f, ok := <-p.Frames():
		if !ok {
			t.Fatal("frames closed")
		}
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Frame{}
}

func TestPlayerPauseKeepsOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPlayer("p1", PositionBottom, NewMarquee(6, 600, 5*time.Millisecond))
	go p.Run(ctx)
	waitFrame(t, p)

	time.Sleep(40 * time.Millisecond)
	p.Pause()
	frozen := p.Frame()
	if !frozen.Paused {
		t.Fatal("frame should report paused")
	}
	if frozen.Offset == 0 {
		t.Fatal("marquee did not move before pause")
	}

	time.Sleep(200 * time.Millisecond)
	if got := p.Frame().Offset; got != frozen.Offset {
		t.Fatalf("offset moved while paused: %v -> %v", frozen.Offset, got)
	}

	p.Resume()
	resumed := p.Frame().Offset
	if resumed-frozen.Offset > 3 {
		t.Fatalf("offset jumped on resume: %v -> %v", frozen.Offset, resumed)
	}
	time.Sleep(40 * time.Millisecond)
	after := p.Frame().Offset
	// 600 px/s for 40ms is 24px; allow for scheduler slack but no pause-length jump.
	if after == resumed {
		t.Error("marquee did not resume")
	}
	if delta := after - resumed; delta > 90 {
		t.Errorf("resume advanced %vpx, looks like paused time was counted", delta)
	}
}

func TestPlayerManualNavigation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPlayer("hero", PositionTop, NewHeroStepper(3, time.Hour))
	go p.Run(ctx)
	waitFrame(t, p)

	if err := p.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if f := waitFrame(t, p); f.Index != 1 {
		t.Errorf("index after Next = %d, want 1", f.Index)
	}
	if err := p.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if err := p.Prev(); err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if f := p.Frame(); f.Index != 2 {
		t.Errorf("index after two Prev = %d, want 2", f.Index)
	}
	if err := p.Jump(7); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Jump(7) err = %v, want ErrOutOfRange", err)
	}
	if err := p.Jump(0); err != nil {
		t.Errorf("Jump(0): %v", err)
	}
}

func TestPlayerRejectsNavigationOnStrip(t *testing.T) {
	p := NewPlayer("strip", PositionBottom, NewMarquee(6, 15, time.Hour))
	if err := p.Next(); !errors.Is(err, ErrNotNavigable) {
		t.Errorf("err = %v, want ErrNotNavigable", err)
	}
}

func TestPlayerAutoplayAdvances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPlayer("auto", PositionTop, NewHeroStepper(2, 10*time.Millisecond))
	go p.Run(ctx)
	waitFrame(t, p)
	if f := waitFrame(t, p); f.Index != 1 {
		t.Errorf("index after one tick = %d, want 1", f.Index)
	}
}

func TestPlayerTeardownClosesFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPlayer("gone", PositionTop, NewHeroStepper(3, 5*time.Millisecond))
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	waitFrame(t, p)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	for range p.Frames() {
	}
	if err := p.Next(); !errors.Is(err, ErrStopped) {
		t.Errorf("Next after teardown err = %v, want ErrStopped", err)
	}
	// Pause and Resume after teardown are no-ops and must not panic.
	p.Pause()
	p.Resume()
}

func TestHubUnregistersOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	p := h.Spawn(ctx, PositionTop, NewHeroStepper(1, AutoplayInterval))
	if got, ok := h.Get(p.ID()); !ok || got != p {
		t.Fatal("player not registered")
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for h.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("player still registered after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubCloseStopsPlayers(t *testing.T) {
	h := NewHub()
	ctx := context.Background()
	hero := h.Spawn(ctx, PositionTop, NewHeroStepper(3, AutoplayInterval))
	strip := h.Spawn(ctx, PositionBottom, NewMarquee(6, DefaultMarqueeSpeed, DefaultFrameInterval))
	h.Close()
	late := h.Spawn(ctx, PositionTop, NewHeroStepper(2, AutoplayInterval))

	for _, p := range []*Player{hero, strip, late} {
		select {
		case <-drain(p.Frames()):
		case <-time.After(2 * time.Second):
			t.Fatalf("%s player frames still open after Close", p.Position())
		}
		if err := p.Next(); !errors.Is(err, ErrStopped) {
			t.Errorf("%s player Next after Close = %v, want ErrStopped", p.Position(), err)
		}
	}
}

func drain(frames <-chan Frame) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range frames {
		}
		close(done)
	}()
	return done
}
