package flourish

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdvanceTicksEachClockOnce(t *testing.T) {
	d := NewFrameDriver()
	var order []int
	for i := 0; i < 3; i++ {
		d.NewClock().Start(func() { order = append(order, i) })
	}

	stats := d.Advance()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("tick order = %v, want [0 1 2]", order)
	}
	if stats.Frame != 1 || stats.Ticked != 3 || stats.Active != 3 {
		t.Errorf("stats = %+v", stats)
	}

	d.Advance()
	if len(order) != 6 {
		t.Errorf("ticks after two frames = %d, want 6", len(order))
	}
	if d.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", d.Frame())
	}
}

func TestClockStopPreventsFurtherTicks(t *testing.T) {
	d := NewFrameDriver()
	c := d.NewClock()
	ticks := 0
	c.Start(func() { ticks++ })

	d.Advance()
	c.Stop()
	c.Stop() // idempotent
	d.Advance()

	if ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}
	if d.Active() != 0 {
		t.Errorf("Active = %d, want 0", d.Active())
	}
}

func TestClockStopInsideTick(t *testing.T) {
	d := NewFrameDriver()
	c := d.NewClock()
	ticks := 0
	c.Start(func() {
		ticks++
		c.Stop()
	})

	stats := d.Advance()
	d.Advance()
	if ticks != 1 {
		t.Errorf("ticks = %d, want 1", ticks)
	}
	if stats.Active != 0 {
		t.Errorf("Active after self-stop = %d, want 0", stats.Active)
	}
}

func TestClockStoppedByEarlierTickSkipsFrame(t *testing.T) {
	d := NewFrameDriver()
	second := d.NewClock()
	secondTicks := 0
	d.NewClock().Start(func() { second.Stop() })
	second.Start(func() { secondTicks++ })

	stats := d.Advance()
	if secondTicks != 0 {
		t.Errorf("stopped clock ticked %d times", secondTicks)
	}
	if stats.Ticked != 1 {
		t.Errorf("Ticked = %d, want 1", stats.Ticked)
	}
}

func TestClockStartedDuringFrameWaitsForNext(t *testing.T) {
	d := NewFrameDriver()
	late := 0
	started := false
	d.NewClock().Start(func() {
		if !started {
			started = true
			d.NewClock().Start(func() { late++ })
		}
	})

	d.Advance()
	if late != 0 {
		t.Fatalf("clock started mid-frame ticked in the same frame")
	}
	d.Advance()
	if late != 1 {
		t.Errorf("late ticks = %d, want 1", late)
	}
}

func TestClockIsSingleUse(t *testing.T) {
	d := NewFrameDriver()
	c := d.NewClock()
	first, second := 0, 0
	c.Start(func() { first++ })
	c.Start(func() { second++ }) // ignored while running

	d.Advance()
	c.Stop()
	c.Start(func() { second++ }) // ignored after stop
	d.Advance()

	if first != 1 || second != 0 {
		t.Errorf("first = %d, second = %d, want 1 and 0", first, second)
	}
}

func TestClockStopBeforeStart(t *testing.T) {
	d := NewFrameDriver()
	c := d.NewClock()
	c.Stop()
	ticks := 0
	c.Start(func() { ticks++ })
	d.Advance()
	if ticks != 0 {
		t.Errorf("ticks = %d, want 0", ticks)
	}
}

func TestClockNilTickIgnored(t *testing.T) {
	d := NewFrameDriver()
	d.NewClock().Start(nil)
	if stats := d.Advance(); stats.Ticked != 0 || stats.Active != 0 {
		t.Errorf("stats = %+v, want nothing ticked", stats)
	}
}

func TestRunAdvancesUntilCancelled(t *testing.T) {
	d := NewFrameDriver()
	ctx, cancel := context.WithCancel(context.Background())

	ticks := make(chan struct{}, 64)
	d.NewClock().Start(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, time.Millisecond) }()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick within 2s")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
