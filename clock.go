package flourish

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock issues one tick per frame until stopped. Ticks of one clock never
// overlap: each runs to completion before the next frame begins.
type Clock interface {
	// Start begins invoking tick once per frame. Calling Start on a clock
	// that is already running or was stopped has no effect.
	Start(tick func())
	// Stop guarantees no further tick is scheduled. A tick in flight
	// completes. Safe to call from inside tick and more than once.
	Stop()
}

// FrameStats summarizes one call to FrameDriver.Advance.
type FrameStats struct {
	Frame   uint64        // frame number just completed, starting at 1
	Ticked  int           // clocks ticked this frame
	Active  int           // clocks still subscribed after the frame
	Elapsed time.Duration // wall time spent running ticks
}

// FrameDriver multiplexes any number of clocks onto one frame signal. The
// host calls Advance once per display refresh (Ebitengine's Update, or a
// ticker via Run). Clocks are ticked sequentially in subscription order.
type FrameDriver struct {
	advanceMu sync.Mutex // serializes Advance

	mu     sync.Mutex // guards clocks
	clocks []*driverClock

	frame atomic.Uint64
}

// NewFrameDriver creates an idle driver with no subscribed clocks.
func NewFrameDriver() *FrameDriver {
	return &FrameDriver{}
}

// NewClock returns a Clock driven by d.
func (d *FrameDriver) NewClock() Clock {
	return &driverClock{driver: d}
}

// Frame returns the number of frames advanced so far.
func (d *FrameDriver) Frame() uint64 {
	return d.frame.Load()
}

// Active returns the number of subscribed clocks that have not stopped.
func (d *FrameDriver) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.clocks {
		if c.running.Load() {
			n++
		}
	}
	return n
}

// Advance runs one frame: every clock subscribed before this call and still
// running is ticked once. Clocks started during the frame wait for the next
// one. Stopped clocks are unsubscribed afterwards.
func (d *FrameDriver) Advance() FrameStats {
	d.advanceMu.Lock()
	defer d.advanceMu.Unlock()

	d.mu.Lock()
	snapshot := make([]*driverClock, len(d.clocks))
	copy(snapshot, d.clocks)
	d.mu.Unlock()

	start := time.Now()
	ticked := 0
	for _, c := range snapshot {
		if !c.running.Load() {
			continue
		}
		c.tick()
		ticked++
	}
	elapsed := time.Since(start)

	d.mu.Lock()
	live := d.clocks[:0]
	for _, c := range d.clocks {
		if c.running.Load() {
			live = append(live, c)
		}
	}
	// Clear the tail so stopped clocks (and their tick closures) can be collected.
	for i := len(live); i < len(d.clocks); i++ {
		d.clocks[i] = nil
	}
	d.clocks = live
	active := len(live)
	d.mu.Unlock()

	return FrameStats{
		Frame:   d.frame.Add(1),
		Ticked:  ticked,
		Active:  active,
		Elapsed: elapsed,
	}
}

// Run calls Advance every interval until ctx is done, then returns ctx.Err().
func (d *FrameDriver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Advance()
		}
	}
}

func (d *FrameDriver) subscribe(c *driverClock) {
	d.mu.Lock()
	d.clocks = append(d.clocks, c)
	d.mu.Unlock()
}

// driverClock is a single-use subscription to a FrameDriver.
type driverClock struct {
	driver  *FrameDriver
	tick    func()
	started atomic.Bool
	running atomic.Bool
}

func (c *driverClock) Start(tick func()) {
	if tick == nil || !c.started.CompareAndSwap(false, true) {
		return
	}
	c.tick = tick
	c.running.Store(true)
	c.driver.subscribe(c)
}

func (c *driverClock) Stop() {
	c.started.Store(true)
	c.running.Store(false)
}
