package flourish

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LoopID identifies a running loop. IDs are unique within the process.
type LoopID string

// LoopKind names the animation a loop runs.
type LoopKind string

const (
	KindBirds  LoopKind = "birds"
	KindOrbit  LoopKind = "orbit"
	KindEffect LoopKind = "effect"
)

var loopSeq atomic.Uint64

// newLoopID builds a process-unique ID from the loop kind and target ref.
func newLoopID(kind LoopKind, ref string) LoopID {
	return LoopID(fmt.Sprintf("%s:%s:%d", kind, ref, loopSeq.Add(1)))
}

// Handle controls one running effect loop. Once Running reports false no
// further tick runs and the handle is inert: it drops its surface, clock and
// teardown so a registry still holding Stop keeps nothing else alive.
type Handle struct {
	id      LoopID
	kind    LoopKind
	surface Surface
	clock   Clock

	running  atomic.Bool
	stopOnce sync.Once
	teardown func()
}

// newHandle creates a handle in the running state. teardown, if non-nil,
// runs once when the loop stops.
func newHandle(id LoopID, kind LoopKind, surface Surface, clock Clock, teardown func()) *Handle {
	h := &Handle{
		id:       id,
		kind:     kind,
		surface:  surface,
		clock:    clock,
		teardown: teardown,
	}
	h.running.Store(true)
	return h
}

// ID returns the loop's unique identifier.
func (h *Handle) ID() LoopID { return h.id }

// Kind returns which animation the loop runs.
func (h *Handle) Kind() LoopKind { return h.kind }

// Surface returns the surface the loop paints on, or nil once stopped.
func (h *Handle) Surface() Surface { return h.surface }

// Running reports whether the loop is still ticking.
func (h *Handle) Running() bool { return h.running.Load() }

// Stop unsubscribes the loop from its clock and tears down anything the loop
// created. Calling Stop again has no effect. It always returns nil so it can
// be registered as a StopFunc.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		h.running.Store(false)
		h.clock.Stop()
		if h.teardown != nil {
			h.teardown()
		}
		h.surface = nil
		h.clock = nil
		h.teardown = nil
	})
	return nil
}

// start subscribes tick to the handle's clock. tick is skipped once the
// handle has stopped, even if the clock delivers a final frame.
func (h *Handle) start(tick func()) {
	h.clock.Start(func() {
		if !h.running.Load() {
			return
		}
		tick()
	})
}
