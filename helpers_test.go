package flourish

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// drawCall records one Canvas call.
type drawCall struct {
	op     string
	glyph  string
	x, y   float64
	rx, ry float64
	c      Color
}

// recordingSurface is a Surface that records what was painted since the
// last Clear.
type recordingSurface struct {
	w, h   float64
	clears int
	calls  []drawCall
}

func newRecordingSurface(w, h float64) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Size() (float64, float64) { return s.w, s.h }

func (s *recordingSurface) Clear() {
	s.clears++
	s.calls = s.calls[:0]
}

func (s *recordingSurface) FillRect(r Rect, c Color) {
	s.calls = append(s.calls, drawCall{op: "fillRect", x: r.X, y: r.Y, rx: r.Width, ry: r.Height, c: c})
}

func (s *recordingSurface) StrokeRect(r Rect, c Color, _ float64) {
	s.calls = append(s.calls, drawCall{op: "strokeRect", x: r.X, y: r.Y, rx: r.Width, ry: r.Height, c: c})
}

func (s *recordingSurface) FillEllipse(cx, cy, rx, ry float64, c Color) {
	s.calls = append(s.calls, drawCall{op: "fillEllipse", x: cx, y: cy, rx: rx, ry: ry, c: c})
}

func (s *recordingSurface) StrokeEllipse(cx, cy, rx, ry float64, c Color, _ float64) {
	s.calls = append(s.calls, drawCall{op: "strokeEllipse", x: cx, y: cy, rx: rx, ry: ry, c: c})
}

func (s *recordingSurface) FillGlyph(glyph string, x, y, size float64, c Color) {
	s.calls = append(s.calls, drawCall{op: "glyph", glyph: glyph, x: x, y: y, rx: size, c: c})
}

func (s *recordingSurface) FillRadialGradient(cx, cy, radius float64, inner, _ Color) {
	s.calls = append(s.calls, drawCall{op: "gradient", x: cx, y: cy, rx: radius, ry: radius, c: inner})
}

// count returns how many recorded calls used op.
func (s *recordingSurface) count(op string) int {
	n := 0
	for _, c := range s.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// fakeContainer hands out recording overlays and remembers detaches.
type fakeContainer struct {
	w, h     float64
	overlays map[string]*recordingSurface
	attaches int
	detaches int
}

func newFakeContainer(w, h float64) *fakeContainer {
	return &fakeContainer{w: w, h: h, overlays: make(map[string]*recordingSurface)}
}

func (c *fakeContainer) AttachOverlay(name string) (Surface, bool) {
	if s, ok := c.overlays[name]; ok {
		return s, false
	}
	c.attaches++
	s := newRecordingSurface(c.w, c.h)
	c.overlays[name] = s
	return s, true
}

func (c *fakeContainer) DetachOverlay(name string) {
	if _, ok := c.overlays[name]; ok {
		c.detaches++
		delete(c.overlays, name)
	}
}

// fakeHost resolves refs from two maps.
type fakeHost struct {
	surfaces   map[string]*recordingSurface
	containers map[string]*fakeContainer
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		surfaces:   make(map[string]*recordingSurface),
		containers: make(map[string]*fakeContainer),
	}
}

func (h *fakeHost) Surface(ref string) (Surface, bool) {
	s, ok := h.surfaces[ref]
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *fakeHost) Container(ref string) (Container, bool) {
	c, ok := h.containers[ref]
	if !ok {
		return nil, false
	}
	return c, true
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestStage returns a stage over a fake host with a private registry,
// a fixed seed and a manual clock.
func newTestStage() (*Stage, *fakeHost, *ManualTime) {
	host := newFakeHost()
	mt := NewManualTime(testEpoch)
	s := NewStage(host, StageOptions{
		Registry: NewRegistry(nil),
		Time:     mt,
		Rand:     testRand(),
	})
	return s, host, mt
}

// recordingSink collects loop events.
type recordingSink struct {
	events []LoopEvent
}

func (r *recordingSink) EmitLoopEvent(ev LoopEvent) {
	r.events = append(r.events, ev)
}
