package term

import (
	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/flourish"
)

// Container hosts overlays on a region of the terminal. Overlays share the
// region's cells and are painted after whatever is below them.
type Container struct {
	screen     tcell.Screen
	x, y       int
	cols, rows int
	overlays   map[string]*Surface
}

func (c *Container) AttachOverlay(name string) (flourish.Surface, bool) {
	if s, ok := c.overlays[name]; ok {
		return s, false
	}
	s := NewSurface(c.screen, c.x, c.y, c.cols, c.rows)
	c.overlays[name] = s
	return s, true
}

func (c *Container) DetachOverlay(name string) {
	delete(c.overlays, name)
}

// setRegion moves and resizes the container and its overlays.
func (c *Container) setRegion(x, y, cols, rows int) {
	c.x, c.y, c.cols, c.rows = x, y, cols, rows
	for _, s := range c.overlays {
		s.SetRegion(x, y, cols, rows)
	}
}

type region struct {
	x, y, cols, rows int
}

// Layout computes a region from the current screen size. It is re-run on
// every resize.
type Layout func(screenCols, screenRows int) (x, y, cols, rows int)

// FullScreen lays a target over the whole terminal.
func FullScreen(cols, rows int) (x, y, w, h int) {
	return 0, 0, cols, rows
}

// Host resolves references to regions of one tcell screen.
type Host struct {
	screen     tcell.Screen
	surfaces   map[string]*Surface
	containers map[string]*Container
	layouts    map[string]Layout
}

// NewHost creates a host with no targets on screen.
func NewHost(screen tcell.Screen) *Host {
	return &Host{
		screen:     screen,
		surfaces:   make(map[string]*Surface),
		containers: make(map[string]*Container),
		layouts:    make(map[string]Layout),
	}
}

// Screen returns the tcell screen the host paints on.
func (h *Host) Screen() tcell.Screen {
	return h.screen
}

// AddSurface registers a surface under ref placed by layout.
func (h *Host) AddSurface(ref string, layout Layout) *Surface {
	r := h.place(layout)
	s := NewSurface(h.screen, r.x, r.y, r.cols, r.rows)
	h.surfaces[ref] = s
	h.layouts[ref] = layout
	return s
}

// AddContainer registers a container under ref placed by layout.
func (h *Host) AddContainer(ref string, layout Layout) *Container {
	r := h.place(layout)
	c := &Container{
		screen:   h.screen,
		x:        r.x,
		y:        r.y,
		cols:     r.cols,
		rows:     r.rows,
		overlays: make(map[string]*Surface),
	}
	h.containers[ref] = c
	h.layouts[ref] = layout
	return c
}

// Resize re-runs every layout against the current screen size. Call it on
// *tcell.EventResize.
func (h *Host) Resize() {
	for ref, s := range h.surfaces {
		r := h.place(h.layouts[ref])
		s.SetRegion(r.x, r.y, r.cols, r.rows)
	}
	for ref, c := range h.containers {
		r := h.place(h.layouts[ref])
		c.setRegion(r.x, r.y, r.cols, r.rows)
	}
}

func (h *Host) place(layout Layout) region {
	cols, rows := h.screen.Size()
	x, y, w, ht := layout(cols, rows)
	return region{x: x, y: y, cols: w, rows: ht}
}

func (h *Host) Surface(ref string) (flourish.Surface, bool) {
	s, ok := h.surfaces[ref]
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *Host) Container(ref string) (flourish.Container, bool) {
	c, ok := h.containers[ref]
	if !ok {
		return nil, false
	}
	return c, true
}
