package flourish

// Canvas is the painting primitive every effect loop draws through.
// Coordinates are in surface pixels with the origin at the top-left.
type Canvas interface {
	// Clear erases the whole surface to transparent.
	Clear()
	FillRect(r Rect, c Color)
	StrokeRect(r Rect, c Color, width float64)
	// FillEllipse fills an axis-aligned ellipse centered on (cx, cy).
	// Circles are ellipses with rx == ry.
	FillEllipse(cx, cy, rx, ry float64, c Color)
	StrokeEllipse(cx, cy, rx, ry float64, c Color, width float64)
	// FillGlyph draws text with its baseline at (x, y) and a font size of size.
	FillGlyph(glyph string, x, y, size float64, c Color)
	// FillRadialGradient fills the disc of the given radius with a gradient
	// running from inner at the center to outer at the edge.
	FillRadialGradient(cx, cy, radius float64, inner, outer Color)
}

// Surface is a Canvas bound to a rectangular pixel area. Size is re-read by
// every tick, so backends refresh it on resize without notifying loops.
type Surface interface {
	Canvas
	Size() (w, h float64)
}

// Container is a region that can host transient overlay surfaces.
type Container interface {
	// AttachOverlay returns the overlay with the given name, creating and
	// attaching it when absent. created reports whether this call made it.
	AttachOverlay(name string) (s Surface, created bool)
	// DetachOverlay removes the named overlay. Missing names are ignored.
	DetachOverlay(name string)
}

// Host resolves references to drawable targets. It stands in for the page
// layout that owns the real surfaces.
type Host interface {
	Surface(ref string) (Surface, bool)
	Container(ref string) (Container, bool)
}

// OverlayName is the overlay name special effects attach to their container.
const OverlayName = "flourish-overlay"
