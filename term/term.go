// Package term paints flourish effects onto a terminal through tcell.
//
// Each cell stands for a block of CellWidth x CellHeight virtual pixels, so
// effects tuned for pixel surfaces keep their proportions. Fills and
// gradients blend into the cell background; glyphs replace the cell rune.
package term

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/flourish"
)

// Default virtual pixel size of one terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Surface is a flourish.Surface covering a rectangle of terminal cells.
type Surface struct {
	screen     tcell.Screen
	x, y       int // top-left cell
	cols, rows int
}

// NewSurface creates a surface over cols x rows cells starting at (x, y).
func NewSurface(screen tcell.Screen, x, y, cols, rows int) *Surface {
	return &Surface{screen: screen, x: x, y: y, cols: cols, rows: rows}
}

// SetRegion moves and resizes the surface, as after a terminal resize.
func (s *Surface) SetRegion(x, y, cols, rows int) {
	s.x, s.y, s.cols, s.rows = x, y, cols, rows
}

func (s *Surface) Size() (w, h float64) {
	return float64(s.cols * CellWidth), float64(s.rows * CellHeight)
}

func (s *Surface) Clear() {
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			s.screen.SetContent(s.x+col, s.y+row, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (s *Surface) FillRect(r flourish.Rect, c flourish.Color) {
	c0, r0, c1, r1 := s.cellSpan(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			s.blend(col, row, c)
		}
	}
}

func (s *Surface) StrokeRect(r flourish.Rect, c flourish.Color, _ float64) {
	c0, r0, c1, r1 := s.cellSpan(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if row == r0 || row == r1 || col == c0 || col == c1 {
				s.blend(col, row, c)
			}
		}
	}
}

func (s *Surface) FillEllipse(cx, cy, rx, ry float64, c flourish.Color) {
	s.eachInEllipse(cx, cy, rx, ry, func(col, row int, d float64) {
		if d <= 1 {
			s.blend(col, row, c)
		}
	})
}

func (s *Surface) StrokeEllipse(cx, cy, rx, ry float64, c flourish.Color, width float64) {
	// A stroke is at least one cell thick, or it would vanish between samples.
	band := math.Max(width/2, CellWidth/2) / math.Max(math.Min(rx, ry), 1)
	s.eachInEllipse(cx, cy, rx+CellWidth, ry+CellHeight, func(col, row int, _ float64) {
		px, py := s.cellCenter(col, row)
		d := ellipseDistance(px-cx, py-cy, rx, ry)
		if math.Abs(d-1) <= band {
			s.blend(col, row, c)
		}
	})
}

func (s *Surface) FillGlyph(glyph string, x, y, _ float64, c flourish.Color) {
	if glyph == "" {
		return
	}
	col := int(math.Floor(x / CellWidth))
	row := int(math.Floor(y/CellHeight)) - 1 // y is the baseline; the glyph sits in the cell above
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}
	r := []rune(glyph)
	_, _, style, _ := s.screen.GetContent(s.x+col, s.y+row)
	s.screen.SetContent(s.x+col, s.y+row, r[0], r[1:], style.Foreground(toTcell(c)))
}

func (s *Surface) FillRadialGradient(cx, cy, radius float64, inner, outer flourish.Color) {
	s.eachInEllipse(cx, cy, radius, radius, func(col, row int, d float64) {
		if d <= 1 {
			s.blend(col, row, inner.Lerp(outer, d))
		}
	})
}

// cellSpan converts a pixel rectangle to the inclusive range of cells it
// touches, clipped to the surface.
func (s *Surface) cellSpan(x0, y0, x1, y1 float64) (c0, r0, c1, r1 int) {
	c0 = max(int(math.Floor(x0/CellWidth)), 0)
	r0 = max(int(math.Floor(y0/CellHeight)), 0)
	c1 = min(int(math.Ceil(x1/CellWidth))-1, s.cols-1)
	r1 = min(int(math.Ceil(y1/CellHeight))-1, s.rows-1)
	return c0, r0, c1, r1
}

func (s *Surface) cellCenter(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

// eachInEllipse calls fn for every cell of the ellipse's bounding box with
// the normalized distance of the cell center from (cx, cy).
func (s *Surface) eachInEllipse(cx, cy, rx, ry float64, fn func(col, row int, d float64)) {
	if rx <= 0 || ry <= 0 {
		return
	}
	c0, r0, c1, r1 := s.cellSpan(cx-rx, cy-ry, cx+rx, cy+ry)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			px, py := s.cellCenter(col, row)
			fn(col, row, ellipseDistance(px-cx, py-cy, rx, ry))
		}
	}
}

func ellipseDistance(dx, dy, rx, ry float64) float64 {
	return math.Sqrt((dx*dx)/(rx*rx) + (dy*dy)/(ry*ry))
}

// blend composites c over the cell's current background.
func (s *Surface) blend(col, row int, c flourish.Color) {
	if c.A <= 0 {
		return
	}
	x, y := s.x+col, s.y+row
	mainc, combc, style, _ := s.screen.GetContent(x, y)
	_, bg, _ := style.Decompose()

	var br, bgr, bb float64
	if bg != tcell.ColorDefault && bg.Valid() {
		r, g, b := bg.RGB()
		br, bgr, bb = float64(r)/255, float64(g)/255, float64(b)/255
	}
	out := flourish.Color{
		R: c.R*c.A + br*(1-c.A),
		G: c.G*c.A + bgr*(1-c.A),
		B: c.B*c.A + bb*(1-c.A),
		A: 1,
	}
	if mainc == 0 {
		mainc = ' '
	}
	s.screen.SetContent(x, y, mainc, combc, style.Background(toTcell(out)))
}

func toTcell(c flourish.Color) tcell.Color {
	return tcell.NewRGBColor(
		int32(math.Round(clamp01(c.R)*255)),
		int32(math.Round(clamp01(c.G)*255)),
		int32(math.Round(clamp01(c.B)*255)),
	)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
