package flourish

import (
	"image/color"
	"testing"
)

func TestRGBA(t *testing.T) {
	c := RGBA(255, 0, 51, 0.5)
	assertNear(t, "R", c.R, 1)
	assertNear(t, "G", c.G, 0)
	assertNear(t, "B", c.B, 0.2)
	assertNear(t, "A", c.A, 0.5)

	if got := RGBA(0, 0, 0, 3).A; got != 1 {
		t.Errorf("alpha not clamped: %v", got)
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		name    string
		h       float64
		r, g, b float64
	}{
		{"red", 0, 1, 0, 0},
		{"green", 120, 0, 1, 0},
		{"blue", 240, 0, 0, 1},
		{"wrap", 360, 1, 0, 0},
		{"negative", -120, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := HSL(tt.h, 1, 0.5, 1)
			const tol = 1e-6
			if abs(c.R-tt.r) > tol || abs(c.G-tt.g) > tol || abs(c.B-tt.b) > tol {
				t.Errorf("HSL(%v) = %+v, want (%v, %v, %v)", tt.h, c, tt.r, tt.g, tt.b)
			}
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestColorLerp(t *testing.T) {
	c := ColorTransparent.Lerp(ColorWhite, 0.25)
	assertNear(t, "R", c.R, 0.25)
	assertNear(t, "A", c.A, 0.25)
}

func TestColorImplementsColor(t *testing.T) {
	var c color.Color = Color{R: 1, G: 0.5, B: 0, A: 0.5}
	r, g, b, a := c.RGBA()
	// Premultiplied: 1*0.5 -> 127, 0.5*0.5 -> 63.
	if r>>8 != 127 || g>>8 != 63 || b != 0 || a>>8 != 127 {
		t.Errorf("RGBA() = (%d, %d, %d, %d)", r>>8, g>>8, b>>8, a>>8)
	}
	if r > a || g > a {
		t.Error("premultiplied channel exceeds alpha")
	}
}

func TestWithAlpha(t *testing.T) {
	c := ColorWhite.WithAlpha(0.3)
	assertNear(t, "A", c.A, 0.3)
	assertNear(t, "R", c.R, 1)
}
