package flourish

import (
	"math"
	"math/rand/v2"
)

const defaultOrbitNodes = 5

// OrbitOptions configures StartOrbitVisualization. Zero fields take their
// defaults.
type OrbitOptions struct {
	Nodes int // number of orbiting nodes (default 5)
}

func (o OrbitOptions) withDefaults() OrbitOptions {
	if o.Nodes <= 0 {
		o.Nodes = defaultOrbitNodes
	}
	return o
}

// Orb is a node on an elliptical orbit around the surface center.
type Orb struct {
	Angle  float64
	Radius float64
	Speed  float64 // radians per frame before modulation
	Size   float64
	Hue    float64
}

var (
	orbRadius = Range{60, 150}
	orbSpeed  = Range{0.002, 0.008}
	orbSize   = Range{8, 18}
	orbHue    = Range{180, 320}

	coreFill   = RGBA(120, 200, 255, 0.12)
	coreStroke = RGBA(120, 200, 255, 0.22)
	orbitGuide = ColorWhite.WithAlpha(0.02)
)

// orbitFlatten squashes orbits vertically into ellipses.
const orbitFlatten = 0.6

// orbitLoop paints server nodes circling a pulsing core.
type orbitLoop struct {
	surface Surface
	orbs    []Orb
	t       float64 // frames ticked
}

func newOrbitLoop(surface Surface, opts OrbitOptions, rng *rand.Rand) *orbitLoop {
	opts = opts.withDefaults()
	orbs := make([]Orb, opts.Nodes)
	for i := range orbs {
		orbs[i] = Orb{
			Angle:  float64(i) / float64(opts.Nodes) * math.Pi * 2,
			Radius: orbRadius.Sample(rng),
			Speed:  orbSpeed.Sample(rng),
			Size:   orbSize.Sample(rng),
			Hue:    orbHue.Sample(rng),
		}
	}
	return &orbitLoop{surface: surface, orbs: orbs}
}

// update moves every orb along its orbit. The angular speed of all orbs is
// modulated together by a slow sine of the frame counter.
func (l *orbitLoop) update() {
	mod := 1 + math.Sin(l.t*0.001)*0.3
	for i := range l.orbs {
		l.orbs[i].Angle += l.orbs[i].Speed * mod
	}
}

// position returns the orb's offset from the orbit center.
func (o *Orb) position() (x, y float64) {
	return math.Cos(o.Angle) * o.Radius, math.Sin(o.Angle) * o.Radius * orbitFlatten
}

func (l *orbitLoop) draw() {
	w, h := l.surface.Size()
	center := Rect{Width: w, Height: h}.Center()
	cx, cy := center.X, center.Y

	l.surface.Clear()

	core := 28 + math.Sin(l.t*0.02)*6
	l.surface.FillEllipse(cx, cy, core, core, coreFill)
	l.surface.StrokeEllipse(cx, cy, core, core, coreStroke, 2)

	for i := range l.orbs {
		o := &l.orbs[i]
		ox, oy := o.position()
		x, y := cx+ox, cy+oy

		l.surface.StrokeEllipse(cx, cy, o.Radius, o.Radius*orbitFlatten, orbitGuide, 1)
		l.surface.FillEllipse(x, y, o.Size, o.Size, HSL(o.Hue, 0.7, 0.6, 0.95))
		l.surface.FillRadialGradient(x, y, o.Size*3, HSL(o.Hue, 0.7, 0.6, 0.12), ColorTransparent)
	}
}

func (l *orbitLoop) tick() {
	l.update()
	l.draw()
	l.t++
}
