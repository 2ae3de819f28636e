package flourish

import (
	"math"
	"math/rand/v2"
)

const (
	defaultBirdCount = 8
	defaultBirdGlyph = "🐦"

	// Birds leaving past the right edge by this margin re-enter at birdReentryX.
	birdWrapMargin = 60
	birdReentryX   = -80
)

// BirdOptions configures SpawnBirds. Zero fields take their defaults.
type BirdOptions struct {
	Count int    // number of birds (default 8)
	Glyph string // symbol painted for each bird (default "🐦")
}

func (o BirdOptions) withDefaults() BirdOptions {
	if o.Count <= 0 {
		o.Count = defaultBirdCount
	}
	if o.Glyph == "" {
		o.Glyph = defaultBirdGlyph
	}
	return o
}

// Bird is a persistent sprite gliding right with a sinusoidal bob.
type Bird struct {
	X, Y  float64
	Speed float64
	Phase float64
	Size  float64
	Glyph string
}

var (
	birdSpeed = Range{0.4, 1.6}
	birdSize  = Range{22, 40}
)

// birdsLoop flies glyphs across a surface until stopped.
type birdsLoop struct {
	surface Surface
	birds   []Bird
}

func newBirdsLoop(surface Surface, opts BirdOptions, rng *rand.Rand) *birdsLoop {
	opts = opts.withDefaults()
	w, h := surface.Size()
	birds := make([]Bird, opts.Count)
	for i := range birds {
		birds[i] = Bird{
			X:     rng.Float64() * w,
			Y:     rng.Float64() * h * 0.5,
			Speed: birdSpeed.Sample(rng),
			Phase: rng.Float64() * math.Pi * 2,
			Size:  birdSize.Sample(rng),
			Glyph: opts.Glyph,
		}
	}
	return &birdsLoop{surface: surface, birds: birds}
}

// update advances every bird one frame and wraps those past the right edge.
func (l *birdsLoop) update() {
	w, _ := l.surface.Size()
	for i := range l.birds {
		b := &l.birds[i]
		b.X += b.Speed
		b.Phase += 0.02 * b.Speed
		b.Y += math.Sin(b.Phase) * 0.5
		if b.X > w+birdWrapMargin {
			b.X = birdReentryX
		}
	}
}

func (l *birdsLoop) draw() {
	l.surface.Clear()
	for i := range l.birds {
		b := &l.birds[i]
		l.surface.FillGlyph(b.Glyph, b.X, b.Y+b.Size*0.4, b.Size, ColorWhite)
	}
}

func (l *birdsLoop) tick() {
	l.update()
	l.draw()
}
