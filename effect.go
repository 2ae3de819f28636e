package flourish

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tanema/gween/ease"
)

// Variant selects which special effect RunSpecialEffect plays.
type Variant uint8

const (
	VariantScrolls   Variant = iota // floating parchment panels, no particles
	VariantHolo                     // pulsing rings with sparks near the center
	VariantStorm                    // lightning flashes and scattered sparks
	VariantFireworks                // radial bursts in the upper part of the surface
	VariantFlowers                  // petals launched from below the bottom edge
	variantCount
)

var variantNames = [variantCount]string{
	VariantScrolls:   "scrolls",
	VariantHolo:      "holo",
	VariantStorm:     "storm",
	VariantFireworks: "fireworks",
	VariantFlowers:   "flowers",
}

// String returns the variant's name as accepted by ParseVariant.
func (v Variant) String() string {
	if v.Valid() {
		return variantNames[v]
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// Valid reports whether v names a known variant.
func (v Variant) Valid() bool {
	return v < variantCount
}

// Variants returns every known variant in declaration order.
func Variants() []Variant {
	vs := make([]Variant, variantCount)
	for i := range vs {
		vs[i] = Variant(i)
	}
	return vs
}

// ParseVariant maps a variant name to its Variant.
func ParseVariant(name string) (Variant, error) {
	for i, n := range variantNames {
		if n == name {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect variant %q", name)
}

// spawnPolicy paints a variant's background elements and adds new particles
// for one tick. e is the elapsed time in milliseconds.
type spawnPolicy func(l *effectLoop, e, w, h float64)

var spawnPolicies = [variantCount]spawnPolicy{
	VariantScrolls:   spawnScrolls,
	VariantHolo:      spawnHolo,
	VariantStorm:     spawnStorm,
	VariantFireworks: spawnFireworks,
	VariantFlowers:   spawnFlowers,
}

const (
	defaultEffectDuration = 2000 * time.Millisecond

	scrollCount        = 6
	holoRingCount      = 4
	fireworkBurstCount = 28
	holoHueOffset      = 180
	stormFlashAlpha    = 0.22
)

var (
	parchmentFill   = RGBA(255, 240, 200, 0.95)
	parchmentStroke = RGBA(120, 90, 20, 0.6)
	flashColor      = RGBA(200, 220, 255, 1)
	petalColor      = RGBA(255, 160, 200, 0.92)

	fireworkSpeed = Range{2, 8}
)

// EffectOptions configures RunSpecialEffect. Zero fields take their defaults.
type EffectOptions struct {
	Duration time.Duration // how long the effect plays (default 2s)
}

func (o EffectOptions) withDefaults() EffectOptions {
	if o.Duration <= 0 {
		o.Duration = defaultEffectDuration
	}
	return o
}

// effectLoop plays one special effect on an overlay until its duration runs
// out. Every variant shares particle integration and painting; only the
// spawn policy differs.
type effectLoop struct {
	surface  Surface
	variant  Variant
	spawn    spawnPolicy
	tuning   VariantTuning
	gravity  float64
	flashLen int

	pool  *ParticlePool
	flash *fade
	rng   *rand.Rand

	time     TimeSource
	start    time.Time
	duration time.Duration

	// finish stops the owning handle once the duration has elapsed.
	finish func()
}

func newEffectLoop(surface Surface, v Variant, opts EffectOptions, tuning *Tuning, rng *rand.Rand, ts TimeSource) *effectLoop {
	opts = opts.withDefaults()
	return &effectLoop{
		surface:  surface,
		variant:  v,
		spawn:    spawnPolicies[v],
		tuning:   tuning.variant(v),
		gravity:  tuning.Gravity,
		flashLen: tuning.FlashFrames,
		pool:     newParticlePool(128),
		rng:      rng,
		time:     ts,
		start:    ts.Now(),
		duration: opts.Duration,
	}
}

// elapsed returns the time since the effect started.
func (l *effectLoop) elapsed() time.Duration {
	return l.time.Now().Sub(l.start)
}

func (l *effectLoop) tick() {
	elapsed := l.elapsed()
	w, h := l.surface.Size()

	l.surface.Clear()
	l.spawn(l, float64(elapsed)/float64(time.Millisecond), w, h)

	// Reaping happens before painting and before the next tick's spawn, so
	// dead particles are never drawn or carried into the next frame.
	l.pool.Step(l.gravity)
	l.drawParticles(w, h)

	if elapsed >= l.duration && l.finish != nil {
		l.finish()
	}
}

// drawParticles paints every live particle that can overlap the w x h
// surface. Particles still below the bottom edge, like freshly launched
// petals, are skipped.
func (l *effectLoop) drawParticles(w, h float64) {
	for _, p := range l.pool.Particles() {
		if !particleVisible(p, w, h) {
			continue
		}
		if l.variant == VariantFlowers {
			l.surface.FillEllipse(p.X, p.Y, p.Size, p.Size*0.6, petalColor)
			continue
		}
		l.surface.FillRect(Rect{X: p.X, Y: p.Y, Width: p.Size, Height: p.Size}, HSL(p.Hue, 0.8, 0.6, 1))
	}
}

// particleVisible reports whether p's square (or petal ellipse, which fits
// in the same reach) may overlap a w x h surface.
func particleVisible(p Particle, w, h float64) bool {
	reach := Rect{X: -p.Size, Y: -p.Size, Width: w + 2*p.Size, Height: h + 2*p.Size}
	return reach.Contains(p.X, p.Y)
}

// teardown clears whatever the effect last painted and releases the pool,
// overlay and flash. The loop must not tick afterwards.
func (l *effectLoop) teardown() {
	l.surface.Clear()
	l.pool.Reset()
	l.pool = nil
	l.surface = nil
	l.flash = nil
	l.finish = nil
}

// spawnParticle adds one generic spark at (x, y) with a randomized upward
// kick.
func (l *effectLoop) spawnParticle(x, y float64) {
	hue := math.Floor(l.rng.Float64() * 60)
	if l.variant == VariantHolo {
		hue += holoHueOffset
	}
	l.pool.Spawn(Particle{
		X:    x,
		Y:    y,
		VX:   (l.rng.Float64() - 0.5) * 6,
		VY:   (l.rng.Float64()-0.7)*6 - 2,
		Size: l.tuning.Size.Sample(l.rng),
		Life: l.tuning.Lifetime.Sample(l.rng),
		Hue:  hue,
	})
}

// spawnBurst adds fireworkBurstCount particles at (x, y) with directions
// evenly spaced around the circle and a random magnitude each.
func (l *effectLoop) spawnBurst(x, y float64) {
	for i := 0; i < fireworkBurstCount; i++ {
		angle := math.Pi * 2 * float64(i) / fireworkBurstCount
		speed := fireworkSpeed.Sample(l.rng)
		l.pool.Spawn(Particle{
			X:    x,
			Y:    y,
			VX:   math.Cos(angle) * speed,
			VY:   math.Sin(angle) * speed,
			Size: l.tuning.Size.Sample(l.rng),
			Life: l.tuning.Lifetime.Sample(l.rng),
			Hue:  l.rng.Float64() * 360,
		})
	}
}

func spawnScrolls(l *effectLoop, e, w, h float64) {
	for i := 0; i < scrollCount; i++ {
		fi := float64(i)
		sx := w*0.1 + fi*w*0.12 + math.Sin(e/800+fi)*10
		sy := h*0.7 - math.Sin(e/700+fi)*60
		panel := Rect{X: sx - 40, Y: sy - 22, Width: 80, Height: 44}
		l.surface.FillRect(panel, parchmentFill)
		l.surface.StrokeRect(panel, parchmentStroke, 1)
	}
}

func spawnHolo(l *effectLoop, e, w, h float64) {
	center := Rect{Width: w, Height: h}.Center()
	cx, cy := center.X, center.Y
	ring := math.Abs(math.Sin(e/400))*120 + 20
	for r := 0; r < holoRingCount; r++ {
		radius := ring + float64(r)*20
		c := RGBA(120, 220, 255, 0.08+float64(r)*0.06)
		l.surface.StrokeEllipse(cx, cy, radius, radius, c, 2)
	}
	if chance(l.rng, l.tuning.SpawnChance) {
		l.spawnParticle(cx+(l.rng.Float64()-0.5)*80, cy+(l.rng.Float64()-0.5)*80)
	}
}

func spawnStorm(l *effectLoop, _, w, h float64) {
	if chance(l.rng, l.tuning.FlashChance) {
		l.flash = newFade(stormFlashAlpha, l.flashLen, ease.OutQuad)
	}
	if !l.flash.Done() {
		l.surface.FillRect(Rect{Width: w, Height: h}, flashColor.WithAlpha(l.flash.Value()))
		l.flash.Update()
	}
	if chance(l.rng, l.tuning.SpawnChance) {
		l.spawnParticle(l.rng.Float64()*w, l.rng.Float64()*h)
	}
}

func spawnFireworks(l *effectLoop, _, w, h float64) {
	if chance(l.rng, l.tuning.SpawnChance) {
		l.spawnBurst(l.rng.Float64()*w, l.rng.Float64()*h*0.6)
	}
}

func spawnFlowers(l *effectLoop, _, w, h float64) {
	if chance(l.rng, l.tuning.SpawnChance) {
		l.spawnParticle(l.rng.Float64()*w, h+20)
	}
}
