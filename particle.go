package flourish

// Particle is a short-lived point entity. Life counts remaining frames.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Size   float64
	Life   float64
	Hue    float64 // degrees, sampled at spawn
}

// ParticlePool is an unordered collection of live particles. Dead particles
// are swap-removed, so iteration order changes as particles expire.
type ParticlePool struct {
	particles []Particle
}

// newParticlePool creates an empty pool with room for capacity particles
// before it needs to grow.
func newParticlePool(capacity int) *ParticlePool {
	if capacity <= 0 {
		capacity = 64
	}
	return &ParticlePool{particles: make([]Particle, 0, capacity)}
}

// Spawn adds p to the pool.
func (pp *ParticlePool) Spawn(p Particle) {
	pp.particles = append(pp.particles, p)
}

// Len returns the number of live particles.
func (pp *ParticlePool) Len() int {
	return len(pp.particles)
}

// Particles returns the live particles. The slice is only valid until the
// next Spawn, Step or Reset.
func (pp *ParticlePool) Particles() []Particle {
	return pp.particles
}

// Reset kills every particle.
func (pp *ParticlePool) Reset() {
	pp.particles = pp.particles[:0]
}

// Step integrates every particle by one frame and reaps the ones whose life
// has run out: position += velocity, vy += gravity, life -= 1. It returns
// the number of particles removed.
func (pp *ParticlePool) Step(gravity float64) int {
	removed := 0
	i := 0
	for i < len(pp.particles) {
		p := &pp.particles[i]
		p.X += p.VX
		p.Y += p.VY
		p.VY += gravity
		p.Life--
		if p.Life <= 0 {
			last := len(pp.particles) - 1
			pp.particles[i] = pp.particles[last]
			pp.particles = pp.particles[:last]
			removed++
			continue
		}
		i++
	}
	return removed
}
