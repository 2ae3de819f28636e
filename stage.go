package flourish

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// StageOptions wires a Stage to its collaborators. Nil fields take defaults.
type StageOptions struct {
	// Registry receives every loop the stage starts. Defaults to
	// DefaultRegistry, shared by the whole process, whose logger Logger
	// does not replace.
	Registry *Registry
	// Driver delivers frames to every loop. Defaults to a new FrameDriver.
	Driver *FrameDriver
	// Time measures special-effect durations. Defaults to SystemTime.
	Time TimeSource
	// Rand seeds entity parameters and spawn decisions. Defaults to a
	// randomly seeded PCG source.
	Rand *rand.Rand
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Tuning defaults to DefaultTuning.
	Tuning *Tuning
}

// Stage starts effect loops against the targets a Host resolves and drives
// them from one FrameDriver. A Stage is not safe for concurrent use: call
// its methods and Update from the goroutine that delivers frames.
type Stage struct {
	host     Host
	registry *Registry
	driver   *FrameDriver
	time     TimeSource
	rng      *rand.Rand
	log      *zap.Logger
	tuning   Tuning
	debug    bool
	script   *Script
}

// NewStage creates a stage that resolves targets through host.
func NewStage(host Host, opts StageOptions) *Stage {
	s := &Stage{
		host:     host,
		registry: opts.Registry,
		driver:   opts.Driver,
		time:     opts.Time,
		rng:      opts.Rand,
		log:      opts.Logger,
		tuning:   DefaultTuning(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	if s.driver == nil {
		s.driver = NewFrameDriver()
	}
	if s.time == nil {
		s.time = SystemTime{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Tuning != nil {
		s.tuning = *opts.Tuning
	}
	return s
}

// Registry returns the registry loops are recorded in.
func (s *Stage) Registry() *Registry { return s.registry }

// Driver returns the frame driver loops are subscribed to.
func (s *Stage) Driver() *FrameDriver { return s.driver }

// SetEventSink forwards loop lifecycle events to sink.
func (s *Stage) SetEventSink(sink EventSink) {
	s.registry.SetEventSink(sink)
}

// SetScript attaches a scenario script stepped at the start of every Update.
// Pass nil to detach.
func (s *Stage) SetScript(script *Script) {
	s.script = script
}

// Update advances every loop by one frame. Call it once per display refresh.
func (s *Stage) Update() FrameStats {
	if s.script != nil {
		s.script.step(s)
	}
	stats := s.driver.Advance()
	if s.debug {
		s.debugLog(stats)
	}
	return stats
}

// SpawnBirds starts a loop flying glyphs across the surface ref resolves to.
// It reports false, starting nothing, when ref does not resolve.
func (s *Stage) SpawnBirds(ref string, opts BirdOptions) (LoopID, bool) {
	surface, ok := s.host.Surface(ref)
	if !ok {
		s.log.Debug("surface not found", zap.String("ref", ref), zap.String("kind", string(KindBirds)))
		return "", false
	}
	loop := newBirdsLoop(surface, opts, s.rng)
	h := s.startLoop(KindBirds, ref, surface, loop.tick, nil)
	return h.ID(), true
}

// StartOrbitVisualization starts a loop of nodes orbiting a pulsing core on
// the surface ref resolves to. It reports false when ref does not resolve.
func (s *Stage) StartOrbitVisualization(ref string, opts OrbitOptions) (LoopID, bool) {
	surface, ok := s.host.Surface(ref)
	if !ok {
		s.log.Debug("surface not found", zap.String("ref", ref), zap.String("kind", string(KindOrbit)))
		return "", false
	}
	loop := newOrbitLoop(surface, opts, s.rng)
	h := s.startLoop(KindOrbit, ref, surface, loop.tick, nil)
	return h.ID(), true
}

// RunSpecialEffect plays variant v on an overlay attached to the container
// ref resolves to. The effect stops itself once its duration has elapsed,
// clearing the overlay and detaching it if this call created it. It returns
// nil when ref does not resolve or v is unknown.
func (s *Stage) RunSpecialEffect(ref string, v Variant, opts EffectOptions) *Handle {
	if !v.Valid() {
		s.log.Warn("unknown effect variant", zap.Stringer("variant", v))
		return nil
	}
	container, ok := s.host.Container(ref)
	if !ok {
		s.log.Debug("container not found", zap.String("ref", ref), zap.Stringer("variant", v))
		return nil
	}

	overlay, created := container.AttachOverlay(OverlayName)
	loop := newEffectLoop(overlay, v, opts, &s.tuning, s.rng, s.time)
	teardown := func() {
		loop.teardown()
		if created {
			container.DetachOverlay(OverlayName)
		}
	}

	h := s.startLoop(KindEffect, ref+"/"+v.String(), overlay, loop.tick, teardown)
	loop.finish = func() {
		s.log.Debug("effect finished", zap.String("loop", string(h.ID())), zap.Duration("elapsed", loop.elapsed()))
		_ = h.Stop()
	}
	return h
}

// StopAllAnimations stops every loop in the stage's registry and clears it.
func (s *Stage) StopAllAnimations() {
	s.registry.StopAll()
}

// startLoop registers a handle for tick and subscribes it to a fresh clock.
func (s *Stage) startLoop(kind LoopKind, ref string, surface Surface, tick func(), teardown func()) *Handle {
	id := newLoopID(kind, ref)
	h := newHandle(id, kind, surface, s.driver.NewClock(), func() {
		if teardown != nil {
			teardown()
		}
		s.log.Debug("loop stopped", zap.String("loop", string(id)))
		s.registry.emit(LoopEvent{Type: LoopEventStopped, ID: id, Kind: kind})
	})

	s.registry.Register(id, h.Stop)
	h.start(tick)

	s.log.Debug("loop started", zap.String("loop", string(id)), zap.String("kind", string(kind)))
	s.registry.emit(LoopEvent{Type: LoopEventStarted, ID: id, Kind: kind})
	return h
}
