package flourish

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSpawnBirdsStartsLoop(t *testing.T) {
	s, host, _ := newTestStage()
	sky := newRecordingSurface(800, 400)
	host.surfaces["sky"] = sky

	id, ok := s.SpawnBirds("sky", BirdOptions{Count: 3})
	if !ok {
		t.Fatal("SpawnBirds returned false")
	}
	if !strings.HasPrefix(string(id), "birds:sky:") {
		t.Errorf("id = %q", id)
	}
	if s.Registry().Len() != 1 {
		t.Errorf("registry Len = %d, want 1", s.Registry().Len())
	}

	// Nothing is painted until the first frame.
	if sky.clears != 0 {
		t.Errorf("painted before first frame")
	}
	s.Update()
	if n := sky.count("glyph"); n != 3 {
		t.Errorf("glyphs = %d, want 3", n)
	}
}

func TestSpawnBirdsMissingSurface(t *testing.T) {
	s, _, _ := newTestStage()
	id, ok := s.SpawnBirds("nowhere", BirdOptions{})
	if ok || id != "" {
		t.Errorf("SpawnBirds = (%q, %v), want (\"\", false)", id, ok)
	}
	if s.Registry().Len() != 0 {
		t.Errorf("registry Len = %d, want 0", s.Registry().Len())
	}
	if stats := s.Update(); stats.Ticked != 0 {
		t.Errorf("Ticked = %d, want 0", stats.Ticked)
	}
}

func TestStartOrbitVisualization(t *testing.T) {
	s, host, _ := newTestStage()
	panel := newRecordingSurface(400, 300)
	host.surfaces["panel"] = panel

	if _, ok := s.StartOrbitVisualization("panel", OrbitOptions{Nodes: 2}); !ok {
		t.Fatal("StartOrbitVisualization returned false")
	}
	s.Update()
	if n := panel.count("gradient"); n != 2 {
		t.Errorf("gradients = %d, want 2", n)
	}

	if _, ok := s.StartOrbitVisualization("missing", OrbitOptions{}); ok {
		t.Error("missing surface should report false")
	}
}

func TestSpawnTwiceRunsTwoLoops(t *testing.T) {
	s, host, _ := newTestStage()
	host.surfaces["sky"] = newRecordingSurface(800, 400)

	a, _ := s.SpawnBirds("sky", BirdOptions{Count: 1})
	b, _ := s.SpawnBirds("sky", BirdOptions{Count: 1})
	if a == b {
		t.Errorf("loop IDs collide: %q", a)
	}
	if stats := s.Update(); stats.Ticked != 2 {
		t.Errorf("Ticked = %d, want 2", stats.Ticked)
	}
}

func TestStopAllAnimationsHaltsTicks(t *testing.T) {
	s, host, _ := newTestStage()
	sky := newRecordingSurface(800, 400)
	host.surfaces["sky"] = sky
	host.surfaces["panel"] = newRecordingSurface(400, 300)

	s.SpawnBirds("sky", BirdOptions{Count: 2})
	s.StartOrbitVisualization("panel", OrbitOptions{})
	s.Update()

	s.StopAllAnimations()
	if s.Registry().Len() != 0 {
		t.Errorf("registry Len = %d, want 0", s.Registry().Len())
	}

	clears := sky.clears
	stats := s.Update()
	if stats.Ticked != 0 || stats.Active != 0 {
		t.Errorf("stats after StopAll = %+v", stats)
	}
	if sky.clears != clears {
		t.Error("stopped loop painted again")
	}

	// A second StopAll is a no-op.
	s.StopAllAnimations()
}

func TestRunSpecialEffectLifecycle(t *testing.T) {
	s, host, mt := newTestStage()
	banner := newFakeContainer(640, 200)
	host.containers["banner"] = banner

	h := s.RunSpecialEffect("banner", VariantFireworks, EffectOptions{Duration: 100 * time.Millisecond})
	if h == nil {
		t.Fatal("RunSpecialEffect returned nil")
	}
	if !h.Running() || h.Kind() != KindEffect {
		t.Fatalf("handle = running %v kind %q", h.Running(), h.Kind())
	}
	if banner.attaches != 1 {
		t.Fatalf("attaches = %d, want 1", banner.attaches)
	}
	overlay := banner.overlays[OverlayName]
	if h.Surface() != Surface(overlay) {
		t.Error("handle surface is not the overlay")
	}

	for i := 0; i < 5; i++ {
		s.Update()
		mt.Advance(10 * time.Millisecond)
	}
	if !h.Running() {
		t.Fatal("effect stopped before its duration")
	}

	mt.Advance(100 * time.Millisecond)
	s.Update()
	if h.Running() {
		t.Fatal("effect still running after its duration")
	}
	if banner.detaches != 1 {
		t.Errorf("detaches = %d, want 1", banner.detaches)
	}
	if len(overlay.calls) != 0 {
		t.Errorf("overlay not cleared: %d calls", len(overlay.calls))
	}

	if stats := s.Update(); stats.Ticked != 0 {
		t.Errorf("finished effect still ticking: %+v", stats)
	}

	// The registry still holds Stop until StopAll, but the handle no
	// longer reaches the overlay, its clock or the effect's particles.
	if s.Registry().Len() != 1 {
		t.Fatalf("registry Len = %d, want 1", s.Registry().Len())
	}
	if h.Surface() != nil || h.clock != nil || h.teardown != nil {
		t.Errorf("stopped handle retains state: surface %v clock %v teardown %v",
			h.Surface() != nil, h.clock != nil, h.teardown != nil)
	}
}

func TestRunSpecialEffectStopIsIdempotent(t *testing.T) {
	s, host, _ := newTestStage()
	banner := newFakeContainer(640, 200)
	host.containers["banner"] = banner

	h := s.RunSpecialEffect("banner", VariantHolo, EffectOptions{})
	s.Update()

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if banner.detaches != 1 {
		t.Errorf("detaches = %d, want 1", banner.detaches)
	}

	// StopAll still holds the handle's stop and must tolerate it.
	s.StopAllAnimations()
	if banner.detaches != 1 {
		t.Errorf("detaches after StopAll = %d, want 1", banner.detaches)
	}
}

func TestRunSpecialEffectKeepsExistingOverlay(t *testing.T) {
	s, host, _ := newTestStage()
	banner := newFakeContainer(640, 200)
	host.containers["banner"] = banner
	banner.AttachOverlay(OverlayName)

	h := s.RunSpecialEffect("banner", VariantStorm, EffectOptions{})
	s.Update()
	_ = h.Stop()

	if banner.detaches != 0 {
		t.Errorf("detached an overlay this effect did not create")
	}
	if _, ok := banner.overlays[OverlayName]; !ok {
		t.Error("pre-existing overlay removed")
	}
}

func TestRunSpecialEffectMissingContainer(t *testing.T) {
	s, _, _ := newTestStage()
	if h := s.RunSpecialEffect("nowhere", VariantFireworks, EffectOptions{}); h != nil {
		t.Errorf("handle = %v, want nil", h.ID())
	}
	if s.Registry().Len() != 0 {
		t.Errorf("registry Len = %d, want 0", s.Registry().Len())
	}
}

func TestRunSpecialEffectUnknownVariant(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	host := newFakeHost()
	banner := newFakeContainer(640, 200)
	host.containers["banner"] = banner
	s := NewStage(host, StageOptions{Registry: NewRegistry(nil), Logger: zap.New(core), Rand: testRand()})

	if h := s.RunSpecialEffect("banner", Variant(99), EffectOptions{}); h != nil {
		t.Error("unknown variant returned a handle")
	}
	if banner.attaches != 0 {
		t.Error("unknown variant attached an overlay")
	}
	if logs.FilterMessage("unknown effect variant").Len() != 1 {
		t.Error("unknown variant not logged")
	}
}

func TestStopAllSurvivesFailingStop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	host := newFakeHost()
	sky := newRecordingSurface(800, 400)
	panel := newRecordingSurface(400, 300)
	host.surfaces["sky"] = sky
	host.surfaces["panel"] = panel
	s := NewStage(host, StageOptions{Registry: NewRegistry(zap.New(core)), Rand: testRand()})

	s.SpawnBirds("sky", BirdOptions{Count: 2})
	s.Registry().Register("broken", func() error { return errors.New("stop failed") })
	s.StartOrbitVisualization("panel", OrbitOptions{})
	s.Registry().Register("panicky", func() error { panic("stop panicked") })
	if stats := s.Update(); stats.Ticked != 2 {
		t.Fatalf("Ticked = %d, want 2", stats.Ticked)
	}

	s.StopAllAnimations()
	if logs.FilterMessage("stop failed").Len() != 2 {
		t.Errorf("failed stops logged = %d, want 2", logs.FilterMessage("stop failed").Len())
	}

	skyClears, panelClears := sky.clears, panel.clears
	for i := 0; i < 3; i++ {
		if stats := s.Update(); stats.Ticked != 0 || stats.Active != 0 {
			t.Fatalf("frame %d after StopAll: %+v", i, stats)
		}
	}
	if sky.clears != skyClears || panel.clears != panelClears {
		t.Error("a loop painted after StopAll")
	}
}

func TestNewStageLeavesDefaultRegistryLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewStage(newFakeHost(), StageOptions{Logger: zap.New(core)})
	if s.Registry() != DefaultRegistry() {
		t.Fatal("default registry not used")
	}

	DefaultRegistry().Register("global", func() error { return errors.New("stop failed") })
	StopAllAnimations()
	if n := logs.FilterMessage("stop failed").Len(); n != 0 {
		t.Errorf("stage logger received %d default registry warnings", n)
	}
}

func TestStopAllTearsDownEffects(t *testing.T) {
	s, host, _ := newTestStage()
	banner := newFakeContainer(640, 200)
	host.containers["banner"] = banner

	s.RunSpecialEffect("banner", VariantFlowers, EffectOptions{})
	s.Update()
	s.StopAllAnimations()

	if banner.detaches != 1 {
		t.Errorf("detaches = %d, want 1", banner.detaches)
	}
}

func TestStageEmitsLoopEvents(t *testing.T) {
	s, host, mt := newTestStage()
	host.surfaces["sky"] = newRecordingSurface(800, 400)
	host.containers["banner"] = newFakeContainer(640, 200)
	sink := &recordingSink{}
	s.SetEventSink(sink)

	birds, _ := s.SpawnBirds("sky", BirdOptions{Count: 1})
	fx := s.RunSpecialEffect("banner", VariantScrolls, EffectOptions{Duration: 50 * time.Millisecond})
	mt.Advance(time.Second)
	s.Update()
	s.StopAllAnimations()

	want := []LoopEvent{
		{Type: LoopEventStarted, ID: birds, Kind: KindBirds},
		{Type: LoopEventStarted, ID: fx.ID(), Kind: KindEffect},
		{Type: LoopEventStopped, ID: fx.ID(), Kind: KindEffect},
		{Type: LoopEventStopped, ID: birds, Kind: KindBirds},
		{Type: LoopEventAllStopped},
	}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %+v, want %+v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, sink.events[i], want[i])
		}
	}
}

func TestStageDebugModeLogsFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewStage(newFakeHost(), StageOptions{Registry: NewRegistry(nil), Logger: zap.New(core)})

	s.Update()
	if logs.FilterMessage("frame").Len() != 0 {
		t.Fatal("frame logged with debug mode off")
	}

	s.SetDebugMode(true)
	s.Update()
	entries := logs.FilterMessage("frame").All()
	if len(entries) != 1 {
		t.Fatalf("frame entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["frame"]; got != uint64(2) {
		t.Errorf("frame field = %v, want 2", got)
	}
}

func TestNewStageDefaults(t *testing.T) {
	s := NewStage(newFakeHost(), StageOptions{})
	if s.Registry() != DefaultRegistry() {
		t.Error("default registry not used")
	}
	if s.Driver() == nil || s.rng == nil || s.time == nil || s.log == nil {
		t.Error("defaults not filled")
	}
	if s.tuning.Gravity != DefaultTuning().Gravity {
		t.Error("default tuning not applied")
	}
}
