package flourish

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StopFunc cancels one running loop. Returning an error (or panicking) marks
// the stop as failed; the registry logs it and moves on.
type StopFunc func() error

type registryEntry struct {
	id   LoopID
	stop StopFunc
}

// Registry holds the stop capability of every loop started against it so
// they can be cancelled together. It never references surfaces or entity
// state. Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
	log     *zap.Logger
	sink    EventSink
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, creating it on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(nil)
	})
	return defaultRegistry
}

// StopAllAnimations stops every loop in the process-wide registry.
func StopAllAnimations() {
	DefaultRegistry().StopAll()
}

// SetLogger replaces the registry's logger. A nil logger disables logging.
func (r *Registry) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	r.mu.Lock()
	r.log = log
	r.mu.Unlock()
}

// SetEventSink sets the optional receiver of loop lifecycle events.
func (r *Registry) SetEventSink(sink EventSink) {
	r.mu.Lock()
	r.sink = sink
	r.mu.Unlock()
}

// Register appends a loop's stop capability. Nil stop functions are ignored.
func (r *Registry) Register(id LoopID, stop StopFunc) {
	if stop == nil {
		return
	}
	r.mu.Lock()
	r.entries = append(r.entries, registryEntry{id: id, stop: stop})
	r.mu.Unlock()
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// IDs returns the registered loop IDs in registration order.
func (r *Registry) IDs() []LoopID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]LoopID, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.id
	}
	return ids
}

// StopAll invokes every registered stop function and then clears the
// registry. A failing stop never prevents the others from running.
// Entries registered by a stop function while StopAll runs are kept.
func (r *Registry) StopAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	log := r.log
	sink := r.sink
	r.mu.Unlock()

	failed := 0
	for _, e := range entries {
		if err := safeStop(e.stop); err != nil {
			failed++
			log.Warn("stop failed", zap.String("loop", string(e.id)), zap.Error(err))
		}
	}

	if len(entries) > 0 {
		log.Debug("stopped all loops", zap.Int("count", len(entries)), zap.Int("failed", failed))
	}
	if sink != nil {
		sink.EmitLoopEvent(LoopEvent{Type: LoopEventAllStopped})
	}
}

// safeStop runs stop, converting a panic into an error.
func safeStop(stop StopFunc) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stop panicked: %v", p)
		}
	}()
	return stop()
}

// emit forwards ev to the event sink, if any.
func (r *Registry) emit(ev LoopEvent) {
	r.mu.Lock()
	sink := r.sink
	r.mu.Unlock()
	if sink != nil {
		sink.EmitLoopEvent(ev)
	}
}

// LoopEventType identifies a loop lifecycle transition.
type LoopEventType uint8

const (
	LoopEventStarted    LoopEventType = iota // a loop registered and subscribed to its clock
	LoopEventStopped                         // a loop stopped, explicitly or on completion
	LoopEventAllStopped                      // StopAll finished
)

// String returns the event type name.
func (t LoopEventType) String() string {
	switch t {
	case LoopEventStarted:
		return "started"
	case LoopEventStopped:
		return "stopped"
	case LoopEventAllStopped:
		return "all_stopped"
	default:
		return fmt.Sprintf("LoopEventType(%d)", uint8(t))
	}
}

// LoopEvent describes a lifecycle transition. ID and Kind are empty for
// LoopEventAllStopped.
type LoopEvent struct {
	Type LoopEventType
	ID   LoopID
	Kind LoopKind
}

// EventSink receives loop lifecycle events, e.g. to forward them into an ECS.
type EventSink interface {
	EmitLoopEvent(ev LoopEvent)
}
