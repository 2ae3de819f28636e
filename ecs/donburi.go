package ecs

import (
	"github.com/phanxgames/flourish"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// LoopEventType is the Donburi event type for flourish loop lifecycle
// events. Subscribe to it in your ECS systems.
var LoopEventType = events.NewEventType[flourish.LoopEvent]()

// LoopData is the component attached to the entity mirroring a running loop.
type LoopData struct {
	ID   flourish.LoopID
	Kind flourish.LoopKind
}

// LoopComponent marks entities that mirror running loops.
var LoopComponent = donburi.NewComponentType[LoopData]()

// loopQuery matches every mirrored loop.
var loopQuery = donburi.NewQuery(filter.Contains(LoopComponent))

// DonburiSink is a flourish.EventSink backed by a Donburi world.
type DonburiSink struct {
	world    donburi.World
	entities map[flourish.LoopID]donburi.Entity
}

// NewDonburiSink creates a sink that publishes to LoopEventType and keeps
// one LoopComponent entity per running loop in world.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{
		world:    world,
		entities: make(map[flourish.LoopID]donburi.Entity),
	}
}

func (s *DonburiSink) EmitLoopEvent(ev flourish.LoopEvent) {
	switch ev.Type {
	case flourish.LoopEventStarted:
		e := s.world.Create(LoopComponent)
		LoopComponent.SetValue(s.world.Entry(e), LoopData{ID: ev.ID, Kind: ev.Kind})
		s.entities[ev.ID] = e
	case flourish.LoopEventStopped:
		if e, ok := s.entities[ev.ID]; ok {
			s.world.Remove(e)
			delete(s.entities, ev.ID)
		}
	}
	LoopEventType.Publish(s.world, ev)
}

// Running returns the number of loop entities in the world.
func (s *DonburiSink) Running() int {
	return loopQuery.Count(s.world)
}

// EachLoop calls fn with the data of every running loop.
func (s *DonburiSink) EachLoop(fn func(LoopData)) {
	loopQuery.Each(s.world, func(entry *donburi.Entry) {
		fn(*LoopComponent.Get(entry))
	})
}
