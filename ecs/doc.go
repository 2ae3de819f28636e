// Package ecs bridges flourish loop lifecycle events into a [Donburi] world.
//
// [NewDonburiSink] publishes every [flourish.LoopEvent] as a typed Donburi
// event and mirrors running loops as entities carrying [LoopComponent], so
// ECS systems can react to effects starting and stopping or query which
// loops are live.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	stage.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
