// Package flourish runs decorative frame-driven animations on drawing
// surfaces: glyph birds drifting across a sky, nodes orbiting a pulsing
// core, and short-lived special effects (scrolls, holo, storm, fireworks,
// flowers) painted on an overlay.
//
// # Quick start
//
// A [Host] resolves string references to drawing targets. [ImageHost] does
// so for [Ebitengine] images; the term subpackage does so for a tcell
// terminal. Build a [Stage] on a host and call [Stage.Update] once per
// frame:
//
//	host := flourish.NewImageHost()
//	host.AddSurface("sky", image.Rect(0, 0, 640, 240))
//	host.AddContainer("banner", image.Rect(0, 240, 640, 480))
//
//	stage := flourish.NewStage(host, flourish.StageOptions{})
//	stage.SpawnBirds("sky", flourish.BirdOptions{Count: 6})
//	stage.RunSpecialEffect("banner", flourish.VariantFireworks, flourish.EffectOptions{})
//
//	func (g *Game) Update() error        { g.stage.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.host.Draw(s) }
//
// # Loops and frames
//
// Every started animation is a loop: a tick function subscribed to a
// [Clock] handed out by the stage's [FrameDriver]. Each [FrameDriver.Advance]
// ticks every running clock exactly once, in the order they started. A tick
// clears its surface and repaints it, so surfaces never accumulate state
// between frames. Hosts without a display refresh can drive frames with
// [FrameDriver.Run].
//
// # Stopping
//
// Every loop's stop function is recorded in a [Registry]. A loop stops when
// its [Handle] is stopped, when a special effect's duration runs out, or
// when [Stage.StopAllAnimations] (or the package-level [StopAllAnimations]
// for the default registry) cancels everything at once. A stop that fails
// is logged and never prevents the others from running.
//
// # Special effects
//
// Variants differ only in what they spawn each tick. Particles share one
// integration step (velocity, then gravity, then lifetime) and are removed
// before painting once their life runs out. Probabilities, lifetimes and
// sizes come from a [Tuning], which [ParseTuning] can overlay from YAML.
//
// # Configuration and scripts
//
// [LoadConfig] reads a TOML file for the demo command and
// [NewStageFromConfig]. [LoadScript] reads a JSON scenario that starts and
// stops loops on chosen frames, which is useful for reproducible captures
// with [SavePNG].
//
// [Ebitengine]: https://ebitengine.org
package flourish
