// Package cel is a frame-accurate timeline playback engine for [Ebitengine]
// display trees.
//
// A [Clip] is a container node with a timeline: property tweens on its
// children, frame-windowed child attachment, named frame labels, and
// per-frame action callbacks. Clips resolve deterministically: asking for
// the same frame twice has no observable effect, and every frame the
// playhead traverses fires its actions exactly once, including across loop
// wraparound.
//
// # Quick start
//
//	stage := cel.NewStage()
//
//	clip := cel.NewClip(cel.ClipConfig{
//		Name: "intro", Loop: true, Framerate: 24,
//		Labels: map[string]int{"start": 0, "end": 20},
//	})
//	box := cel.NewSprite("box", 16, 16)
//	clip.AddTimedChild(box, 0, 30)
//	clip.AddTween(box, cel.Keyframe{Set: cel.PropX, X: 100}, 0, 30, ease.OutQuad)
//	clip.AddAction(func() { println("looped") }, 0)
//
//	stage.Root().AddChild(&clip.Node)
//	stage.Subscribe(clip)
//
// Call [Stage.Update] from your [ebiten.Game] Update method and
// [Stage.Draw] from Draw.
//
// # Playback modes
//
// A clip's [PlayMode] is fixed at construction. [PlayModeIndependent] clips
// run on their own clock, advanced by the Stage each tick.
// [PlayModeSingleFrame] clips stay pinned to their StartPosition.
// [PlayModeSynced] clips follow their parent clip's resolved frame with an
// offset, to arbitrary depth, all within the parent's advance.
//
// Interpolation is delegated to [gween]; declarative clip trees can be
// loaded from YAML documents with [LoadDocument].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package cel
