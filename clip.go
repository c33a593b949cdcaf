package cel

import (
	"math"

	"github.com/tanema/gween/ease"
)

// neverResolved is the prevFrame sentinel: the clip has not run a resolution
// pass yet, so the first one must resolve fully from frame 0.
const neverResolved = -1

// frameEpsilon absorbs floating-point error at exact frame boundaries when
// quantizing elapsed time to a frame index.
const frameEpsilon = 1e-8

// ClipConfig configures a Clip at construction. Mode, StartPosition, Loop,
// and Labels are fixed for the clip's lifetime.
type ClipConfig struct {
	Name          string
	Mode          PlayMode
	StartPosition int
	Loop          bool
	Labels        map[string]int
	// TotalFrames seeds the clip length; registrations only ever grow it.
	TotalFrames int
	// Framerate in frames per second. Zero means inherit from the nearest
	// independent ancestor clip at advance time.
	Framerate float64
}

// timedChild records the presence window of one scheduled child: a boolean
// per frame, true while the child should be attached.
type timedChild struct {
	node   *Node
	clip   *Clip // non-nil when the scheduled child is itself a Clip
	frames []bool
}

// Clip is a display container with a frame timeline: property tweens,
// frame-windowed children, named labels, and per-frame actions. A Clip either
// runs on its own clock (PlayModeIndependent), stays pinned to one frame
// (PlayModeSingleFrame), or follows its parent clip's frame
// (PlayModeSynced).
type Clip struct {
	Node

	// Mode is the playback mode, fixed at construction.
	Mode PlayMode
	// StartPosition is the pinned frame for single-frame clips, and the
	// offset added to the parent-derived position for synced clips.
	StartPosition int
	// Loop wraps the clock past the last frame instead of clamping.
	Loop bool
	// AutoReset rewinds an independent clip to frame 0 when a presence
	// window re-attaches it. On by default.
	AutoReset bool
	// ActionsEnabled gates frame action firing for this clip.
	ActionsEnabled bool

	currentFrame int
	totalFrames  int
	elapsed      float64 // seconds since frame 0, meaningful when framerate > 0
	framerate    float64
	duration     float64 // totalFrames / framerate, 0 when framerate unset
	paused       bool
	prevFrame    int
	syncOffset   int // parentFrame - syncBase, set by the parent's pass
	syncBase     int // parent frame at which this synced clip starts

	labels    LabelIndex
	timelines []*Timeline
	byTarget  map[*Node]*Timeline
	timed     []*timedChild
	timedBy   map[*Node]*timedChild
	actions   [][]func()
}

// NewClip creates a clip from the given configuration. The clip starts
// playing (unpaused) at frame 0; single-frame and synced clips derive their
// frame on the first resolution pass.
func NewClip(cfg ClipConfig) *Clip {
	c := &Clip{
		Mode:           cfg.Mode,
		StartPosition:  cfg.StartPosition,
		Loop:           cfg.Loop,
		AutoReset:      true,
		ActionsEnabled: true,
		totalFrames:    cfg.TotalFrames,
		framerate:      cfg.Framerate,
		prevFrame:      neverResolved,
		syncBase:       cfg.StartPosition,
		labels:         newLabelIndex(cfg.Labels),
	}
	if c.StartPosition < 0 {
		c.StartPosition = 0
	}
	c.Node.Name = cfg.Name
	c.Node.Type = NodeTypeContainer
	nodeDefaults(&c.Node)
	c.Node.clip = c
	c.recomputeDuration()
	return c
}

// --- Accessors ---

// CurrentFrame returns the last resolved frame, always within
// [0, TotalFrames) once the clip has frames.
func (c *Clip) CurrentFrame() int { return c.currentFrame }

// TotalFrames returns the clip length in frames. It grows monotonically as
// tweens, timed children, and actions are registered.
func (c *Clip) TotalFrames() int { return c.totalFrames }

// ElapsedTime returns seconds since frame 0. Meaningful only when the clip
// has a framerate.
func (c *Clip) ElapsedTime() float64 { return c.elapsed }

// Framerate returns the clip's framerate in frames per second; zero means it
// has not been set or inherited yet.
func (c *Clip) Framerate() float64 { return c.framerate }

// SetFramerate sets the framerate and recomputes the clip duration.
func (c *Clip) SetFramerate(fps float64) {
	c.framerate = fps
	c.recomputeDuration()
}

// Duration returns the clip length in seconds, or 0 when no framerate is set.
func (c *Clip) Duration() float64 { return c.duration }

// Playing reports whether the clip's clock is running.
func (c *Clip) Playing() bool { return !c.paused }

// Labels returns the ordered label sequence.
func (c *Clip) Labels() []Label { return c.labels.Labels() }

// CurrentLabel returns the name of the label at or before the current frame.
func (c *Clip) CurrentLabel() (string, bool) { return c.labels.Current(c.currentFrame) }

// LabelFrame returns the frame of the first label with the given name.
func (c *Clip) LabelFrame(name string) (int, bool) { return c.labels.Frame(name) }

func (c *Clip) recomputeDuration() {
	if c.framerate > 0 && c.totalFrames > 0 {
		c.duration = float64(c.totalFrames) / c.framerate
	} else {
		c.duration = 0
	}
}

// --- Registration ---

// AddTween registers a tween on target from its current property values to
// the keyframe's values over [startFrame, startFrame+duration]. A zero
// duration is a hold. A nil easing function means linear. The clip length
// grows to cover the tween.
func (c *Clip) AddTween(target Displayable, end Keyframe, startFrame, duration int, fn ease.TweenFunc) {
	if startFrame < 0 {
		panic("cel: tween start frame out of range")
	}
	tl := c.timelineFor(target)
	tl.AddSegment(end, startFrame, duration, fn)
	c.growTotalFrames(startFrame + duration)
}

// AddKeyframes registers one hold per entry, in ascending frame order.
func (c *Clip) AddKeyframes(target Displayable, frames map[int]Keyframe) {
	order := make([]int, 0, len(frames))
	for frame := range frames {
		order = append(order, frame)
	}
	// Insertion sort; keyframe sets are small.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j] < order[j-1]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	for _, frame := range order {
		c.AddTween(target, frames[frame], frame, 0, nil)
	}
}

// AddKeyframeData decodes compact keyframe-string data (see DecodeKeyframes)
// and registers the result as holds on target.
func (c *Clip) AddKeyframeData(target Displayable, data string) error {
	frames, err := DecodeKeyframes(data)
	if err != nil {
		return err
	}
	c.AddKeyframes(target, frames)
	return nil
}

// AddTimedChild schedules target to be attached for frames
// [startFrame, startFrame+duration). If the clip has already resolved a
// frame, presence at the current frame is refreshed immediately rather than
// waiting for the next tick.
func (c *Clip) AddTimedChild(target Displayable, startFrame, duration int) {
	if startFrame < 0 {
		panic("cel: timed child start frame out of range")
	}
	n := target.DisplayNode()
	tc := c.timedBy[n]
	if tc == nil {
		tc = &timedChild{node: n, clip: n.clip}
		if c.timedBy == nil {
			c.timedBy = make(map[*Node]*timedChild)
		}
		c.timedBy[n] = tc
		c.timed = append(c.timed, tc)
	}

	// Ensure capacity (new slots default absent), then write the window.
	end := startFrame + duration
	for len(tc.frames) < end {
		tc.frames = append(tc.frames, false)
	}
	for i := startFrame; i < end; i++ {
		tc.frames[i] = true
	}
	c.growTotalFrames(end)

	if tc.clip != nil && tc.clip.Mode == PlayModeSynced {
		tc.clip.syncBase = startFrame
	}

	if c.prevFrame != neverResolved {
		c.setTimelinePosition(c.currentFrame, c.currentFrame, false)
	}
}

// AddAction registers a callback to fire when the playhead crosses frame.
// Multiple callbacks on one frame fire in registration order.
func (c *Clip) AddAction(fn func(), frame int) {
	if fn == nil {
		panic("cel: cannot add nil action")
	}
	if frame < 0 {
		panic("cel: action frame out of range")
	}
	for len(c.actions) <= frame {
		c.actions = append(c.actions, nil)
	}
	c.actions[frame] = append(c.actions[frame], fn)
	c.growTotalFrames(frame + 1)
}

// timelineFor returns the single timeline owned for target, creating it on
// first use.
func (c *Clip) timelineFor(target Displayable) *Timeline {
	n := target.DisplayNode()
	if tl := c.byTarget[n]; tl != nil {
		return tl
	}
	tl := newTimeline(n)
	if c.byTarget == nil {
		c.byTarget = make(map[*Node]*Timeline)
	}
	c.byTarget[n] = tl
	c.timelines = append(c.timelines, tl)
	return tl
}

// growTotalFrames raises the clip length to at least frames.
func (c *Clip) growTotalFrames(frames int) {
	if frames > c.totalFrames {
		c.totalFrames = frames
		c.recomputeDuration()
	}
}

// --- Playback control ---

// Play resumes the clip's clock.
func (c *Clip) Play() { c.paused = false }

// Stop pauses the clip's clock at the current frame.
func (c *Clip) Stop() { c.paused = true }

// GotoAndPlay seeks to the given frame and resumes playback. Frames beyond
// the clip length are clamped.
func (c *Clip) GotoAndPlay(frame int) {
	c.paused = false
	c.seek(frame)
}

// GotoAndStop seeks to the given frame and pauses.
func (c *Clip) GotoAndStop(frame int) {
	c.paused = true
	c.seek(frame)
}

// GotoLabelAndPlay seeks to the named label and resumes playback.
// Unknown labels are a silent no-op.
func (c *Clip) GotoLabelAndPlay(name string) {
	frame, ok := c.labels.Frame(name)
	if !ok {
		return
	}
	c.GotoAndPlay(frame)
}

// GotoLabelAndStop seeks to the named label and pauses.
// Unknown labels are a silent no-op.
func (c *Clip) GotoLabelAndStop(name string) {
	frame, ok := c.labels.Frame(name)
	if !ok {
		return
	}
	c.GotoAndStop(frame)
}

// seek sets the playhead directly and forces a resolution pass. The first
// pass after construction resolves even when the target frame is 0.
func (c *Clip) seek(frame int) {
	if c.totalFrames > 0 {
		if frame >= c.totalFrames {
			frame = c.totalFrames - 1
		}
	} else {
		frame = 0
	}
	if frame < 0 {
		frame = 0
	}
	if c.framerate > 0 {
		c.elapsed = float64(frame) / c.framerate
	} else {
		c.elapsed = 0
	}
	c.currentFrame = frame
	c.updateTimeline()
}

// Advance moves an independent clip's clock forward by dt seconds and runs a
// resolution pass. Synced and single-frame clips ignore it; they are driven
// by their parent's pass. A paused clip still re-resolves its current frame
// once, which the idempotence check makes free.
func (c *Clip) Advance(dt float64) {
	if c.Mode != PlayModeIndependent || c.disposed {
		return
	}
	if c.framerate == 0 {
		if fps := c.inheritedFramerate(); fps > 0 {
			c.SetFramerate(fps)
		}
	}
	if c.framerate > 0 && !c.paused {
		c.elapsed += dt
		wrapped := false
		if c.duration > 0 && c.elapsed > c.duration {
			if c.Loop {
				for c.elapsed > c.duration {
					c.elapsed -= c.duration
				}
				wrapped = true
			} else {
				c.elapsed = c.duration
			}
		}
		frame := int(math.Floor(c.elapsed*c.framerate + frameEpsilon))
		if frame >= c.totalFrames {
			frame = c.totalFrames - 1
		}
		if frame < 0 {
			frame = 0
		}
		if wrapped && c.prevFrame != neverResolved && frame >= c.prevFrame {
			// The clock completed a whole cycle within one tick, so the frame
			// comparison alone cannot see the wrap. Resolve the seam first so
			// the old cycle's remaining actions fire, then treat the new cycle
			// as a fresh resolve so frame 0 onward fires even when the
			// playhead lands back on the frame it left.
			c.currentFrame = c.totalFrames - 1
			c.updateTimeline()
			c.prevFrame = neverResolved
		}
		c.currentFrame = frame
	}
	c.updateTimeline()
}

// inheritedFramerate walks ancestors for the nearest independent clip with a
// framerate. Returns 0 when none exists; such a clip stays static until
// seeked or given a framerate.
func (c *Clip) inheritedFramerate() float64 {
	for p := c.Node.Parent; p != nil; p = p.Parent {
		if p.clip != nil && p.clip.Mode == PlayModeIndependent && p.clip.framerate > 0 {
			return p.clip.framerate
		}
	}
	return 0
}

// reset rewinds the clip to its initial clock state, forcing a full resolve
// on the next pass.
func (c *Clip) reset() {
	c.elapsed = 0
	c.currentFrame = 0
	c.prevFrame = neverResolved
}

// teardown releases timeline state when the clip's node is disposed.
func (c *Clip) teardown() {
	c.paused = true
	c.timelines = nil
	c.byTarget = nil
	c.timed = nil
	c.timedBy = nil
	c.actions = nil
}

// --- Resolution ---

// updateTimeline derives the clip's frame for its mode and, when the frame
// changed since the last pass, resolves the timeline to it. Synced and
// single-frame clips never fire their own actions here: their driver is the
// parent's pass, and firing from both would double-fire.
func (c *Clip) updateTimeline() {
	synced := c.Mode != PlayModeIndependent
	switch c.Mode {
	case PlayModeSingleFrame:
		c.currentFrame = c.StartPosition
	case PlayModeSynced:
		c.currentFrame = c.StartPosition + c.syncOffset
	}
	if c.totalFrames > 0 {
		c.currentFrame %= c.totalFrames
		if c.currentFrame < 0 {
			c.currentFrame += c.totalFrames
		}
	} else {
		c.currentFrame = 0
	}

	// Re-resolving a stationary playhead must have no observable effect.
	if c.prevFrame == c.currentFrame {
		return
	}
	start := c.prevFrame
	c.prevFrame = c.currentFrame
	c.setTimelinePosition(start, c.currentFrame, !synced && c.ActionsEnabled)
}

// setTimelinePosition is the positional pass: tween application, timed-child
// presence, recursive synced propagation, then action firing over the
// traversed frame range (split across the loop seam on wraparound).
func (c *Clip) setTimelinePosition(startFrame, current int, fireActions bool) {
	for _, tl := range c.timelines {
		tl.SetPosition(current)
	}

	for _, tc := range c.timed {
		present := current >= 0 && current < len(tc.frames) && tc.frames[current]
		attached := tc.node.Parent == &c.Node
		if present && !attached {
			if tc.clip != nil && tc.clip.Mode == PlayModeIndependent && tc.clip.AutoReset {
				tc.clip.reset()
			}
			c.AddChild(tc.node)
		} else if !present && attached {
			c.RemoveChild(tc.node)
		}
	}

	for _, child := range c.Node.children {
		sub := child.clip
		if sub == nil || sub.Mode == PlayModeIndependent {
			continue
		}
		if sub.Mode == PlayModeSynced {
			sub.syncOffset = current - sub.syncBase
		}
		sub.updateTimeline()
	}

	if !fireActions || len(c.actions) == 0 {
		return
	}
	switch {
	case startFrame == neverResolved:
		// First-ever resolve: frame 0's actions have not fired yet.
		c.fireActions(0, current)
	case current >= startFrame:
		c.fireActions(startFrame+1, current)
	default:
		// The clock looped: finish out the old cycle, then the new one.
		// Each traversed frame fires exactly once across the seam.
		c.fireActions(startFrame+1, c.totalFrames-1)
		c.fireActions(0, current)
	}
}

// fireActions invokes every action list for frames in [from, to], ascending,
// callbacks in registration order.
func (c *Clip) fireActions(from, to int) {
	if from < 0 {
		from = 0
	}
	if to >= len(c.actions) {
		to = len(c.actions) - 1
	}
	for f := from; f <= to; f++ {
		for _, fn := range c.actions[f] {
			fn()
		}
	}
}
