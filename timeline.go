package cel

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Timeline is the ordered sequence of tween segments for one target node.
// Segments are non-overlapping and kept sorted by start frame. Interpolation
// is delegated to gween; the timeline only computes segment bounds and scrub
// positions.
//
// A Clip owns exactly one Timeline per distinct animated target.
type Timeline struct {
	target   *Node
	segments []*segment
}

// segment is one bounded tween: properties move from the values captured at
// registration time to the keyframe's values over [start, start+duration]
// frames. A zero-duration segment is a hold: its values apply directly.
type segment struct {
	start    int
	duration int
	end      Keyframe
	tweens   []propTween // empty for holds
}

// propTween scrubs a single float64 field through a gween tween whose time
// axis is frames relative to the segment start.
type propTween struct {
	field *float64
	tw    *gween.Tween
}

func newTimeline(target *Node) *Timeline {
	return &Timeline{target: target}
}

// Target returns the node this timeline animates.
func (tl *Timeline) Target() *Node {
	return tl.target
}

// EndFrame returns the last frame covered by any segment.
func (tl *Timeline) EndFrame() int {
	end := 0
	for _, seg := range tl.segments {
		if e := seg.start + seg.duration; e > end {
			end = e
		}
	}
	return end
}

// AddSegment registers a tween from the target's current property values to
// the keyframe's values over [startFrame, startFrame+duration]. A nil easing
// function means linear. The target is left at the end values so chained
// registrations pick up where the previous segment ended.
func (tl *Timeline) AddSegment(end Keyframe, startFrame, duration int, fn ease.TweenFunc) {
	if duration < 0 {
		duration = 0
	}
	seg := &segment{start: startFrame, duration: duration, end: end}
	if duration > 0 {
		if fn == nil {
			fn = ease.Linear
		}
		seg.tweens = buildPropTweens(tl.target, end, duration, fn)
	}
	tl.insert(seg)
	end.applyTo(tl.target)
}

// insert places seg among the existing segments, preserving start order.
func (tl *Timeline) insert(seg *segment) {
	i := len(tl.segments)
	for i > 0 && tl.segments[i-1].start > seg.start {
		i--
	}
	tl.segments = append(tl.segments, nil)
	copy(tl.segments[i+1:], tl.segments[i:])
	tl.segments[i] = seg
}

// SetPosition scrubs the timeline to the given frame. The governing segment
// is the last one starting at or before the frame; past its end the target
// holds that segment's end values, so a keyframe the playhead jumps over
// still applies and frame appearance never depends on the scrub path. Only
// frames before the first segment leave the target untouched.
func (tl *Timeline) SetPosition(frame int) {
	seg := tl.segmentAt(frame)
	if seg == nil {
		return
	}
	if len(seg.tweens) == 0 || frame >= seg.start+seg.duration {
		seg.end.applyTo(tl.target)
		return
	}
	t := float32(frame - seg.start)
	for _, pt := range seg.tweens {
		val, _ := pt.tw.Set(t)
		*pt.field = float64(val)
	}
	// Stepped properties switch at segment entry rather than interpolating.
	if seg.end.Set&PropVisible != 0 {
		tl.target.Visible = seg.end.Visible
	}
	tl.target.transformDirty = true
}

// segmentAt returns the last segment starting at or before frame, or nil when
// the frame precedes every segment.
func (tl *Timeline) segmentAt(frame int) *segment {
	var active *segment
	for _, seg := range tl.segments {
		if frame < seg.start {
			break
		}
		active = seg
	}
	return active
}

// buildPropTweens creates one gween tween per animated scalar property,
// beginning at the target's current values.
func buildPropTweens(n *Node, end Keyframe, duration int, fn ease.TweenFunc) []propTween {
	d := float32(duration)
	var tweens []propTween
	add := func(field *float64, to float64) {
		tweens = append(tweens, propTween{
			field: field,
			tw:    gween.New(float32(*field), float32(to), d, fn),
		})
	}

	if end.Set&PropX != 0 {
		add(&n.X, end.X)
	}
	if end.Set&PropY != 0 {
		add(&n.Y, end.Y)
	}
	if end.Set&PropScaleX != 0 {
		add(&n.ScaleX, end.ScaleX)
	}
	if end.Set&PropScaleY != 0 {
		add(&n.ScaleY, end.ScaleY)
	}
	if end.Set&PropSkewX != 0 {
		add(&n.SkewX, end.SkewX)
	}
	if end.Set&PropSkewY != 0 {
		add(&n.SkewY, end.SkewY)
	}
	if end.Set&PropRotation != 0 {
		add(&n.Rotation, end.Rotation)
	}
	if end.Set&PropAlpha != 0 {
		add(&n.Alpha, end.Alpha)
	}
	if end.Set&PropTint != 0 {
		add(&n.Color.R, float64(end.Tint>>16&0xff)/255)
		add(&n.Color.G, float64(end.Tint>>8&0xff)/255)
		add(&n.Color.B, float64(end.Tint&0xff)/255)
	}
	if end.Set&PropColorTransform != 0 {
		channels := []*float64{&n.Color.R, &n.Color.G, &n.Color.B, &n.Color.A}
		for i, v := range end.ColorTransform {
			if i >= len(channels) {
				break
			}
			add(channels[i], v)
		}
	}
	return tweens
}
