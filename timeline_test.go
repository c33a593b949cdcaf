package cel

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTimelineScrubLinear(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.Linear)

	// Registration leaves the target at the end values for chaining.
	if node.X != 100 {
		t.Fatalf("after registration X = %f, want 100", node.X)
	}

	tl.SetPosition(0)
	if math.Abs(node.X) > 0.01 {
		t.Errorf("frame 0: X = %f, want 0", node.X)
	}
	tl.SetPosition(5)
	if math.Abs(node.X-50) > 0.5 {
		t.Errorf("frame 5: X = %f, want ~50", node.X)
	}
	tl.SetPosition(10)
	if math.Abs(node.X-100) > 0.01 {
		t.Errorf("frame 10: X = %f, want 100", node.X)
	}
}

func TestTimelineScrubBackward(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropY, Y: 40}, 0, 4, ease.Linear)

	tl.SetPosition(4)
	tl.SetPosition(1)
	if math.Abs(node.Y-10) > 0.5 {
		t.Errorf("backward scrub: Y = %f, want ~10", node.Y)
	}
}

func TestTimelineHoldApplies(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX | PropAlpha, X: 30, Alpha: 0.5}, 5, 0, nil)

	node.X = 0
	node.Alpha = 1
	tl.SetPosition(5)
	if node.X != 30 || node.Alpha != 0.5 {
		t.Errorf("hold not applied: X = %f, Alpha = %f", node.X, node.Alpha)
	}
}

func TestTimelinePastSegmentClampsToEnd(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.Linear)

	tl.SetPosition(5)
	tl.SetPosition(15) // past the segment's end
	if node.X != 100 {
		t.Errorf("past-segment scrub: X = %f, want clamped end 100", node.X)
	}
}

func TestTimelineJumpedHoldStillApplies(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 10}, 0, 0, nil)
	tl.AddSegment(Keyframe{Set: PropX, X: 50}, 8, 0, nil)

	// Scrubbing 0 -> 12 skips frame 8; its hold must apply anyway, so the
	// look of frame 12 does not depend on how the playhead got there.
	tl.SetPosition(0)
	tl.SetPosition(12)
	if node.X != 50 {
		t.Errorf("skipped hold not applied: X = %f, want 50", node.X)
	}
}

func TestTimelineBeforeFirstSegmentRetainsValues(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 100}, 10, 0, nil)

	node.X = -1
	tl.SetPosition(5) // before any segment starts
	if node.X != -1 {
		t.Errorf("pre-segment scrub changed X to %f", node.X)
	}
}

func TestTimelineChainedSegments(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.Linear)
	tl.AddSegment(Keyframe{Set: PropX, X: 0}, 10, 10, ease.Linear)

	// Second segment starts from the first segment's end value.
	tl.SetPosition(15)
	if math.Abs(node.X-50) > 0.5 {
		t.Errorf("chained midpoint: X = %f, want ~50", node.X)
	}
}

func TestTimelineSegmentBoundaryIsContinuous(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.Linear)
	tl.AddSegment(Keyframe{Set: PropX, X: 0}, 10, 10, ease.Linear)

	// The shared frame is the first segment's end and the second's start;
	// chained registration makes both yield the same value.
	tl.SetPosition(10)
	if math.Abs(node.X-100) > 0.01 {
		t.Errorf("boundary frame: X = %f, want 100", node.X)
	}
}

func TestTimelineVisibilityIsStepped(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX | PropVisible, X: 10, Visible: false}, 0, 10, ease.Linear)

	node.Visible = true
	tl.SetPosition(3)
	if node.Visible {
		t.Error("visibility should switch at segment entry, not interpolate")
	}
}

func TestTimelineTintInterpolates(t *testing.T) {
	node := NewSprite("n", 1, 1)
	node.Color = Color{R: 0, G: 0, B: 0, A: 1}
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropTint, Tint: 0xff0000}, 0, 10, ease.Linear)

	tl.SetPosition(5)
	if math.Abs(node.Color.R-0.5) > 0.01 {
		t.Errorf("midpoint R = %f, want ~0.5", node.Color.R)
	}
	if node.Color.G > 0.01 || node.Color.B > 0.01 {
		t.Errorf("G/B drifted: %f %f", node.Color.G, node.Color.B)
	}
}

func TestTimelineEasingAffectsCurve(t *testing.T) {
	linear := NewSprite("l", 1, 1)
	cubic := NewSprite("c", 1, 1)
	tlL := newTimeline(linear)
	tlC := newTimeline(cubic)
	tlL.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.Linear)
	tlC.AddSegment(Keyframe{Set: PropX, X: 100}, 0, 10, ease.OutCubic)

	tlL.SetPosition(5)
	tlC.SetPosition(5)
	if math.Abs(linear.X-cubic.X) < 1.0 {
		t.Errorf("easing curves should differ at midpoint: linear=%f cubic=%f", linear.X, cubic.X)
	}
}

func TestTimelineEndFrame(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 1}, 0, 10, nil)
	tl.AddSegment(Keyframe{Set: PropX, X: 2}, 20, 5, nil)

	if tl.EndFrame() != 25 {
		t.Errorf("EndFrame = %d, want 25", tl.EndFrame())
	}
}

func TestTimelineInsertKeepsStartOrder(t *testing.T) {
	node := NewSprite("n", 1, 1)
	tl := newTimeline(node)
	tl.AddSegment(Keyframe{Set: PropX, X: 2}, 20, 0, nil)
	tl.AddSegment(Keyframe{Set: PropX, X: 1}, 0, 0, nil)

	node.X = -1
	tl.SetPosition(0)
	if node.X != 1 {
		t.Errorf("out-of-order registration broke lookup: X = %f", node.X)
	}
}
