package cel

import "testing"

func TestStageSubscribeAdvancesClip(t *testing.T) {
	stage := NewStage()
	clip := NewClip(ClipConfig{Name: "c", Loop: true, TotalFrames: 10, Framerate: 10})
	stage.Root().AddChild(&clip.Node)
	stage.Subscribe(clip)

	stage.Advance(0.35)

	if clip.CurrentFrame() != 3 {
		t.Errorf("clip at frame %d, want 3", clip.CurrentFrame())
	}
}

func TestStageSubscribeIgnoresNonIndependent(t *testing.T) {
	stage := NewStage()
	synced := NewClip(ClipConfig{Name: "s", Mode: PlayModeSynced})
	single := NewClip(ClipConfig{Name: "f", Mode: PlayModeSingleFrame})

	stage.Subscribe(synced)
	stage.Subscribe(single)
	stage.Subscribe(nil)

	if len(stage.Clips()) != 0 {
		t.Errorf("%d clips subscribed, want 0", len(stage.Clips()))
	}
}

func TestStageSubscribeDedupes(t *testing.T) {
	stage := NewStage()
	clip := NewClip(ClipConfig{Name: "c", Framerate: 10})

	stage.Subscribe(clip)
	stage.Subscribe(clip)

	if len(stage.Clips()) != 1 {
		t.Errorf("%d subscriptions, want 1", len(stage.Clips()))
	}
}

func TestStageUnsubscribeStopsAdvancing(t *testing.T) {
	stage := NewStage()
	clip := NewClip(ClipConfig{Name: "c", TotalFrames: 10, Framerate: 10})
	stage.Subscribe(clip)

	stage.Advance(0.2)
	stage.Unsubscribe(clip)
	stage.Advance(0.2)

	if clip.CurrentFrame() != 2 {
		t.Errorf("clip at frame %d, want 2", clip.CurrentFrame())
	}
}

func TestStageResubscribeResumes(t *testing.T) {
	stage := NewStage()
	clip := NewClip(ClipConfig{Name: "c", TotalFrames: 10, Framerate: 10})
	stage.Subscribe(clip)
	stage.Advance(0.2)

	stage.Unsubscribe(clip)
	stage.Subscribe(clip)
	stage.Advance(0.2)

	if clip.CurrentFrame() != 4 {
		t.Errorf("clip at frame %d, want 4", clip.CurrentFrame())
	}
}

func TestStageAdvanceAllowsReentrantSubscription(t *testing.T) {
	stage := NewStage()
	a := NewClip(ClipConfig{Name: "a", TotalFrames: 10, Framerate: 10})
	b := NewClip(ClipConfig{Name: "b", TotalFrames: 10, Framerate: 10})
	// An action swapping the tick list mid-update must not corrupt it.
	a.AddAction(func() {
		stage.Unsubscribe(a)
		stage.Subscribe(b)
	}, 2)
	stage.Subscribe(a)

	stage.Advance(0.25)

	if len(stage.Clips()) != 1 || stage.Clips()[0] != b {
		t.Fatalf("tick list after action: %d clips", len(stage.Clips()))
	}
	if a.CurrentFrame() != 2 {
		t.Fatalf("a at frame %d, want 2", a.CurrentFrame())
	}

	stage.Advance(0.25)
	if a.CurrentFrame() != 2 {
		t.Errorf("unsubscribed clip advanced to %d", a.CurrentFrame())
	}
	if b.CurrentFrame() != 2 {
		t.Errorf("swapped-in clip at frame %d, want 2", b.CurrentFrame())
	}
}

func TestStagePrunesDisposedClips(t *testing.T) {
	stage := NewStage()
	clip := NewClip(ClipConfig{Name: "c", TotalFrames: 10, Framerate: 10})
	stage.Root().AddChild(&clip.Node)
	stage.Subscribe(clip)

	clip.Dispose()
	stage.Advance(0.1)

	if len(stage.Clips()) != 0 {
		t.Errorf("%d clips after prune, want 0", len(stage.Clips()))
	}
}

func TestStageDrivesWholeHierarchy(t *testing.T) {
	stage := NewStage()
	parent := NewClip(ClipConfig{Name: "parent", Loop: true, TotalFrames: 20, Framerate: 10})
	child := NewClip(ClipConfig{Name: "child", Mode: PlayModeSynced, TotalFrames: 20})
	box := NewSprite("box", 4, 4)
	child.AddTimedChild(box, 0, 20)
	child.AddTween(box, Keyframe{Set: PropX, X: 20}, 0, 20, nil)
	parent.AddTimedChild(child, 0, 20)

	stage.Root().AddChild(&parent.Node)
	stage.Subscribe(parent)

	// A single stage tick drives the parent clock and the synced child's
	// tween in the same pass.
	stage.Advance(1.0)
	if parent.CurrentFrame() != 10 {
		t.Fatalf("parent at frame %d, want 10", parent.CurrentFrame())
	}
	if child.CurrentFrame() != 10 {
		t.Fatalf("synced child at frame %d, want 10", child.CurrentFrame())
	}
	if box.X < 9.5 || box.X > 10.5 {
		t.Errorf("box X = %f, want ~10", box.X)
	}
}
