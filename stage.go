package cel

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// WhitePixel is a 1x1 white image used for solid color sprites.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.toRGBA())
}

// Ticker is the clock source contract: independent clips are registered
// explicitly and advanced once per tick. Registration is deterministic:
// callers subscribe when a clip enters the live tree and unsubscribe when it
// leaves (Stage prunes disposed clips on its own).
type Ticker interface {
	Subscribe(*Clip)
	Unsubscribe(*Clip)
}

// Stage owns the root of a display tree and the set of live independent
// clips it drives. Stage implements Ticker.
type Stage struct {
	root  *Node
	clips []*Clip
}

// NewStage creates a stage with a pre-created root container.
func NewStage() *Stage {
	return &Stage{root: NewContainer("root")}
}

// Root returns the stage's root container node.
func (s *Stage) Root() *Node {
	return s.root
}

// Subscribe registers an independent clip to be advanced each Update.
// Non-independent clips never self-advance and are ignored, as are
// duplicates.
func (s *Stage) Subscribe(c *Clip) {
	if c == nil || c.Mode != PlayModeIndependent {
		return
	}
	for _, existing := range s.clips {
		if existing == c {
			return
		}
	}
	s.clips = append(s.clips, c)
}

// Unsubscribe removes a clip from the tick list. Its playback state is left
// untouched; re-subscribing resumes from where it stopped.
func (s *Stage) Unsubscribe(c *Clip) {
	for i, existing := range s.clips {
		if existing == c {
			copy(s.clips[i:], s.clips[i+1:])
			s.clips[len(s.clips)-1] = nil
			s.clips = s.clips[:len(s.clips)-1]
			return
		}
	}
}

// Clips returns the subscribed clip list. The returned slice MUST NOT be
// mutated by the caller.
func (s *Stage) Clips() []*Clip {
	return s.clips
}

// Update advances every subscribed clip by one tick of elapsed time, derived
// from the game's ticks-per-second. Disposed clips are dropped from the tick
// list.
func (s *Stage) Update() {
	s.Advance(1.0 / float64(ebiten.TPS()))
}

// Advance advances every subscribed clip by dt seconds. Split out from
// Update for embedders that run their own clock. Clip actions may call
// Subscribe or Unsubscribe; the pass walks a snapshot of the tick list so
// the live list can change underneath it.
func (s *Stage) Advance(dt float64) {
	snapshot := append([]*Clip(nil), s.clips...)
	for _, c := range snapshot {
		if c.IsDisposed() {
			s.Unsubscribe(c)
			continue
		}
		c.Advance(dt)
	}
}

// Draw refreshes world transforms and renders visible sprite nodes to the
// screen in tree order.
func (s *Stage) Draw(screen *ebiten.Image) {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	drawNode(s.root, screen)
}

func drawNode(n *Node, screen *ebiten.Image) {
	if !n.Visible {
		return
	}
	if n.Type == NodeTypeSprite {
		img := n.customImage
		var op ebiten.DrawImageOptions
		if img == nil {
			img = WhitePixel
			op.GeoM.Scale(n.Width, n.Height)
		}
		m := n.worldTransform
		geo := ebiten.GeoM{}
		geo.SetElement(0, 0, m[0])
		geo.SetElement(0, 1, m[2])
		geo.SetElement(0, 2, m[4])
		geo.SetElement(1, 0, m[1])
		geo.SetElement(1, 1, m[3])
		geo.SetElement(1, 2, m[5])
		op.GeoM.Concat(geo)
		alpha := n.Color.A * n.worldAlpha
		op.ColorScale.Scale(
			float32(n.Color.R*alpha),
			float32(n.Color.G*alpha),
			float32(n.Color.B*alpha),
			float32(alpha),
		)
		screen.DrawImage(img, &op)
	}
	for _, child := range n.children {
		drawNode(child, screen)
	}
}
