package cel

import (
	"fmt"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// Document is a declarative description of a clip tree, typically exported
// from an authoring tool. Load one with LoadDocument and construct the clips
// with Build or BuildOn.
type Document struct {
	// Framerate applies to every clip that does not set its own.
	Framerate float64   `yaml:"framerate"`
	Clips     []ClipDef `yaml:"clips"`
}

// ClipDef describes one clip: its playback settings, plain display children,
// child-clip presence windows, and tweens.
type ClipDef struct {
	Name      string         `yaml:"name"`
	Mode      string         `yaml:"mode"` // independent (default), single, synced
	Loop      bool           `yaml:"loop"`
	Start     int            `yaml:"start"`
	Frames    int            `yaml:"frames"`
	Framerate float64        `yaml:"framerate"`
	Labels    map[string]int `yaml:"labels"`
	Children  []ChildDef     `yaml:"children"`
	Tweens    []TweenDef     `yaml:"tweens"`
}

// ChildDef schedules one child on a clip's timeline for
// [start, start+duration) frames. Kind selects a sprite, a container, or a
// reference to another clip defined in the document.
type ChildDef struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"` // sprite (default), container, clip
	Clip     string  `yaml:"clip"` // referenced clip name when kind is "clip"
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Start    int     `yaml:"start"`
	Duration int     `yaml:"duration"`
}

// TweenDef animates one target: either compact keyframe-string holds, or a
// single eased tween to explicit end values.
type TweenDef struct {
	// Target names a child of the clip; empty targets the clip itself.
	Target    string       `yaml:"target"`
	Keyframes string       `yaml:"keyframes"`
	To        *KeyframeDef `yaml:"to"`
	Start     int          `yaml:"start"`
	Duration  int          `yaml:"duration"`
	Easing    string       `yaml:"easing"`
}

// KeyframeDef is the structured form of a keyframe: absent fields stay
// unanimated.
type KeyframeDef struct {
	X        *float64  `yaml:"x"`
	Y        *float64  `yaml:"y"`
	ScaleX   *float64  `yaml:"scaleX"`
	ScaleY   *float64  `yaml:"scaleY"`
	SkewX    *float64  `yaml:"skewX"`
	SkewY    *float64  `yaml:"skewY"`
	Rotation *float64  `yaml:"rotation"`
	Alpha    *float64  `yaml:"alpha"`
	Tint     string    `yaml:"tint"` // "#RRGGBB"
	Color    []float64 `yaml:"color"`
	Visible  *bool     `yaml:"visible"`
}

// easings maps document easing names to gween easing functions.
var easings = map[string]ease.TweenFunc{
	"":             ease.Linear,
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"in-back":      ease.InBack,
	"out-back":     ease.OutBack,
	"in-elastic":   ease.InElastic,
	"out-elastic":  ease.OutElastic,
	"out-bounce":   ease.OutBounce,
}

// playModes maps document mode names to PlayMode values.
var playModes = map[string]PlayMode{
	"":            PlayModeIndependent,
	"independent": PlayModeIndependent,
	"single":      PlayModeSingleFrame,
	"synced":      PlayModeSynced,
}

// LoadDocument parses a YAML clip document.
func LoadDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse clip document: %w", err)
	}
	if len(doc.Clips) == 0 {
		return nil, fmt.Errorf("parse clip document: no clips")
	}
	seen := make(map[string]bool, len(doc.Clips))
	for _, def := range doc.Clips {
		if def.Name == "" {
			return nil, fmt.Errorf("parse clip document: clip with no name")
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("parse clip document: duplicate clip %q", def.Name)
		}
		seen[def.Name] = true
		if _, ok := playModes[def.Mode]; !ok {
			return nil, fmt.Errorf("parse clip document: clip %q: unknown mode %q", def.Name, def.Mode)
		}
	}
	return &doc, nil
}

// Build constructs every clip in the document and wires children and tweens.
// Returns the clips by name.
func (d *Document) Build() (map[string]*Clip, error) {
	clips := make(map[string]*Clip, len(d.Clips))
	for _, def := range d.Clips {
		fps := def.Framerate
		if fps == 0 {
			fps = d.Framerate
		}
		clips[def.Name] = NewClip(ClipConfig{
			Name:          def.Name,
			Mode:          playModes[def.Mode],
			StartPosition: def.Start,
			Loop:          def.Loop,
			Labels:        def.Labels,
			TotalFrames:   def.Frames,
			Framerate:     fps,
		})
	}

	for _, def := range d.Clips {
		c := clips[def.Name]
		targets := map[string]Displayable{"": c}
		for _, cd := range def.Children {
			child, err := buildChild(cd, clips)
			if err != nil {
				return nil, fmt.Errorf("build clip %q: %w", def.Name, err)
			}
			if targets[cd.Name] != nil {
				return nil, fmt.Errorf("build clip %q: duplicate child %q", def.Name, cd.Name)
			}
			targets[cd.Name] = child
			c.AddTimedChild(child, cd.Start, cd.Duration)
		}
		for _, td := range def.Tweens {
			if err := buildTween(c, td, targets); err != nil {
				return nil, fmt.Errorf("build clip %q: %w", def.Name, err)
			}
		}
	}
	return clips, nil
}

// BuildOn builds the document and mounts its root clips (those no other
// clip schedules as a child) under the stage root, subscribing independent
// ones to the stage clock.
func (d *Document) BuildOn(stage *Stage) (map[string]*Clip, error) {
	clips, err := d.Build()
	if err != nil {
		return nil, err
	}
	scheduled := make(map[string]bool)
	for _, def := range d.Clips {
		for _, cd := range def.Children {
			if cd.Kind == "clip" {
				scheduled[cd.Clip] = true
			}
		}
	}
	for _, def := range d.Clips {
		if scheduled[def.Name] {
			continue
		}
		c := clips[def.Name]
		stage.Root().AddChild(&c.Node)
		stage.Subscribe(c)
	}
	return clips, nil
}

func buildChild(cd ChildDef, clips map[string]*Clip) (Displayable, error) {
	if cd.Name == "" {
		return nil, fmt.Errorf("child with no name")
	}
	switch cd.Kind {
	case "", "sprite":
		return NewSprite(cd.Name, cd.Width, cd.Height), nil
	case "container":
		return NewContainer(cd.Name), nil
	case "clip":
		ref := clips[cd.Clip]
		if ref == nil {
			return nil, fmt.Errorf("child %q: unknown clip %q", cd.Name, cd.Clip)
		}
		return ref, nil
	default:
		return nil, fmt.Errorf("child %q: unknown kind %q", cd.Name, cd.Kind)
	}
}

func buildTween(c *Clip, td TweenDef, targets map[string]Displayable) error {
	target := targets[td.Target]
	if target == nil {
		return fmt.Errorf("tween: unknown target %q", td.Target)
	}
	if td.Keyframes != "" {
		if err := c.AddKeyframeData(target, td.Keyframes); err != nil {
			return fmt.Errorf("tween target %q: %w", td.Target, err)
		}
		return nil
	}
	if td.To == nil {
		return fmt.Errorf("tween target %q: neither keyframes nor to", td.Target)
	}
	fn, ok := easings[td.Easing]
	if !ok {
		return fmt.Errorf("tween target %q: unknown easing %q", td.Target, td.Easing)
	}
	kf, err := td.To.keyframe()
	if err != nil {
		return fmt.Errorf("tween target %q: %w", td.Target, err)
	}
	c.AddTween(target, kf, td.Start, td.Duration, fn)
	return nil
}

// keyframe converts the structured definition to a Keyframe with its mask.
func (kd *KeyframeDef) keyframe() (Keyframe, error) {
	var kf Keyframe
	scalar := func(src *float64, dst *float64, mask PropMask) {
		if src != nil {
			*dst = *src
			kf.Set |= mask
		}
	}
	scalar(kd.X, &kf.X, PropX)
	scalar(kd.Y, &kf.Y, PropY)
	scalar(kd.ScaleX, &kf.ScaleX, PropScaleX)
	scalar(kd.ScaleY, &kf.ScaleY, PropScaleY)
	scalar(kd.SkewX, &kf.SkewX, PropSkewX)
	scalar(kd.SkewY, &kf.SkewY, PropSkewY)
	scalar(kd.Rotation, &kf.Rotation, PropRotation)
	scalar(kd.Alpha, &kf.Alpha, PropAlpha)
	if kd.Tint != "" {
		tint, err := parseTint(kd.Tint)
		if err != nil {
			return Keyframe{}, err
		}
		kf.Tint = tint
		kf.Set |= PropTint
	}
	if len(kd.Color) > 0 {
		kf.ColorTransform = kd.Color
		kf.Set |= PropColorTransform
	}
	if kd.Visible != nil {
		kf.Visible = *kd.Visible
		kf.Set |= PropVisible
	}
	return kf, nil
}
