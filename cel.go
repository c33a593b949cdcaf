package cel

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to an 8-bit color for image fills.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// PlayMode determines how a Clip derives its current frame each resolution
// pass. It is fixed at construction.
type PlayMode uint8

const (
	// PlayModeIndependent clips run on their own clock: Advance accumulates
	// elapsed time and quantizes it to a frame.
	PlayModeIndependent PlayMode = iota
	// PlayModeSingleFrame clips are pinned to StartPosition and never advance.
	PlayModeSingleFrame
	// PlayModeSynced clips derive their frame from the parent clip's resolved
	// frame plus an offset; they have no clock of their own.
	PlayModeSynced
)

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeSprite                    // renders a solid quad or custom image
)

// Displayable is anything that can be placed on a Clip's timeline: a plain
// *Node or another *Clip. *Clip satisfies it through its embedded Node.
type Displayable interface {
	DisplayNode() *Node
}
