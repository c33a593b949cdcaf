package cel

import (
	"fmt"
	"strconv"
	"strings"
)

// PropMask is a bitmask of which Keyframe fields are set.
// Values can be combined with bitwise OR (e.g. PropX | PropY).
type PropMask uint16

const (
	PropX              PropMask = 1 << iota // position x
	PropY                                   // position y
	PropScaleX                              // scale x
	PropScaleY                              // scale y
	PropSkewX                               // skew x (radians)
	PropSkewY                               // skew y (radians)
	PropRotation                            // rotation (radians)
	PropAlpha                               // alpha [0, 1]
	PropTint                                // RGB tint
	PropColorTransform                      // RGBA channel list
	PropVisible                             // visibility flag
)

// Keyframe holds decoded target property values for a single frame. Only the
// fields whose bit is present in Set are meaningful.
type Keyframe struct {
	Set            PropMask
	X, Y           float64
	ScaleX, ScaleY float64
	SkewX, SkewY   float64
	Rotation       float64
	Alpha          float64
	Tint           uint32    // 0xRRGGBB
	ColorTransform []float64 // up to 4 channel values: R, G, B, A
	Visible        bool
}

// applyTo writes the keyframe's set properties onto the node.
func (k Keyframe) applyTo(n *Node) {
	if k.Set&PropX != 0 {
		n.X = k.X
	}
	if k.Set&PropY != 0 {
		n.Y = k.Y
	}
	if k.Set&PropScaleX != 0 {
		n.ScaleX = k.ScaleX
	}
	if k.Set&PropScaleY != 0 {
		n.ScaleY = k.ScaleY
	}
	if k.Set&PropSkewX != 0 {
		n.SkewX = k.SkewX
	}
	if k.Set&PropSkewY != 0 {
		n.SkewY = k.SkewY
	}
	if k.Set&PropRotation != 0 {
		n.Rotation = k.Rotation
	}
	if k.Set&PropAlpha != 0 {
		n.Alpha = k.Alpha
	}
	if k.Set&PropTint != 0 {
		n.Color.R = float64(k.Tint>>16&0xff) / 255
		n.Color.G = float64(k.Tint>>8&0xff) / 255
		n.Color.B = float64(k.Tint&0xff) / 255
	}
	if k.Set&PropColorTransform != 0 {
		channels := []*float64{&n.Color.R, &n.Color.G, &n.Color.B, &n.Color.A}
		for i, v := range k.ColorTransform {
			if i >= len(channels) {
				break
			}
			*channels[i] = v
		}
	}
	if k.Set&PropVisible != 0 {
		n.Visible = k.Visible
	}
	n.transformDirty = true
}

// DecodeKeyframes parses the compact keyframe-string format into per-frame
// keyframes.
//
// The string is a space-separated list of frame records. Each record is a
// frame index followed by code/value pairs, e.g. "0x100y100 10x150". Codes:
//
//	x, y    position
//	a, b    scale x, y
//	c, d    skew x, y
//	r       rotation
//	l       alpha
//	t       tint (#RRGGBB or a decimal RGB integer)
//	f       color transform (comma-separated channel values)
//	v       visibility (0 or 1)
//
// Unrecognized codes and malformed values are hard errors: corrupt animation
// data should not silently produce wrong visuals.
func DecodeKeyframes(data string) (map[int]Keyframe, error) {
	frames := make(map[int]Keyframe)
	for _, record := range strings.Fields(data) {
		frame, kf, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		frames[frame] = kf
	}
	return frames, nil
}

// decodeRecord parses a single "<frame><code><value>..." record.
func decodeRecord(record string) (int, Keyframe, error) {
	i := 0
	for i < len(record) && isDigit(record[i]) {
		i++
	}
	if i == 0 {
		return 0, Keyframe{}, fmt.Errorf("decode keyframes: record %q: missing frame index", record)
	}
	frame, err := strconv.Atoi(record[:i])
	if err != nil {
		return 0, Keyframe{}, fmt.Errorf("decode keyframes: record %q: bad frame index: %w", record, err)
	}

	var kf Keyframe
	for i < len(record) {
		code := record[i]
		i++
		start := i
		if i < len(record) && record[i] == '#' {
			// Hex tints are fixed-width; an unbounded scan would swallow a
			// following code letter like 'f' that is itself a hex digit.
			i++
			for n := 0; n < 6 && i < len(record) && isHex(record[i]); n++ {
				i++
			}
		} else {
			for i < len(record) && isValueChar(record[i]) {
				i++
			}
		}
		value := record[start:i]
		if value == "" {
			return 0, Keyframe{}, fmt.Errorf("decode keyframes: frame %d: code %q has no value", frame, code)
		}
		if err := setProp(&kf, code, value); err != nil {
			return 0, Keyframe{}, fmt.Errorf("decode keyframes: frame %d: %w", frame, err)
		}
	}
	return frame, kf, nil
}

// setProp assigns one decoded code/value pair to the keyframe.
func setProp(kf *Keyframe, code byte, value string) error {
	scalar := func(dst *float64, mask PropMask) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("code %q: bad value %q", code, value)
		}
		*dst = v
		kf.Set |= mask
		return nil
	}

	switch code {
	case 'x':
		return scalar(&kf.X, PropX)
	case 'y':
		return scalar(&kf.Y, PropY)
	case 'a':
		return scalar(&kf.ScaleX, PropScaleX)
	case 'b':
		return scalar(&kf.ScaleY, PropScaleY)
	case 'c':
		return scalar(&kf.SkewX, PropSkewX)
	case 'd':
		return scalar(&kf.SkewY, PropSkewY)
	case 'r':
		return scalar(&kf.Rotation, PropRotation)
	case 'l':
		return scalar(&kf.Alpha, PropAlpha)
	case 't':
		tint, err := parseTint(value)
		if err != nil {
			return err
		}
		kf.Tint = tint
		kf.Set |= PropTint
		return nil
	case 'f':
		parts := strings.Split(value, ",")
		channels := make([]float64, len(parts))
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return fmt.Errorf("code %q: bad channel %q", code, part)
			}
			channels[i] = v
		}
		kf.ColorTransform = channels
		kf.Set |= PropColorTransform
		return nil
	case 'v':
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("code %q: bad value %q", code, value)
		}
		kf.Visible = v != 0
		kf.Set |= PropVisible
		return nil
	default:
		return fmt.Errorf("unknown property code %q", code)
	}
}

// parseTint accepts "#RRGGBB" or a decimal RGB integer.
func parseTint(value string) (uint32, error) {
	if strings.HasPrefix(value, "#") {
		hex := value[1:]
		if len(hex) != 6 {
			return 0, fmt.Errorf("code 't': bad tint %q", value)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("code 't': bad tint %q", value)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil || v > 0xffffff {
		return 0, fmt.Errorf("code 't': bad tint %q", value)
	}
	return uint32(v), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// isValueChar reports whether b may appear in a non-hex property value:
// digits, sign, decimal point, and the comma used by channel lists.
func isValueChar(b byte) bool {
	return isDigit(b) || b == '.' || b == '-' || b == '+' || b == ','
}
