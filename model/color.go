package model

// This module defines the color values that flow through the effect
// engine.  Colors are linear RGB with every channel held in [0,1],
// byte triples are only produced at the point where a frame is handed
// to a strip driver

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an immutable linear RGB triple, each channel in [0,1]
type Color struct {
	r, g, b float64
}

// RGB is a byte triple as consumed by LED strip drivers
type RGB struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{1, 1, 1}
)

// NewColor validates the channels and returns a color, a channel outside
// of [0,1] is a range error
func NewColor(r, g, b float64) (c Color, err errors.Error) {
	for _, ch := range []struct {
		name  string
		value float64
	}{{"r", r}, {"g", g}, {"b", b}} {
		if math.IsNaN(ch.value) || ch.value < 0 || ch.value > 1 {
			return Black, errors.New("color channel out of range").With("channel", ch.name).With("value", ch.value).With("stack", stack.Trace().TrimRuntime())
		}
	}
	return Color{r, g, b}, nil
}

// FromBytes builds a color from 0-255 channel values
func FromBytes(r, g, b uint8) Color {
	return Color{float64(r) / 255.0, float64(g) / 255.0, float64(b) / 255.0}
}

// From24Bit builds a color from a packed 0xRRGGBB value
func From24Bit(number uint32) Color {
	return FromBytes(uint8(number>>16), uint8(number>>8), uint8(number))
}

// ParseHex accepts #rrggbb and #rgb, with or without the leading hash
func ParseHex(word string) (c Color, err errors.Error) {
	word = strings.TrimPrefix(strings.TrimSpace(word), "#")
	if len(word) == 3 {
		word = string([]byte{word[0], word[0], word[1], word[1], word[2], word[2]})
	}
	if len(word) != 6 {
		return Black, errors.New("hex color must have 3 or 6 digits").With("word", word).With("stack", stack.Trace().TrimRuntime())
	}
	parsed, errGo := colorful.Hex("#" + word)
	if errGo != nil {
		return Black, errors.Wrap(errGo).With("word", word).With("stack", stack.Trace().TrimRuntime())
	}
	return Color{clamp(parsed.R), clamp(parsed.G), clamp(parsed.B)}, nil
}

func (c Color) R() float64 { return c.r }
func (c Color) G() float64 { return c.g }
func (c Color) B() float64 { return c.b }

// Scale multiplies every channel, the result is clamped back into range
func (c Color) Scale(k float64) Color {
	return Color{clamp(c.r * k), clamp(c.g * k), clamp(c.b * k)}
}

// Lerp moves from c toward other by percent.  A percent of 0 gives back c
// and 1 gives back other exactly
func (c Color) Lerp(other Color, percent float64) Color {
	switch {
	case percent <= 0 || math.IsNaN(percent):
		return c
	case percent >= 1:
		return other
	}
	return Color{
		clamp(c.r + (other.r-c.r)*percent),
		clamp(c.g + (other.g-c.g)*percent),
		clamp(c.b + (other.b-c.b)*percent),
	}
}

// RGB255 converts the color into the byte triple sent to the hardware
func (c Color) RGB255() RGB {
	r, g, b := colorful.Color{R: c.r, G: c.g, B: c.b}.Clamped().RGB255()
	return RGB{r, g, b}
}

// Hex formats the color as #rrggbb
func (c Color) Hex() string {
	return colorful.Color{R: c.r, G: c.g, B: c.b}.Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("Color(%.3f, %.3f, %.3f)", c.r, c.g, c.b)
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Pixel is the value passed between alters, a color or the absence of one
type Pixel struct {
	Color Color
	Set   bool
}

// Unset is the pixel value used when nothing upstream has produced a color
var Unset = Pixel{}

// Some wraps a color as a set pixel
func Some(c Color) Pixel {
	return Pixel{Color: c, Set: true}
}

// Or returns the pixel color, or the fallback when the pixel is unset
func (p Pixel) Or(fallback Color) Color {
	if p.Set {
		return p.Color
	}
	return fallback
}
