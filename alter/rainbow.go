package alter

import (
	"math"

	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

// Rainbow sweeps the hue wheel along the strip, one full wheel every
// Spread pixels, moving with the signal
type Rainbow struct {
	Getter percent.Getter
	Spread float64
}

func (r Rainbow) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	offset := r.Getter.Percent(seconds)
	if r.Spread != 0 {
		offset += float64(position) / r.Spread
	}
	return model.Some(Hue(wrap(offset)))
}

// Hue maps [0,1) onto the six sector color wheel.  Within a sector the
// changing channel follows half a cosine so the sector edges do not band
func Hue(percent float64) model.Color {
	scaled := wrap(percent) * 6
	spot := int(scaled)
	amount := (1 - math.Cos(math.Pi*(scaled-float64(spot)))) / 2

	var r, g, b float64
	switch spot {
	case 0: // add red
		r, g, b = amount, 1, 0
	case 1: // remove green
		r, g, b = 1, 1-amount, 0
	case 2: // add blue
		r, g, b = 1, 0, amount
	case 3: // remove red
		r, g, b = 1-amount, 0, 1
	case 4: // add green
		r, g, b = 0, amount, 1
	default: // remove blue
		r, g, b = 0, 1, 1-amount
	}
	c, _ := model.NewColor(clampUnit(r), clampUnit(g), clampUnit(b))
	return c
}

// Fade moves through a palette along the strip, blending neighbouring
// colors and wrapping from the last back to the first
type Fade struct {
	Getter percent.Getter
	Colors []model.Color
	Spread float64
}

func (f Fade) color(percent float64) model.Color {
	offset := wrap(percent) * float64(len(f.Colors))
	left := int(offset) % len(f.Colors)
	right := (left + 1) % len(f.Colors)
	return f.Colors[left].Lerp(f.Colors[right], offset-float64(int(offset)))
}

func (f Fade) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if len(f.Colors) == 0 {
		return current
	}
	offset := f.Getter.Percent(seconds)
	if f.Spread != 0 {
		offset += float64(position) / f.Spread
	}
	return model.Some(f.color(offset))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
