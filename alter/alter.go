/*
Package alter contains the pixel transforms making up an effect.  An Alter is
asked for the color of one pixel at one point in time, given whatever color
the alters before it produced.  Alters compose by sequencing (Multiplex),
spatial routing (Partition) and cross fading (Blend).
*/
package alter

import (
	"fmt"
	"math"

	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

// Metadata is passed unchanged to every alter evaluated within a frame
type Metadata struct {
	Frame uint64
}

// Alter transforms a single pixel.  seconds may have been dilated by the
// caller to make effects run faster or slower.  A current value that is not
// set means no upstream alter produced a color, returning it unset means the
// pixel should be left dark
type Alter interface {
	AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel
}

// Nothing passes the upstream color through
type Nothing struct{}

func (Nothing) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	return current
}

// Solid overrides every pixel with a single color
type Solid struct {
	Color model.Color
}

func (s Solid) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	return model.Some(s.Color)
}

func (s Solid) String() string {
	return fmt.Sprintf("Solid(%s)", s.Color.Hex())
}

// Dim scales the upstream color by a level, the level is a getter so it can
// be a knob changed by brightness commands
type Dim struct {
	Level percent.Getter
}

func (d Dim) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if !current.Set {
		return current
	}
	return model.Some(current.Color.Scale(d.Level.Percent(seconds)))
}

// SpeedScale runs the wrapped alter with time multiplied by a live rate
type SpeedScale struct {
	Alter Alter
	Rate  *percent.Knob
}

func (s SpeedScale) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	return s.Alter.AlterPixel(seconds*s.Rate.Get(), position, current, md)
}

// Multiplex applies each alter in order, each one seeing the output of the
// previous one
type Multiplex []Alter

func (m Multiplex) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	for _, alter := range m {
		if alter == nil {
			continue
		}
		current = alter.AlterPixel(seconds, position, current, md)
	}
	return current
}

// wrap folds a value into [0,1)
func wrap(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v - math.Floor(v)
}
