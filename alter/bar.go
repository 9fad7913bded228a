package alter

import (
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

// CenteredBar repeats bars of 2*HalfWidth pixels that grow outward from
// their centers as the signal rises, everything outside a bar goes dark
type CenteredBar struct {
	Getter    percent.Getter
	HalfWidth int
}

func (c CenteredBar) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if !current.Set || c.HalfWidth <= 0 {
		return current
	}
	period := c.HalfWidth * 2
	modded := position % period
	if modded < 0 {
		modded += period
	}
	distance := c.HalfWidth - modded
	if distance < 0 {
		distance = -distance
	}
	if float64(distance)/float64(c.HalfWidth) > c.Getter.Percent(seconds) {
		return model.Some(model.Black)
	}
	return current
}
