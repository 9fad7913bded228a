package alter

import (
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

// Range is a half open run of pixels [Start, Start+Length)
type Range struct {
	Start  int
	Length int
}

// Contains reports whether position falls inside the range
func (r Range) Contains(position int) bool {
	return r.Start <= position && position < r.Start+r.Length
}

// Region pairs an alter with the ranges it owns.  A region that wraps
// around the end of a strip is expressed as two ranges
type Region struct {
	Alter  Alter
	Ranges []Range
}

// Partition routes each pixel to the first region containing it.  Regions
// may overlap, in which case the one listed first wins.  Pixels belonging
// to no region keep the upstream color, as do pixels a region leaves unset
type Partition []Region

func (p Partition) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	for _, region := range p {
		for _, r := range region.Ranges {
			if r.Contains(position) {
				if region.Alter == nil {
					return current
				}
				if px := region.Alter.AlterPixel(seconds, position, current, md); px.Set {
					return px
				}
				return current
			}
		}
	}
	return current
}

// Blend cross fades between alters.  The signal picks a position along the
// list, the alter at the whole part is blended with the next one (wrapping
// back to the first) by the fractional part
type Blend struct {
	Getter percent.Getter
	Alters []Alter
}

func (b Blend) pick(p float64) (left int, right int, lerp float64) {
	offset := wrap(p) * float64(len(b.Alters))
	left = int(offset) % len(b.Alters)
	right = (left + 1) % len(b.Alters)
	return left, right, offset - float64(int(offset))
}

func (b Blend) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if len(b.Alters) == 0 {
		return current
	}
	left, right, lerp := b.pick(b.Getter.Percent(seconds))

	fallback := current.Or(model.Black)
	leftColor := b.Alters[left].AlterPixel(seconds, position, current, md).Or(fallback)
	if lerp == 0 {
		return model.Some(leftColor)
	}
	rightColor := b.Alters[right].AlterPixel(seconds, position, current, md).Or(fallback)
	return model.Some(leftColor.Lerp(rightColor, lerp))
}
