package alter

import (
	"math"
	"math/rand"

	"github.com/TeamNorCal/ledmachine/model"
)

const (
	// offsetTranslateSpeed is how fast the lights drift, in pixels per second
	offsetTranslateSpeed = 0.5

	// northernRetargetSeconds is how long the lights drift toward one spot
	northernRetargetSeconds = 45.0
)

type chunk struct {
	color model.Color
	width float64
}

// NorthernLights lays bands of color along the strip with wide blended
// borders and lets the whole arrangement wander slowly
type NorthernLights struct {
	chunks    []chunk
	pixelSpan float64
	rng       *rand.Rand

	offset        float64
	desiredOffset float64
	lastSeconds   float64
	retargetAt    float64
	seen          bool
}

func NewNorthernLights(colors []model.Color, pixelSpan int, rng *rand.Rand) (n *NorthernLights) {
	n = &NorthernLights{
		chunks:    make([]chunk, len(colors)),
		pixelSpan: math.Max(1, float64(pixelSpan)),
		rng:       rng,
	}
	for i, c := range colors {
		n.chunks[i].color = c
	}
	n.reset()
	return n
}

func (n *NorthernLights) reset() {
	if len(n.chunks) == 0 {
		return
	}
	full := n.pixelSpan / float64(len(n.chunks))
	for i := range n.chunks {
		n.chunks[i].width = full / 3
	}
}

// SetDesiredOffset picks the spot the lights drift toward taking the
// shorter way around the strip
func (n *NorthernLights) SetDesiredOffset(desired float64) {
	result := math.Mod(desired-n.offset, n.pixelSpan)
	if result < 0 {
		result += n.pixelSpan
	}
	if result > n.pixelSpan/2 {
		result -= n.pixelSpan
	}
	n.desiredOffset = n.offset + result
}

func (n *NorthernLights) update(seconds float64) {
	if !n.seen || seconds < n.lastSeconds || seconds-n.lastSeconds > 1.0 {
		// First frame, rewound time or a long stall all start from rest
		n.seen = true
		n.lastSeconds = seconds
		n.retargetAt = seconds + northernRetargetSeconds
		n.reset()
		return
	}
	delta := seconds - n.lastSeconds
	if delta == 0 {
		return
	}
	n.lastSeconds = seconds

	if seconds >= n.retargetAt {
		n.retargetAt = seconds + northernRetargetSeconds
		if n.rng != nil {
			n.SetDesiredOffset(n.rng.Float64() * n.pixelSpan)
		}
	}

	if math.Abs(n.offset-n.desiredOffset) < 1 {
		n.offset = n.desiredOffset
	} else {
		n.offset += math.Copysign(delta*offsetTranslateSpeed, n.desiredOffset-n.offset)
	}
}

func (n *NorthernLights) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if len(n.chunks) == 0 {
		return current
	}
	n.update(seconds)

	full := n.pixelSpan / float64(len(n.chunks))
	spot := math.Mod(float64(position)+n.offset, n.pixelSpan)
	if spot < 0 {
		spot += n.pixelSpan
	}
	for i, ch := range n.chunks {
		start := float64(i) * full
		if spot <= start+ch.width {
			return model.Some(ch.color)
		}
		if spot < float64(i+1)*full {
			left := ch.color
			right := n.chunks[(i+1)%len(n.chunks)].color
			middle := left.Lerp(right, 0.5)
			distance := (spot - start - ch.width) / (full - ch.width)
			if distance <= 0.5 {
				return model.Some(left.Lerp(middle, distance*2))
			}
			return model.Some(middle.Lerp(right, (distance-0.5)*2))
		}
	}
	return model.Some(n.chunks[len(n.chunks)-1].color)
}
