package alter

import (
	"math"
	"math/rand"

	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

const (
	starPerPixel = 1.0 / 12.0
)

type star struct {
	position          float64
	velocity          float64
	brightness        float64
	thickness         float64
	fadeDistanceLeft  float64
	fadeDistanceRight float64
	brightnessLeft    float64
	brightnessRight   float64
}

func newStar() star {
	return star{
		brightness:        1.0,
		fadeDistanceLeft:  1.5,
		fadeDistanceRight: 1.5,
		brightnessLeft:    0.9,
		brightnessRight:   0.9,
	}
}

func (s *star) brightnessAt(position float64) float64 {
	lower := s.position - s.thickness/2
	upper := s.position + s.thickness/2
	switch {
	case lower <= position && position <= upper:
		return s.brightness
	case lower-s.fadeDistanceLeft <= position && position < lower:
		return (position - (lower - s.fadeDistanceLeft)) / s.fadeDistanceLeft * s.brightnessLeft
	case upper < position && position <= upper+s.fadeDistanceRight:
		return ((upper + s.fadeDistanceRight) - position) / s.fadeDistanceRight * s.brightnessRight
	}
	return 0
}

// Star drifts dim stars back and forth across the strip with one bright
// shooting star crossing it, scaling whatever color is upstream.  Reversed
// stars are holes of darkness moving through a lit strip
type Star struct {
	reverse bool
	speed   *percent.Knob

	spawnLower float64
	spawnUpper float64
	stars      []star

	seen        bool
	lastSeconds float64
}

// NewStar spreads stars over the expected pixels plus padding on both ends,
// so stars drift in and out of view rather than popping into existence
func NewStar(expectedPixels int, padding int, speed *percent.Knob, reverse bool, rng *rand.Rand) (s *Star) {
	s = &Star{
		reverse:    reverse,
		speed:      speed,
		spawnLower: float64(-padding),
		spawnUpper: float64(expectedPixels + padding),
	}

	totalStars := int(float64(expectedPixels+padding*2) * starPerPixel)
	s.stars = make([]star, 0, totalStars+1)
	for i := 0; i < totalStars; i++ {
		st := newStar()
		st.position = float64(-padding + rng.Intn(expectedPixels+padding*2+1))
		st.velocity = float64(rng.Intn(2)*2-1) * (0.3 + rng.Float64()*1.2)
		if reverse {
			st.thickness = 2.0
		} else {
			st.brightness = 0.2 + rng.Float64()*0.6
		}
		st.brightnessLeft = st.brightness
		st.brightnessRight = st.brightness
		s.stars = append(s.stars, st)
	}

	shooting := newStar()
	shooting.thickness = 1.0
	shooting.fadeDistanceRight = 4.0
	shooting.fadeDistanceLeft = 1.0
	shooting.brightnessRight = 0.1
	shooting.velocity = -10.0
	s.stars = append(s.stars, shooting)

	return s
}

func (s *Star) advance(seconds float64) {
	delta := 0.0
	if s.seen {
		delta = seconds - s.lastSeconds
	}
	s.seen = true
	s.lastSeconds = seconds

	// Backwards or unchanged time leaves the stars where they are
	if delta <= 0 {
		return
	}

	rate := 1.0
	if s.speed != nil {
		rate = s.speed.Get()
	}
	step := delta * rate
	if math.IsNaN(step) || math.IsInf(step, 0) {
		return
	}
	span := s.spawnUpper - s.spawnLower
	for i := range s.stars {
		st := &s.stars[i]
		st.position += st.velocity * step
		if st.position > s.spawnUpper || st.position < s.spawnLower {
			st.position = s.spawnLower + math.Mod(st.position-s.spawnLower, span)
			if st.position < s.spawnLower {
				st.position += span
			}
		}
	}
}

func (s *Star) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	s.advance(seconds)

	if !current.Set {
		return current
	}

	brightness := 0.0
	for i := range s.stars {
		brightness = math.Max(brightness, s.stars[i].brightnessAt(float64(position)))
	}
	brightness = clampUnit(brightness)
	if s.reverse {
		brightness = 1 - brightness
	}
	return model.Some(current.Color.Scale(brightness))
}
