package alter

import (
	"math"
	"math/rand"

	"github.com/TeamNorCal/ledmachine/model"
)

const (
	twinkleSectionLength = 20
	twinkleFadeSeconds   = 0.3
)

type twinkle struct {
	peak float64
	fade float64
}

func (t twinkle) brightness(seconds float64) float64 {
	return math.Max(0, 1-math.Abs(seconds-t.peak)/t.fade)
}

func (t twinkle) stale(seconds float64) bool {
	return t.peak+t.fade < seconds
}

// Twinkle lights a random share of every section of the strip once a
// second, each chosen pixel flaring up and fading away again
type Twinkle struct {
	minPercent float64
	maxPercent float64
	rng        *rand.Rand

	// twinkles is indexed by pixel position, entries expire as they are read
	twinkles   [][]twinkle
	updated    bool
	lastUpdate float64
}

func NewTwinkle(numberOfPixels int, minPercent float64, maxPercent float64, rng *rand.Rand) (t *Twinkle) {
	sections := (numberOfPixels + twinkleSectionLength - 1) / twinkleSectionLength
	return &Twinkle{
		minPercent: clampUnit(minPercent),
		maxPercent: clampUnit(math.Max(minPercent, maxPercent)),
		rng:        rng,
		twinkles:   make([][]twinkle, sections*twinkleSectionLength),
	}
}

func (t *Twinkle) randomize(seconds float64) {
	low := int(math.Round(twinkleSectionLength * t.minPercent))
	high := int(math.Round(twinkleSectionLength * t.maxPercent))
	for start := 0; start < len(t.twinkles); start += twinkleSectionLength {
		count := low + t.rng.Intn(high-low+1)
		for _, offset := range t.rng.Perm(twinkleSectionLength)[:count] {
			pixel := start + offset
			kept := t.twinkles[pixel][:0]
			for _, tw := range t.twinkles[pixel] {
				if !tw.stale(seconds) {
					kept = append(kept, tw)
				}
			}
			t.twinkles[pixel] = append(kept, twinkle{
				peak: seconds + 0.5 + t.rng.Float64(),
				fade: twinkleFadeSeconds,
			})
		}
	}
}

func (t *Twinkle) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	// Time going backwards means the speed was changed, start afresh
	if t.updated && t.lastUpdate > seconds {
		t.updated = false
		for i := range t.twinkles {
			t.twinkles[i] = t.twinkles[i][:0]
		}
	}
	if !t.updated || t.lastUpdate+1 < seconds {
		t.updated = true
		t.lastUpdate = seconds
		t.randomize(seconds)
	}

	if !current.Set {
		return current
	}
	if position < 0 || position >= len(t.twinkles) {
		return model.Some(model.Black)
	}

	list := t.twinkles[position]
	brightness := 0.0
	kept := list[:0]
	for _, tw := range list {
		brightness = math.Max(brightness, tw.brightness(seconds))
		if !tw.stale(seconds) {
			kept = append(kept, tw)
		}
	}
	t.twinkles[position] = kept

	return model.Some(current.Color.Scale(brightness))
}

// Pending is the number of twinkles waiting to fire or fade
func (t *Twinkle) Pending() (count int) {
	for _, list := range t.twinkles {
		count += len(list)
	}
	return count
}
