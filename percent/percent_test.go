package percent

import (
	"math"
	"testing"

	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestReversingRejectsBadPeriods(t *testing.T) {
	_, err := NewReversing(2, 601, 2)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "direction period")

	_, err = NewReversing(2, 600, 3)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "reverse period")

	_, err = NewReversing(0, 600, 2)
	require.NotNil(t, err)

	r, err := NewReversing(2, 600, 2)
	require.Nil(t, err)
	require.NotNil(t, r)
}

func TestReversingRange(t *testing.T) {
	r := MustReversing(2, 600, 2)
	rapid.Check(t, func(t *rapid.T) {
		seconds := rapid.Float64Range(-1e6, 1e6).Draw(t, "seconds")
		p := r.Percent(seconds)
		if p < 0 || p > 1 {
			t.Fatalf("Percent(%v) = %v", seconds, p)
		}
	})
}

func TestReversingDirection(t *testing.T) {
	r := MustReversing(2, 600, 2)

	// Well inside the forward half the ramp climbs
	assert.InDelta(t, 0.25, r.Percent(100.5), 1e-9)
	assert.InDelta(t, 0.5, r.Percent(101), 1e-9)

	// Well inside the backward half it runs the other way
	assert.InDelta(t, 0.75, r.Percent(700.5), 1e-9)
	assert.InDelta(t, 0.5, r.Percent(701), 1e-9)

	// At the start of the cycle the parabola sits at its peak
	assert.InDelta(t, 0.0, r.Percent(0), 1e-9)
	assert.InDelta(t, 0.75, r.Percent(1), 1e-9)
}

func TestBounce(t *testing.T) {
	b := Bounce{TotalPeriod: 12}
	assert.InDelta(t, 0.0, b.Percent(0), 1e-9)
	assert.InDelta(t, 0.5, b.Percent(3), 1e-9)
	assert.InDelta(t, 1.0, b.Percent(6), 1e-9)
	assert.InDelta(t, 0.5, b.Percent(9), 1e-9)
	assert.InDelta(t, 0.0, b.Percent(12), 1e-9)
	assert.Equal(t, 0.0, Bounce{}.Percent(5))
}

func TestSumAndMultiplierWrap(t *testing.T) {
	s := Sum{Constant(0.75), Constant(0.5)}
	assert.InDelta(t, 0.25, s.Percent(0), 1e-9)

	m := Multiplier{Inner: Constant(0.4), Multiplier: 3}
	assert.InDelta(t, 0.2, m.Percent(0), 1e-9)
}

func TestTimeMultiplierFollowsKnob(t *testing.T) {
	knob := NewKnob(1)
	tm := TimeMultiplier{Inner: GetterFunc(func(seconds float64) float64 { return seconds }), Rate: knob}

	assert.Equal(t, 10.0, tm.Percent(10))
	knob.Set(2)
	assert.Equal(t, 20.0, tm.Percent(10))
	knob.Set(0.5)
	assert.Equal(t, 5.0, tm.Percent(10))
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(Constant(0.2))
	assert.Equal(t, 0.2, h.Percent(0))
	h.Set(Constant(0.7))
	assert.Equal(t, 0.7, h.Percent(0))
	assert.Equal(t, 0.0, (&Holder{}).Percent(0))
}

func TestSmoothRateLimits(t *testing.T) {
	target := NewKnob(0)
	s := NewSmooth(target)

	// First sample seeds straight to the target
	assert.Equal(t, 0.0, s.Percent(100))

	target.Set(1)
	assert.InDelta(t, MaxSmoothPerSecond*0.5, s.Percent(100.5), 1e-9)
	assert.InDelta(t, 1.0, s.Percent(110), 1e-9)

	// Rewinding time resets instead of moving from stale state
	target.Set(0.3)
	assert.InDelta(t, 0.3, s.Percent(50), 1e-9)
}

func TestSmoothIgnoresNonFiniteTime(t *testing.T) {
	target := NewKnob(0.7)
	s := NewSmooth(target)
	assert.InDelta(t, 0.7, s.Percent(1), 1e-9)

	speed := NewKnob(1)
	scaled := TimeMultiplier{Inner: s, Rate: speed}

	// Overflowing time is skipped, the smoothed value carries on afterwards
	speed.Set(math.MaxFloat64)
	assert.InDelta(t, 0.7, scaled.Percent(2), 1e-9)
	assert.InDelta(t, 0.7, s.Percent(math.NaN()), 1e-9)

	speed.Set(1)
	for seconds := 2.0; seconds < 4; seconds += 0.1 {
		assert.InDelta(t, 0.7, scaled.Percent(seconds), 1e-9)
	}
}

func TestKnobIgnoresNonFinite(t *testing.T) {
	knob := NewKnob(2)
	knob.Set(math.NaN())
	knob.Set(math.Inf(1))
	knob.Set(math.Inf(-1))
	assert.Equal(t, 2.0, knob.Get())
}

type fakeLevels struct {
	level float64
	err   error
}

func (f *fakeLevels) CurrentLoudness() (float64, error)  { return f.level, f.err }
func (f *fakeLevels) CurrentFrequency() (float64, error) { return 0, f.err }

func TestLoudnessDegrades(t *testing.T) {
	src := &fakeLevels{level: 11600}
	l := Loudness{Source: src, Ambient: 1600, Full: 20000, Default: 0.1}
	assert.InDelta(t, 0.5, l.Percent(0), 1e-9)

	src.level = 1e9
	assert.Equal(t, 1.0, l.Percent(0))

	src.err = errors.New("meter unplugged")
	assert.Equal(t, 0.1, l.Percent(0))

	assert.Equal(t, 0.1, Loudness{Default: 0.1}.Percent(0))
}
