// Package percent contains the signal layer of the effect engine, getters
// producing a value in [0,1] for a point in time together with combinators
// that sum, scale, dilate and smooth them.
package percent

import (
	"math"
	"sync/atomic"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// Getter is implemented by anything that maps seconds onto a percentage
type Getter interface {
	Percent(seconds float64) float64
}

// GetterFunc adapts a plain function to the Getter interface
type GetterFunc func(seconds float64) float64

func (f GetterFunc) Percent(seconds float64) float64 {
	return f(seconds)
}

// wrap folds any value into [0,1)
func wrap(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v - math.Floor(v)
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

// Reversing ramps from 0 to 1 once every period, flipping direction every
// direction period.  Around each flip the ramp eases through a parabola that
// lasts reverse period so the motion slows, stops and comes back
type Reversing struct {
	period          float64
	directionPeriod float64
	reversePeriod   float64
}

// NewReversing validates that both the direction and reverse periods are
// multiples of period
func NewReversing(period float64, directionPeriod float64, reversePeriod float64) (r *Reversing, err errors.Error) {
	if period <= 0 || directionPeriod <= 0 || reversePeriod <= 0 {
		return nil, errors.New("reversing periods must be positive").With("period", period).
			With("direction_period", directionPeriod).With("reverse_period", reversePeriod).With("stack", stack.Trace().TrimRuntime())
	}
	if math.Mod(directionPeriod, period) != 0 {
		return nil, errors.New("the direction period must be a multiple of period").With("period", period).
			With("direction_period", directionPeriod).With("stack", stack.Trace().TrimRuntime())
	}
	if math.Mod(reversePeriod, period) != 0 {
		return nil, errors.New("the reverse period must be a multiple of period").With("period", period).
			With("reverse_period", reversePeriod).With("stack", stack.Trace().TrimRuntime())
	}
	return &Reversing{
		period:          period,
		directionPeriod: directionPeriod,
		reversePeriod:   reversePeriod,
	}, nil
}

// MustReversing is used for the package level defaults where the periods are
// known to be valid
func MustReversing(period float64, directionPeriod float64, reversePeriod float64) (r *Reversing) {
	r, err := NewReversing(period, directionPeriod, reversePeriod)
	if err != nil {
		panic(err.Error())
	}
	return r
}

func (r *Reversing) Percent(seconds float64) float64 {
	spot := math.Mod(seconds, r.directionPeriod*2)
	if spot < 0 {
		spot += r.directionPeriod * 2
	}
	percent := wrap(seconds / r.period)

	a := r.period / r.reversePeriod
	height := r.reversePeriod / 4 / r.period
	switch {
	case spot <= r.reversePeriod:
		x := (spot - r.reversePeriod/2) / r.period
		percent = a*x*x + 1 - height
	case r.directionPeriod <= spot && spot <= r.directionPeriod+r.reversePeriod:
		x := (spot - r.directionPeriod - r.reversePeriod/2) / r.period
		percent = 1 - (a*x*x + 1 - height)
	case spot > r.directionPeriod+r.period:
		percent = -percent
	}
	return wrap(percent)
}

// Bounce is a triangle wave going 0 -> 1 -> 0 over the total period
type Bounce struct {
	TotalPeriod float64
}

func (b Bounce) Percent(seconds float64) float64 {
	if b.TotalPeriod <= 0 {
		return 0
	}
	p := wrap(seconds / b.TotalPeriod)
	return 1 - math.Abs(2*p-1)
}

// Constant always returns the same value
type Constant float64

func (c Constant) Percent(seconds float64) float64 {
	return float64(c)
}

// Sum adds its children together, wrapping at 1
type Sum []Getter

func (s Sum) Percent(seconds float64) float64 {
	total := 0.0
	for _, getter := range s {
		total += getter.Percent(seconds)
	}
	return wrap(total)
}

// Multiplier scales the inner getter, wrapping at 1
type Multiplier struct {
	Inner      Getter
	Multiplier float64
}

func (m Multiplier) Percent(seconds float64) float64 {
	return wrap(m.Inner.Percent(seconds) * m.Multiplier)
}

// Holder allows the getter used by already built effects to be replaced
type Holder struct {
	getter atomic.Pointer[getterBox]
}

type getterBox struct {
	Getter
}

func NewHolder(getter Getter) (h *Holder) {
	h = &Holder{}
	h.Set(getter)
	return h
}

func (h *Holder) Set(getter Getter) {
	h.getter.Store(&getterBox{getter})
}

func (h *Holder) Percent(seconds float64) float64 {
	box := h.getter.Load()
	if box == nil || box.Getter == nil {
		return 0
	}
	return box.Getter.Percent(seconds)
}

// Knob is a live value shared between the command handler and every effect
// built while it exists, for example the color speed or the global dim level
type Knob struct {
	bits atomic.Uint64
}

func NewKnob(value float64) (k *Knob) {
	k = &Knob{}
	k.Set(value)
	return k
}

// Set ignores values that are not finite
func (k *Knob) Set(value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	k.bits.Store(math.Float64bits(value))
}

func (k *Knob) Get() float64 {
	return math.Float64frombits(k.bits.Load())
}

// Percent lets a knob be used directly wherever a getter is expected
func (k *Knob) Percent(seconds float64) float64 {
	return k.Get()
}

// TimeMultiplier dilates time for the inner getter by the live rate held in
// a knob, so speed commands affect effects that have already been built
type TimeMultiplier struct {
	Inner Getter
	Rate  *Knob
}

func (tm TimeMultiplier) Percent(seconds float64) float64 {
	return tm.Inner.Percent(seconds * tm.Rate.Get())
}
