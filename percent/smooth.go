package percent

import (
	"math"
)

const (
	// MaxSmoothPerSecond is how far a smoothed value may travel in one second
	MaxSmoothPerSecond = 0.8

	// defaultSmoothDelta is the elapsed time assumed for the very first sample
	defaultSmoothDelta = 1.0 / 60.0
)

// Smooth rate limits the inner getter.  It keeps the last value and the
// last time it was asked for, time is expected to move forward and any
// rewind resets the state rather than reusing stale values
type Smooth struct {
	Inner Getter

	seeded      bool
	value       float64
	lastSeconds float64
}

func NewSmooth(inner Getter) (s *Smooth) {
	return &Smooth{Inner: inner}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *Smooth) Percent(seconds float64) float64 {
	if !finite(seconds) {
		return clamp(s.value)
	}
	target := s.Inner.Percent(seconds)
	if !finite(target) {
		return clamp(s.value)
	}

	if !s.seeded || seconds < s.lastSeconds || !finite(s.value) {
		s.seeded = true
		s.value = target
		s.lastSeconds = seconds - defaultSmoothDelta
	}

	step := MaxSmoothPerSecond * (seconds - s.lastSeconds)
	s.lastSeconds = seconds

	diff := target - s.value
	if math.Abs(diff) <= step {
		s.value = target
	} else {
		s.value += math.Copysign(step, diff)
	}
	return clamp(s.value)
}

// LevelSource is implemented by audio meters able to report the current
// loudness and dominant frequency of what they hear
type LevelSource interface {
	CurrentLoudness() (float64, error)
	CurrentFrequency() (float64, error)
}

// LevelHistory is implemented by sources that remember their levels, one
// every measuring period.  RecentLoudness returns up to count of the latest,
// oldest first
type LevelHistory interface {
	RecentLoudness(count int) []float64
}

// relativeWindows weigh how far the current level rises above the quiet
// moments of the last few seconds
var relativeWindows = []struct {
	seconds float64
	weight  float64
}{
	{20, 0.3},
	{10, 0.1},
	{5, 0.2},
	{3, 0.3},
	{1, 0.1},
}

// Loudness converts the level of an audio source into a percentage.  When
// the source is missing or fails the default value is used so the animation
// keeps running.
//
// Sources that keep a history mix in how loud the music is compared to the
// last 20 seconds, so quiet passages still move the lights.  Period is the
// time between levels in that history
type Loudness struct {
	Source  LevelSource
	Ambient float64 // level considered silence
	Full    float64 // level above ambient considered full scale
	Default float64
	Period  float64
}

func (l Loudness) Percent(seconds float64) float64 {
	if l.Source == nil || l.Full <= 0 {
		return l.Default
	}
	level, errGo := l.Source.CurrentLoudness()
	if errGo != nil {
		return l.Default
	}
	volume := clamp((level - l.Ambient) / l.Full)

	history, isHistory := l.Source.(LevelHistory)
	if !isHistory || l.Period <= 0 {
		return volume
	}

	relative := 0.0
	for _, window := range relativeWindows {
		relative += window.weight * l.overSeconds(history, level, window.seconds)
	}
	return volume*volume*0.6 + relative*0.4
}

// overSeconds compares level with the average of the quieter of each pair
// of levels heard within the window
func (l Loudness) overSeconds(history LevelHistory, level float64, seconds float64) float64 {
	count := int(seconds / l.Period)
	if count < 1 {
		count = 1
	}
	levels := history.RecentLoudness(count)

	low := level
	if pairs := len(levels) / 2; pairs != 0 {
		sum := 0.0
		for i := 0; i < pairs; i++ {
			sum += math.Min(levels[i*2], levels[i*2+1])
		}
		low = sum / float64(pairs)
	}
	diff := level - low - l.Ambient
	return clamp(0.3 + diff/(seconds*100+9000))
}
