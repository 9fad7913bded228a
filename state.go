package ledmachine

// This file contains the state of one independently controlled set of lights,
// its color layer, its pattern layer and the speed knobs shared by the effects
// built for it

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/creator"
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

const (
	// DefaultHiddenPixels are the pixels at the start of the strip that are
	// kept dark, they are not visible in the installation
	DefaultHiddenPixels = 21

	solidPatternSize = 30000000000

	starPadding = 300

	// meterHalfWidth is half the width of every bar in the meter pattern
	meterHalfWidth = 25
)

var (
	quickBounce = percent.Bounce{TotalPeriod: 12.0}
	slowDefault = percent.MustReversing(4.0, 10.0*60, 4.0)
)

// alterBox lets a nil free alter be held in an atomic pointer
type alterBox struct {
	alter.Alter
}

// LedState holds the two layers of a set of lights.  Commands replace the
// layers wholesale, the engine reads them on every frame
type LedState struct {
	TotalPixels   int
	HiddenPixels  int
	VirtualPixels int

	// Offsets are the named partition offsets usable in "offset <name>"
	Offsets map[string]int

	ColorSpeed   *percent.Knob
	PatternSpeed *percent.Knob

	colorGetter percent.Getter
	solidGetter percent.Getter

	// level is the optional audio source behind "music" and "meter"
	level percent.LevelSource

	main    atomic.Pointer[alterBox]
	pattern atomic.Pointer[alterBox]

	rng *rand.Rand
}

// NewLedState creates the state for a strip of totalPixels of which the first
// hiddenPixels are never shown.  The color layer starts as a rainbow
func NewLedState(totalPixels int, hiddenPixels int, level percent.LevelSource) (state *LedState) {
	if hiddenPixels < 0 || hiddenPixels > totalPixels {
		hiddenPixels = 0
	}
	virtual := totalPixels - hiddenPixels
	state = &LedState{
		TotalPixels:   totalPixels,
		HiddenPixels:  hiddenPixels,
		VirtualPixels: virtual,
		Offsets: map[string]int{
			"side_half":  49,
			"front_back": 49 + virtual/4,
		},
		ColorSpeed:   percent.NewKnob(1.0),
		PatternSpeed: percent.NewKnob(1.0),
		colorGetter:  percent.MustReversing(2.0, 10.0*60, 2.0),
		solidGetter:  percent.MustReversing(10.0, 15.0*60, 10.0),
		level:        level,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	state.SetMain(state.ParseColorSetting("rainbow"))
	state.SetPattern(alter.Nothing{})
	return state
}

func load(p *atomic.Pointer[alterBox]) alter.Alter {
	if box := p.Load(); box != nil && box.Alter != nil {
		return box.Alter
	}
	return alter.Nothing{}
}

// Main is the color layer
func (state *LedState) Main() alter.Alter {
	return load(&state.main)
}

func (state *LedState) SetMain(a alter.Alter) {
	state.main.Store(&alterBox{a})
}

// Pattern is the layer applied over the colors
func (state *LedState) Pattern() alter.Alter {
	return load(&state.pattern)
}

func (state *LedState) SetPattern(a alter.Alter) {
	state.pattern.Store(&alterBox{a})
}

// Layers is the color layer followed by the pattern layer
func (state *LedState) Layers() alter.Multiplex {
	return alter.Multiplex{state.Main(), state.Pattern()}
}

// Reset puts the speeds back to normal and drops the pattern layer
func (state *LedState) Reset() {
	state.ColorSpeed.Set(1.0)
	state.PatternSpeed.Set(1.0)
	state.SetPattern(alter.Nothing{})
}

// loudness is the smoothed level of the audio source, a missing source
// gives a constant so the effects still move
func (state *LedState) loudness() percent.Getter {
	return percent.NewSmooth(percent.Loudness{
		Source:  state.level,
		Ambient: defaultAmbientLevel,
		Full:    defaultFullLevel,
		Default: 0.5,
		Period:  recordPeriod.Seconds(),
	})
}

func (state *LedState) colorSpeed(inner percent.Getter) percent.Getter {
	return percent.TimeMultiplier{Inner: inner, Rate: state.ColorSpeed}
}

func (state *LedState) patternSpeed(inner percent.Getter) percent.Getter {
	return percent.TimeMultiplier{Inner: inner, Rate: state.PatternSpeed}
}

// ParseColorSetting builds the color effect described by text, or nil when
// text does not describe one.  The state is not changed, the result does
// share the speed knobs of the state
func (state *LedState) ParseColorSetting(text string) alter.Alter {
	colors := ParseColors(text)
	virtual := float64(state.VirtualPixels)

	switch {
	case strings.Contains(text, "north") && len(colors) >= 2:
		return alter.NewNorthernLights(colors, state.VirtualPixels, state.rng)

	case strings.Contains(text, "pixel") && len(colors) >= 2:
		blocks := make([]alter.BlockSpec, 0, len(colors))
		for _, c := range colors {
			blocks = append(blocks, alter.ColorBlock(c, 1))
		}
		return alter.NewBlock(blocks, state.colorSpeed(state.colorGetter), false)

	case strings.Contains(text, "rainbow") || len(colors) >= 2:
		size := virtual / 8
		getter := state.colorGetter
		switch {
		case strings.Contains(text, "double") && strings.Contains(text, "long"):
			size = virtual * 2
		case strings.Contains(text, "long"):
			size = virtual
		case strings.Contains(text, "fat"):
			size = virtual / 4
		case strings.Contains(text, "tiny"):
			size = virtual / 16
		case strings.Contains(text, "solid"):
			size = solidPatternSize
			getter = state.solidGetter
		}
		if strings.Contains(text, "music") {
			getter = percent.Sum{getter, state.loudness()}
		}
		if strings.Contains(text, "rainbow") {
			return alter.Rainbow{Getter: state.colorSpeed(getter), Spread: size}
		}
		return alter.Fade{Getter: state.colorSpeed(getter), Colors: colors, Spread: size}

	case len(colors) == 1:
		return alter.Solid{Color: colors[0]}
	}
	return nil
}

func twinkleRange(text string) (minPercent float64, maxPercent float64) {
	share := 0.5
	if number, isPresent := NumberAfter(text, "twinkle"); isPresent && number >= 0 && number <= 100 {
		share = number / 100.0
	}
	return math.Max(0.0, share*share-0.1), math.Min(1.0, math.Sqrt(share)+0.1)
}

// ParsePatternSetting builds the pattern effect described by text, or nil
func (state *LedState) ParsePatternSetting(text string) alter.Alter {
	virtual := state.VirtualPixels

	switch {
	case strings.Contains(text, "carnival"):
		lit, dark := 5, 3
		switch {
		case strings.Contains(text, "short") || strings.Contains(text, "tiny"):
			lit, dark = 3, 2
		case strings.Contains(text, "long"):
			lit, dark = 10, 6
		}
		return alter.NewBlock(
			[]alter.BlockSpec{alter.ClearBlock(lit), alter.ColorBlock(model.Black, dark)},
			state.patternSpeed(slowDefault), true)

	case strings.Contains(text, "single"):
		return alter.NewBlock(
			[]alter.BlockSpec{alter.ClearBlock(5), alter.ColorBlock(model.Black, virtual)},
			state.patternSpeed(slowDefault), true)

	case strings.Contains(text, "bounce"):
		return alter.NewBlock(
			[]alter.BlockSpec{alter.ClearBlock(5), alter.ColorBlock(model.Black, virtual-5)},
			state.patternSpeed(percent.Multiplier{
				Inner:      quickBounce,
				Multiplier: float64(virtual-5) / float64(virtual),
			}), true)

	case strings.Contains(text, "star"):
		reverse := strings.Contains(text, "reverse")
		return alter.NewStar(state.TotalPixels, starPadding, state.PatternSpeed, reverse, state.rng)

	case strings.Contains(text, "twinkle"):
		minPercent, maxPercent := twinkleRange(text)
		return alter.SpeedScale{
			Alter: alter.NewTwinkle(state.TotalPixels, minPercent, maxPercent, state.rng),
			Rate:  state.PatternSpeed,
		}

	case strings.Contains(text, "meter"):
		return alter.CenteredBar{Getter: state.loudness(), HalfWidth: meterHalfWidth}
	}
	return nil
}

// CreatorSettings are the compiler settings for commands aimed at this state
func (state *LedState) CreatorSettings() creator.Settings {
	return creator.Settings{
		PartitionOffset: state.Offsets["front_back"],
		Offsets:         state.Offsets,
		ParseColor:      state.ParseColorSetting,
		ParsePattern:    state.ParsePatternSetting,
		BlendGetter:     state.colorSpeed(state.colorGetter),
	}
}

func describe(a alter.Alter) string {
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", a)
}
