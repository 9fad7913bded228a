package ledmachine

import (
	"strings"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/creator"
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/parse"
)

// MessageContext carries what one command did back to the caller
type MessageContext struct {
	// Reset is set when the command switched the lights off
	Reset bool
}

// HandleMessage applies one lower cased command to state.  A command that
// describes colors replaces the color layer, one that only describes a
// pattern replaces the pattern layer.  Speed words then adjust the pattern
// knob when only a pattern was named or the word "pattern" appears, and the
// color knob otherwise
func HandleMessage(text string, state *LedState, isLamp bool, ctx *MessageContext) (warnings []parse.Warning) {
	c, warnings := creator.FromText(text, state.CreatorSettings())

	// "offset" must not switch the lights off
	isOff := hasWord(text, "off")

	colorPresent := c != nil && c.Data().HasColor
	patternPresent := c != nil && c.Data().HasPattern

	switch {
	case colorPresent:
		state.SetMain(c.Create(state.HiddenPixels, state.VirtualPixels, state.TotalPixels, state.HiddenPixels))
	case patternPresent:
		state.SetPattern(c.Create(state.HiddenPixels, state.VirtualPixels, state.TotalPixels, state.HiddenPixels))
	case isOff && isLamp:
		state.SetMain(alter.Nothing{})
	case isOff:
		ctx.Reset = true
		state.SetMain(alter.Solid{Color: model.Black})
	}

	if ctx.Reset || strings.Contains(text, "reset") {
		state.Reset()
	}

	if speed, isPresent := SpeedMultiplier(text); isPresent {
		if (!colorPresent && patternPresent) || strings.Contains(text, "pattern") {
			state.PatternSpeed.Set(speed)
		} else {
			state.ColorSpeed.Set(speed)
		}
	}
	return warnings
}
