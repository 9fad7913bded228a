package ledmachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/model"
)

func pixelsOf(t *testing.T, a alter.Alter, count int) (out []model.RGB) {
	t.Helper()
	md := &alter.Metadata{}
	for i := 0; i < count; i++ {
		out = append(out, a.AlterPixel(0, i, model.Unset, md).Or(model.Black).RGB255())
	}
	return out
}

func repeat(c model.RGB, n int) (out []model.RGB) {
	for i := 0; i < n; i++ {
		out = append(out, c)
	}
	return out
}

var (
	redRGB   = model.RGB{255, 0, 0}
	greenRGB = model.RGB{0, 255, 0}
	blueRGB  = model.RGB{0, 0, 255}
	blackRGB = model.RGB{}
)

func handle(t *testing.T, state *LedState, text string) *MessageContext {
	t.Helper()
	ctx := &MessageContext{}
	warnings := HandleMessage(text, state, false, ctx)
	require.Empty(t, warnings, text)
	return ctx
}

func TestHandleSpeedKeepsEffect(t *testing.T) {
	state := NewLedState(10, 0, nil)

	handle(t, state, "rainbow speed 2")
	assert.Equal(t, 2.0, state.ColorSpeed.Get())
	assert.Equal(t, 1.0, state.PatternSpeed.Get())

	rainbow, isRainbow := state.Main().(alter.Rainbow)
	require.True(t, isRainbow)
	md := &alter.Metadata{}
	at := func(seconds float64) model.RGB {
		return rainbow.AlterPixel(seconds, 0, model.Unset, md).Color.RGB255()
	}

	// Twice as fast, 10.3 seconds in the rainbow has cycled as far as 20.6
	// seconds at normal speed
	assert.InDelta(t, 0.3, rainbow.Getter.Percent(10.3), 1e-9)
	fast := at(10.3)
	reference := alter.Rainbow{Getter: state.colorGetter, Spread: rainbow.Spread}
	assert.Equal(t, reference.AlterPixel(20.6, 0, model.Unset, md).Color.RGB255(), fast)

	before := state.main.Load()
	handle(t, state, "slow")
	assert.Same(t, before, state.main.Load(), "a speed word alone must not rebuild the effect")
	assert.Equal(t, 0.5, state.ColorSpeed.Get())

	// The same rainbow now runs at half speed
	assert.InDelta(t, 0.575, rainbow.Getter.Percent(10.3), 1e-9)
	assert.NotEqual(t, fast, at(10.3))
	assert.Equal(t, fast, at(41.2))
}

func TestHandleNonFiniteSpeed(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "star speed inf")
	handle(t, state, "rainbow speed nan")
	assert.Equal(t, 1.0, state.PatternSpeed.Get())
	assert.Equal(t, 1.0, state.ColorSpeed.Get())
}

func TestHandleSolid(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "green")
	assert.Equal(t, repeat(greenRGB, 10), pixelsOf(t, state.Layers(), 10))
}

func TestHandlePartition(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "offset 0 red | blue")

	want := append(repeat(redRGB, 5), repeat(blueRGB, 5)...)
	assert.Equal(t, want, pixelsOf(t, state.Layers(), 10))
}

func TestHandlePartitionSkipsHidden(t *testing.T) {
	state := NewLedState(10, 2, nil)
	handle(t, state, "offset 0 red | blue")

	// The hidden pixels are outside of every partition and stay unset
	md := &alter.Metadata{}
	for i := 0; i < 2; i++ {
		assert.False(t, state.Layers().AlterPixel(0, i, model.Unset, md).Set)
	}
	want := append(repeat(redRGB, 4), repeat(blueRGB, 4)...)
	assert.Equal(t, want, pixelsOf(t, state.Layers(), 10)[2:])
}

func TestHandlePatternOnly(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "red")
	before := state.main.Load()

	handle(t, state, "carnival fast")
	assert.Same(t, before, state.main.Load())
	assert.NotEqual(t, alter.Nothing{}, state.Pattern())

	// Only a pattern was named so the speed is the pattern's
	assert.Equal(t, 1.5, state.PatternSpeed.Get())
	assert.Equal(t, 1.0, state.ColorSpeed.Get())
}

func TestHandlePatternWord(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "rainbow pattern crawl")
	assert.Equal(t, 0.25, state.PatternSpeed.Get())
	assert.Equal(t, 1.0, state.ColorSpeed.Get())
}

func TestHandleOff(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "twinkle fast")
	require.NotEqual(t, alter.Nothing{}, state.Pattern())

	ctx := handle(t, state, "off")
	assert.True(t, ctx.Reset)
	assert.Equal(t, repeat(blackRGB, 10), pixelsOf(t, state.Layers(), 10))
	assert.Equal(t, alter.Nothing{}, state.Pattern())
	assert.Equal(t, 1.0, state.PatternSpeed.Get())
}

func TestHandleLampOff(t *testing.T) {
	state := NewLedState(10, 0, nil)
	ctx := &MessageContext{}
	HandleMessage("off", state, true, ctx)
	assert.False(t, ctx.Reset)
	assert.Equal(t, alter.Nothing{}, state.Main())
}

func TestHandleReset(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "red sonic")
	require.Equal(t, 2.0, state.ColorSpeed.Get())

	ctx := handle(t, state, "reset")
	assert.False(t, ctx.Reset)
	assert.Equal(t, 1.0, state.ColorSpeed.Get())
	assert.Equal(t, repeat(redRGB, 10), pixelsOf(t, state.Layers(), 10))
}

func TestHandleWarnings(t *testing.T) {
	state := NewLedState(10, 0, nil)
	warnings := HandleMessage("(red | blue", state, false, &MessageContext{})
	assert.NotEmpty(t, warnings)

	warnings = HandleMessage("red offset nowhere", state, false, &MessageContext{})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].String(), "nowhere")
	assert.Equal(t, repeat(redRGB, 10), pixelsOf(t, state.Layers(), 10))
}

func TestTwinkleRange(t *testing.T) {
	lower, upper := twinkleRange("twinkle")
	assert.InDelta(t, 0.15, lower, 1e-9)
	assert.InDelta(t, 0.8071, upper, 1e-4)

	lower, upper = twinkleRange("twinkle 100")
	assert.InDelta(t, 0.9, lower, 1e-9)
	assert.Equal(t, 1.0, upper)

	lower, upper = twinkleRange("twinkle 0")
	assert.Equal(t, 0.0, lower)
	assert.InDelta(t, 0.1, upper, 1e-9)

	// Out of range shares fall back to the default
	lower, _ = twinkleRange("twinkle 400")
	assert.InDelta(t, 0.15, lower, 1e-9)
}

func TestParseSettings(t *testing.T) {
	state := NewLedState(100, 0, nil)

	assert.Nil(t, state.ParseColorSetting("carnival"))
	assert.Nil(t, state.ParsePatternSetting("red"))

	assert.IsType(t, alter.Solid{}, state.ParseColorSetting("blue"))
	assert.IsType(t, alter.Rainbow{}, state.ParseColorSetting("long rainbow"))
	assert.IsType(t, alter.Fade{}, state.ParseColorSetting("red blue"))
	assert.IsType(t, alter.CenteredBar{}, state.ParsePatternSetting("meter"))
	assert.IsType(t, alter.SpeedScale{}, state.ParsePatternSetting("twinkle 30"))

	// "north" needs two colors, otherwise it is a plain solid color
	assert.IsType(t, alter.Solid{}, state.ParseColorSetting("north red"))
	assert.NotNil(t, state.ParseColorSetting("north red blue"))

	rainbow := state.ParseColorSetting("fat rainbow").(alter.Rainbow)
	assert.Equal(t, 25.0, rainbow.Spread)
}

func TestHandleOffsetIsNotOff(t *testing.T) {
	state := NewLedState(10, 0, nil)
	handle(t, state, "red")

	ctx := handle(t, state, "offset 5")
	assert.False(t, ctx.Reset)
	assert.Equal(t, repeat(redRGB, 10), pixelsOf(t, state.Layers(), 10))

	assert.True(t, hasWord("lights off!", "off"))
	assert.False(t, hasWord("offset", "off"))
}
