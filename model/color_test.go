package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func genColor(t *rapid.T, label string) Color {
	c, err := NewColor(
		rapid.Float64Range(0, 1).Draw(t, label+"-r"),
		rapid.Float64Range(0, 1).Draw(t, label+"-g"),
		rapid.Float64Range(0, 1).Draw(t, label+"-b"),
	)
	if err != nil {
		t.Fatalf("generated color rejected: %s", err.Error())
	}
	return c
}

func TestLerpIdentities(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genColor(t, "c")
		other := genColor(t, "other")
		p := rapid.Float64Range(0, 1).Draw(t, "p")

		if got := c.Lerp(c, p); got != c {
			t.Fatalf("c.Lerp(c, %v) = %v, want %v", p, got, c)
		}
		if got := c.Lerp(other, 0); got != c {
			t.Fatalf("c.Lerp(other, 0) = %v, want %v", got, c)
		}
		if got := c.Lerp(other, 1); got != other {
			t.Fatalf("c.Lerp(other, 1) = %v, want %v", got, other)
		}
	})
}

func TestLerpStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genColor(t, "c")
		other := genColor(t, "other")
		p := rapid.Float64Range(0, 1).Draw(t, "p")

		got := c.Lerp(other, p)
		if _, err := NewColor(got.R(), got.G(), got.B()); err != nil {
			t.Fatalf("lerp left the unit cube: %v", got)
		}
	})
}

func TestNewColorRange(t *testing.T) {
	_, err := NewColor(0.5, 1.2, 0)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = NewColor(-0.1, 0, 0)
	require.NotNil(t, err)

	c, err := NewColor(1, 0, 0.25)
	require.Nil(t, err)
	assert.Equal(t, 1.0, c.R())
	assert.Equal(t, 0.25, c.B())
}

func TestScaleClamps(t *testing.T) {
	c := FromBytes(200, 100, 50)
	assert.Equal(t, White, White.Scale(3))
	assert.Equal(t, Black, c.Scale(-1))
	assert.InDelta(t, 100.0/255.0, c.Scale(0.5).R(), 1e-9)
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff0000")
	require.Nil(t, err)
	assert.Equal(t, RGB{255, 0, 0}, c.RGB255())

	c, err = ParseHex("#0f0")
	require.Nil(t, err)
	assert.Equal(t, RGB{0, 255, 0}, c.RGB255())

	c, err = ParseHex("#A52A17")
	require.Nil(t, err)
	assert.Equal(t, RGB{165, 42, 23}, c.RGB255())

	_, err = ParseHex("#12345")
	assert.NotNil(t, err)

	_, err = ParseHex("#zzzzzz")
	assert.NotNil(t, err)
}

func TestBytesRoundTrip(t *testing.T) {
	for _, rgb := range []RGB{{200, 100, 50}, {0, 0, 0}, {255, 255, 255}} {
		c := FromBytes(rgb.R, rgb.G, rgb.B)
		assert.Equal(t, rgb, c.RGB255())
		assert.Equal(t, c, From24Bit(uint32(rgb.R)<<16|uint32(rgb.G)<<8|uint32(rgb.B)))
	}
}

func TestPixelOr(t *testing.T) {
	red := FromBytes(255, 0, 0)
	assert.Equal(t, red, Some(red).Or(Black))
	assert.Equal(t, Black, Unset.Or(Black))
}
