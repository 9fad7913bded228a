package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	msg := NewMessage("test", "Deep PURPLE | Blue")
	other := NewMessage("test", "Deep PURPLE | Blue")

	assert.NotEqual(t, msg.ID, other.ID)
	assert.Equal(t, "deep purple | blue", msg.Command())
	assert.Equal(t, "Deep PURPLE | Blue", msg.Text)

	cpy := msg.DeepCopy()
	assert.NotSame(t, msg, cpy)
	assert.Equal(t, msg.ID, cpy.ID)
	assert.Equal(t, msg.Source, cpy.Source)
	assert.True(t, msg.Received.Equal(cpy.Received))
}
