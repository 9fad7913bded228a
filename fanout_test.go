package ledmachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TeamNorCal/ledmachine/model"
)

func receive(t *testing.T, msgC <-chan *model.Message) *model.Message {
	t.Helper()
	select {
	case msg := <-msgC:
		return msg
	case <-time.After(2 * time.Second):
		require.Fail(t, "timed out waiting for a message")
	}
	return nil
}

func TestFanOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	quitC := make(chan struct{})
	inC, subC := startFanOut(quitC)

	first := make(chan *model.Message, 1)
	second := make(chan *model.Message, 1)
	subC <- first
	subC <- second

	sent := model.NewMessage("test", "red")
	inC <- sent

	for _, ch := range []chan *model.Message{first, second} {
		msg := receive(t, ch)
		assert.Equal(t, sent.ID, msg.ID)
		assert.Equal(t, "red", msg.Text)
		assert.NotSame(t, sent, msg, "every subscriber gets its own copy")
	}

	// A closed subscriber is dropped and the others carry on
	close(first)
	inC <- model.NewMessage("test", "blue")
	assert.Equal(t, "blue", receive(t, second).Text)

	inC <- model.NewMessage("test", "green")
	assert.Equal(t, "green", receive(t, second).Text)

	close(quitC)
	time.Sleep(10 * time.Millisecond)
}

func TestFanOutSlowSubscriber(t *testing.T) {
	quitC := make(chan struct{})
	defer close(quitC)
	inC, subC := startFanOut(quitC)

	slow := make(chan *model.Message)
	subC <- slow

	inC <- model.NewMessage("test", "missed")
	inC <- model.NewMessage("test", "kept")

	// Wait out the delivery timeout of the first message
	time.Sleep(350 * time.Millisecond)
	// The first message timed out, the subscriber is still attached
	assert.Equal(t, "kept", receive(t, slow).Text)
}
