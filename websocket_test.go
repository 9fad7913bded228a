package ledmachine

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TeamNorCal/ledmachine/model"
)

func TestExtractText(t *testing.T) {
	cases := map[string]string{
		"  red | blue \n":                                     "red | blue",
		`{"text": "rainbow fast"}`:                            "rainbow fast",
		`{"type": "message", "text": "twinkle"}`:              "twinkle",
		`{"type": "presence_change", "text": "twinkle"}`:      "",
		`{"type": "message", "subtype": "edit", "text": "x"}`: "",
		`{"event": {"type": "message", "text": " green "}}`:   "green",
		`{"event": {"type": "reaction_added"}}`:               "",
		`{not json`:                                           "{not json",
		``:                                                    "",
	}
	for payload, want := range cases {
		assert.Equal(t, want, extractText([]byte(payload)), payload)
	}
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, minBackoff, nextBackoff(0))
	assert.Equal(t, 2*minBackoff, nextBackoff(minBackoff))

	backoff := time.Duration(0)
	for i := 0; i < 20; i++ {
		backoff = nextBackoff(backoff)
		assert.LessOrEqual(t, backoff, maxBackoff)
	}
	assert.Equal(t, maxBackoff, backoff)
}

func TestWebsocketSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, errGo := upgrader.Upgrade(w, r, nil)
		if errGo != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "message", "subtype": "bot_message", "text": "ignored"}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte("ignored"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "message", "text": "red | blue"}`))
		// Hold the connection open until the client goes away
		conn.ReadMessage()
	}))
	defer server.Close()

	msgC := make(chan *model.Message, 4)
	errorC := make(chan errors.Error, 4)
	quitC := make(chan struct{})
	doneC := make(chan struct{})

	src := NewWebsocketSource("ws"+strings.TrimPrefix(server.URL, "http"), msgC, errorC)
	go func() {
		defer close(doneC)
		src.Run(quitC)
	}()

	msg := receive(t, msgC)
	assert.Equal(t, "red | blue", msg.Text)
	assert.Equal(t, "websocket", msg.Source)

	close(quitC)
	select {
	case <-doneC:
	case <-time.After(2 * time.Second):
		require.Fail(t, "websocket source did not stop")
	}
	assert.Empty(t, msgC)
}
