package ledmachine

// This module implements a chat source that reads commands from a websocket.
// Frames may carry the command as plain text or as JSON with a text field,
// chat event envelopes of the form {"event": {"type": "message", "text": ...}}
// are unwrapped.  A lost connection is redialed with an exponential backoff

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/gorilla/websocket"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 60 * time.Second
)

type chatEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Text    string `json:"text"`
}

type chatEnvelope struct {
	chatEvent
	Event *chatEvent `json:"event"`
}

// extractText pulls the command out of a frame, an empty result means the
// frame did not carry one
func extractText(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	envelope := &chatEnvelope{}
	if errGo := json.Unmarshal([]byte(trimmed), envelope); errGo != nil {
		return trimmed
	}
	event := envelope.chatEvent
	if envelope.Event != nil {
		event = *envelope.Event
	}
	// Edits, joins and bot chatter carry a subtype and are not commands
	if event.Subtype != "" || (event.Type != "" && event.Type != "message") {
		return ""
	}
	return strings.TrimSpace(event.Text)
}

// nextBackoff doubles the delay up to the limit
func nextBackoff(current time.Duration) time.Duration {
	if current < minBackoff {
		return minBackoff
	}
	current *= 2
	if current > maxBackoff {
		return maxBackoff
	}
	return current
}

type WebsocketSource struct {
	url    string
	dialer *websocket.Dialer
	msgC   chan<- *model.Message
	errorC chan<- errors.Error
}

func NewWebsocketSource(url string, msgC chan<- *model.Message, errorC chan<- errors.Error) (src *WebsocketSource) {
	return &WebsocketSource{
		url:    url,
		dialer: websocket.DefaultDialer,
		msgC:   msgC,
		errorC: errorC,
	}
}

// read passes on commands until the connection fails or quitC is closed,
// connected reports whether any frame was read
func (src *WebsocketSource) read(conn *websocket.Conn, quitC <-chan struct{}) (connected bool, err errors.Error) {
	doneC := make(chan struct{})
	defer close(doneC)

	// Closing the connection is the only way to interrupt a blocked read
	go func() {
		select {
		case <-quitC:
			conn.Close()
		case <-doneC:
		}
	}()

	for {
		kind, payload, errGo := conn.ReadMessage()
		if errGo != nil {
			select {
			case <-quitC:
				return connected, nil
			default:
			}
			return connected, errors.Wrap(errGo).With("url", src.url).With("stack", stack.Trace().TrimRuntime())
		}
		connected = true
		if kind != websocket.TextMessage {
			continue
		}
		if text := extractText(payload); text != "" {
			sendMessage(model.NewMessage("websocket", text), src.msgC, src.errorC, time.Second)
		}
	}
}

// Run keeps a connection open until quitC is closed
func (src *WebsocketSource) Run(quitC <-chan struct{}) {
	defer logger.Debug("websocket source stopped", "url", src.url)

	backoff := time.Duration(0)
	for {
		conn, _, errGo := src.dialer.Dial(src.url, nil)
		if errGo == nil {
			logger.Info("websocket connected", "url", src.url)
			connected, err := src.read(conn, quitC)
			conn.Close()
			if connected {
				backoff = 0
			}
			if err != nil {
				go reportError(err, src.errorC)
			}
		} else {
			go reportError(errors.Wrap(errGo).With("url", src.url).With("stack", stack.Trace().TrimRuntime()), src.errorC)
		}

		backoff = nextBackoff(backoff)
		select {
		case <-quitC:
			return
		case <-time.After(backoff):
		}
	}
}
