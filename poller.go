package ledmachine

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

// This module implements a source that regularly polls a web endpoint
// listing recent commands, such as a chat bot relay.  The endpoint returns
// a JSON document of the form {"messages": [{"id": "...", "text": "..."}]}
// and commands already seen are not passed on again

const (
	pollSeenLimit = 1024
)

type pMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type pMessages struct {
	Messages []pMessage `json:"messages"`
}

type Poller struct {
	url    url.URL
	client *http.Client
	msgC   chan<- *model.Message
	errorC chan<- errors.Error

	seen     map[string]struct{}
	seenList []string
}

func NewPoller(endpoint string, msgC chan<- *model.Message, errorC chan<- errors.Error) (poller *Poller, err errors.Error) {
	u, errGo := url.Parse(endpoint)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("url", endpoint).With("stack", stack.Trace().TrimRuntime())
	}
	return &Poller{
		url:    *u,
		client: &http.Client{Timeout: 5 * time.Second},
		msgC:   msgC,
		errorC: errorC,
		seen:   map[string]struct{}{},
	}, nil
}

// checkCommands fetches the commands currently listed by the endpoint
func (poller *Poller) checkCommands() (msgs []pMessage, err errors.Error) {

	switch poller.url.Scheme {
	case "http", "https":
	default:
		errGo := fmt.Errorf("Unknown scheme %s for the command endpoint URI", poller.url.Scheme)
		return nil, errors.Wrap(errGo).With("url", poller.url.String()).With("stack", stack.Trace().TrimRuntime())
	}

	resp, errGo := poller.client.Get(poller.url.String())
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("url", poller.url.String()).With("stack", stack.Trace().TrimRuntime())
	}
	body, errGo := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("url", poller.url.String()).With("stack", stack.Trace().TrimRuntime())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("command endpoint failed").With("url", poller.url.String()).With("status", resp.StatusCode).With("stack", stack.Trace().TrimRuntime())
	}

	listing := &pMessages{}
	if errGo = json.Unmarshal(body, listing); errGo != nil {
		return nil, errors.Wrap(errGo).With("url", poller.url.String()).With("body", string(body)).With("stack", stack.Trace().TrimRuntime())
	}
	return listing.Messages, nil
}

// fresh filters out the commands passed on by earlier polls, only the most
// recent ids are remembered.  Commands without an id are always passed on
func (poller *Poller) fresh(msgs []pMessage) (result []pMessage) {
	for _, msg := range msgs {
		if msg.ID == "" {
			result = append(result, msg)
			continue
		}
		if _, isPresent := poller.seen[msg.ID]; isPresent {
			continue
		}
		poller.seen[msg.ID] = struct{}{}
		poller.seenList = append(poller.seenList, msg.ID)
		result = append(result, msg)
	}
	for len(poller.seenList) > pollSeenLimit {
		delete(poller.seen, poller.seenList[0])
		poller.seenList = poller.seenList[1:]
	}
	return result
}

func (poller *Poller) sendCommands() {
	msgs, err := poller.checkCommands()
	if err != nil {
		go reportError(err, poller.errorC)
		return
	}

	for _, msg := range poller.fresh(msgs) {
		out := model.NewMessage("poll", msg.Text)
		if msg.ID != "" {
			out.ID = msg.ID
		}
		sendMessage(out, poller.msgC, poller.errorC, 750*time.Millisecond)
	}
}

// Run polls once a second until quitC is closed
func (poller *Poller) Run(quitC <-chan struct{}) {

	poll := time.NewTicker(time.Second)
	defer poll.Stop()

	for {
		select {
		case <-poll.C:
			poller.sendCommands()

		case <-quitC:
			return
		}
	}
}
