package ledmachine

import (
	"time"

	"github.com/TeamNorCal/ledmachine/model"
)

type Subs struct {
	subs []chan *model.Message
}

// startFanOut implement a broadcast mechanisim for accepting command messages
// from any of the sources and relaying them to subscribers.  The function
// returns a single channel to which messages get sent and, a channel that can
// be used to add listeners.  Subscribers that cannot take a message within
// the timeout miss it, subscribers whose channel was closed are dropped
func startFanOut(quitC <-chan struct{}) (inC chan *model.Message, subC chan chan *model.Message) {

	inC = make(chan *model.Message, 1)
	subC = make(chan chan *model.Message, 1)

	go func(quitC <-chan struct{}) {
		defer logger.Debug("fanout stopped")

		subs := &Subs{subs: []chan *model.Message{}}
		for {
			select {
			case <-quitC:
				return
			case sub := <-subC:
				if nil != sub {
					subs.subs = append(subs.subs, sub)
					logger.Debug("subscription added", "subscribers", len(subs.subs))
				}
			case msg := <-inC:
				if nil == msg {
					continue
				}
				logger.Debug("command received", "source", msg.Source, "text", msg.Text, "subscribers", len(subs.subs))

				// Filtering in place, https://github.com/golang/go/wiki/SliceTricks#filtering-without-allocating
				newSubs := subs.subs[:0]
				for _, ch := range subs.subs {
					if deliver(ch, msg.DeepCopy()) {
						newSubs = append(newSubs, ch)
					}
				}
				subs.subs = newSubs
			}
		}
	}(quitC)

	return inC, subC
}

// deliver reports false only when the subscriber has gone away
func deliver(ch chan *model.Message, msg *model.Message) (alive bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("subscription dropped failed to send", "recovered", r)
			alive = false
		}
	}()
	select {
	case ch <- msg:
	case <-time.After(250 * time.Millisecond):
		logger.Warn("subscription failed to send", "id", msg.ID)
	}
	return true
}
