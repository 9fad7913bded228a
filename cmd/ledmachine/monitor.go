package main

import (
	"github.com/TeamNorCal/ledmachine/model"
)

// This file implements a monitor that subscribe to and displays
// the commands from every source using event subscription

func runMonitoring(subscribeC chan chan *model.Message, quitC <-chan struct{}) {

	msgC := make(chan *model.Message, 1)
	subscribeC <- msgC

	for {
		select {
		case msg := <-msgC:
			if msg != nil {
				logger.Debug("command", "id", msg.ID, "source", msg.Source, "text", msg.Text, "received", msg.Received)
			}
		case <-quitC:
			return
		}
	}
}
