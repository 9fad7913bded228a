package ledmachine

// This module wires the message sources, the fan out and the animation
// engine together based upon the configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

var (
	logger = logxi.New("ledmachine")
)

const engineQueueSize = 64

func reportError(err errors.Error, errorC chan<- errors.Error) {
	if err == nil {
		return
	}
	select {
	case errorC <- err:
	case <-time.After(20 * time.Millisecond):
		fmt.Fprintln(os.Stderr, err.Error())
	}
}

// sendMessage passes a message from a source to the fan out, giving up after
// the timeout so a stalled engine cannot wedge a source
func sendMessage(msg *model.Message, msgC chan<- *model.Message, errorC chan<- errors.Error, timeout time.Duration) {
	select {
	case msgC <- msg:
	case <-time.After(timeout):
		go reportError(errors.New("command dropped").With("source", msg.Source).With("id", msg.ID).With("stack", stack.Trace().TrimRuntime()), errorC)
	}
}

type Gateway struct {
	Engine *Engine

	// MsgC accepts commands from any source, SubscribeC adds listeners that
	// see every command
	MsgC       chan *model.Message
	SubscribeC chan chan *model.Message
}

// Start builds the engine for the strips given and starts every source the
// configuration names.  Everything stops when quitC is closed
func (gw *Gateway) Start(cfg *Config, strips []Strip, level percent.LevelSource, errorC chan<- errors.Error, quitC <-chan struct{}) (err errors.Error) {

	if err = cfg.Validate(); err != nil {
		return err
	}

	mapping, err := cfg.Mapping(strips)
	if err != nil {
		return err
	}

	gw.MsgC, gw.SubscribeC = startFanOut(quitC)

	// The engine is the first listener of the broadcast, its queue is drained
	// once per frame
	queue := NewMessageQueue(engineQueueSize)
	gw.SubscribeC <- queue.C

	state := NewLedState(mapping.Len(), cfg.HiddenPixels, level)
	for name, offset := range cfg.Offsets {
		state.Offsets[name] = offset
	}

	gw.Engine = NewEngine(state, mapping, queue, cfg.FramePeriod)
	if cfg.Dim > 0 {
		gw.Engine.Dim.Set(cfg.Dim)
	}
	for _, lamp := range cfg.Lamps {
		ranges := make([]alter.Range, 0, len(lamp.Ranges))
		for _, r := range lamp.Ranges {
			ranges = append(ranges, alter.Range{Start: r.Start, Length: r.Length})
		}
		gw.Engine.AddLamp(lamp.Name, ranges)
	}
	if cfg.Initial != "" {
		gw.Engine.Apply(model.NewMessage("config", cfg.Initial))
	}

	go gw.Engine.Run(errorC, quitC)

	return gw.startSources(cfg, errorC, quitC)
}

func (gw *Gateway) startSources(cfg *Config, errorC chan<- errors.Error, quitC <-chan struct{}) (err errors.Error) {
	src := cfg.Sources

	if src.Websocket != "" {
		go NewWebsocketSource(src.Websocket, gw.MsgC, errorC).Run(quitC)
	}
	if src.Redis != "" {
		redisSrc, err := NewRedisSource(src.Redis, src.RedisChannel, gw.MsgC, errorC)
		if err != nil {
			return err
		}
		go redisSrc.Run(quitC)
	}
	if src.Listen != "" {
		go NewCommandServer(src.Listen, gw.MsgC, gw.Engine.Status, errorC).Run(quitC)
	}
	if src.Poll != "" {
		poller, err := NewPoller(src.Poll, gw.MsgC, errorC)
		if err != nil {
			return err
		}
		go poller.Run(quitC)
	}
	if src.Stdin {
		go NewLineSource("stdin", os.Stdin, gw.MsgC, errorC).Run(quitC)
	}
	return nil
}
