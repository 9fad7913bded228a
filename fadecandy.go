package ledmachine

// This file contains a strip that is displayed by sending Open Pixel Control
// messages to a fadecandy server.  Frames identical to the last one sent are
// skipped, and a lost connection is retried at most once a second

import (
	"bytes"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/cnf/structhash"

	"github.com/kellydunn/go-opc"

	"github.com/TeamNorCal/ledmachine/model"
)

const (
	opcRetryInterval = time.Second
)

type opcFrame struct {
	Channel uint8
	Pixels  []model.RGB
}

type OPCStrip struct {
	server  string
	channel uint8
	pixels  []model.RGB

	client    *opc.Client
	connected bool
	lastTry   time.Time
	last      []byte
}

// NewOPCStrip creates a strip of count pixels sent on an OPC channel of the
// server, the connection is made on the first Show
func NewOPCStrip(server string, channel uint8, count int) (strip *OPCStrip) {
	return &OPCStrip{
		server:  server,
		channel: channel,
		pixels:  make([]model.RGB, count),
		client:  opc.NewClient(),
	}
}

func (strip *OPCStrip) Pixels() []model.RGB {
	return strip.pixels
}

func (strip *OPCStrip) connect() (err errors.Error) {
	if strip.connected {
		return nil
	}
	if time.Since(strip.lastTry) < opcRetryInterval {
		return nil
	}
	strip.lastTry = time.Now()

	if errGo := strip.client.Connect("tcp", strip.server); errGo != nil {
		return errors.Wrap(errGo).With("url", strip.server).With("stack", stack.Trace().TrimRuntime())
	}
	strip.connected = true
	strip.last = nil
	logger.Info("connected to fadecandy", "url", strip.server, "channel", strip.channel)
	return nil
}

func (strip *OPCStrip) message() (m *opc.Message) {
	m = opc.NewMessage(strip.channel)
	m.SetLength(uint16(len(strip.pixels) * 3))
	for i, px := range strip.pixels {
		m.SetPixelColor(i, px.R, px.G, px.B)
	}
	return m
}

// Show sends the pixels when they differ from the last frame sent
func (strip *OPCStrip) Show() (err errors.Error) {
	if err = strip.connect(); err != nil {
		return err
	}
	if !strip.connected {
		return nil
	}

	hash := structhash.Md5(opcFrame{Channel: strip.channel, Pixels: strip.pixels}, 1)
	if bytes.Equal(strip.last, hash) {
		return nil
	}

	if errGo := strip.client.Send(strip.message()); errGo != nil {
		strip.connected = false
		return errors.Wrap(errGo).With("url", strip.server).With("channel", strip.channel).With("stack", stack.Trace().TrimRuntime())
	}
	strip.last = hash
	return nil
}
