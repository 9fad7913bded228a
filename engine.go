package ledmachine

// This file contains the animation loop.  Once per frame the commands that
// arrived since the last frame are applied, then every logical pixel is
// computed from the current effects and the strips are shown.
//
// Commands are applied on the loop goroutine between frames so an effect is
// never rebuilt while it is being evaluated, other goroutines only ever see
// the layers through atomic loads

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/parse"
	"github.com/TeamNorCal/ledmachine/percent"
)

const (
	DefaultFramePeriod = time.Millisecond

	// errorReportInterval limits how often failures to show a frame are
	// reported, the loop runs far faster than anyone can read
	errorReportInterval = 5 * time.Second
)

// Queue is drained once per frame
type Queue interface {
	NewMessages() []model.Message
}

// MessageQueue is a Queue fed through a buffered channel, usually by
// subscribing the channel to the fan out
type MessageQueue struct {
	C chan *model.Message
}

func NewMessageQueue(size int) (q *MessageQueue) {
	return &MessageQueue{C: make(chan *model.Message, size)}
}

// Push adds a message without blocking, false means the queue was full
func (q *MessageQueue) Push(msg *model.Message) bool {
	select {
	case q.C <- msg:
		return true
	default:
		return false
	}
}

func (q *MessageQueue) NewMessages() (msgs []model.Message) {
	for {
		select {
		case msg := <-q.C:
			if msg != nil {
				msgs = append(msgs, *msg)
			}
		default:
			return msgs
		}
	}
}

// Lamp is a set of lights with its own state that are overlaid onto a few
// ranges of the main strip, commands mentioning "<name> lamp" go to it
type Lamp struct {
	Name   string
	State  *LedState
	Ranges []alter.Range
}

type Status struct {
	Main         string            `json:"main"`
	Pattern      string            `json:"pattern"`
	Dim          float64           `json:"dim"`
	ColorSpeed   float64           `json:"colorSpeed"`
	PatternSpeed float64           `json:"patternSpeed"`
	Frames       uint64            `json:"frames"`
	Loudness     float64           `json:"loudness,omitempty"`
	Frequency    float64           `json:"frequency,omitempty"`
	Lamps        map[string]string `json:"lamps,omitempty"`
}

type Engine struct {
	State *LedState
	Lamps []*Lamp
	Dim   *percent.Knob

	mapping *Mapping
	queue   Queue
	period  time.Duration
	hide    alter.Alter

	start time.Time
	now   func() time.Time

	frames     atomic.Uint64
	lastReport time.Time
}

// NewEngine creates an engine rendering state onto the mapping.  The hidden
// pixels of the state are always dark
func NewEngine(state *LedState, mapping *Mapping, queue Queue, period time.Duration) (e *Engine) {
	if period <= 0 {
		period = DefaultFramePeriod
	}
	e = &Engine{
		State:   state,
		Dim:     percent.NewKnob(DefaultDim),
		mapping: mapping,
		queue:   queue,
		period:  period,
		now:     time.Now,
	}
	e.start = e.now()

	if state.HiddenPixels > 0 {
		e.hide = alter.NewBlock([]alter.BlockSpec{
			alter.ColorBlock(model.Black, state.HiddenPixels),
			alter.ClearBlock(state.TotalPixels - state.HiddenPixels),
		}, percent.Constant(0), false)
	}
	return e
}

// AddLamp creates a lamp with its own state covering ranges of the strip
func (e *Engine) AddLamp(name string, ranges []alter.Range) (lamp *Lamp) {
	lamp = &Lamp{
		Name:   strings.ToLower(name),
		State:  NewLedState(e.State.TotalPixels, e.State.HiddenPixels, e.State.level),
		Ranges: ranges,
	}
	e.Lamps = append(e.Lamps, lamp)
	return lamp
}

// Apply interprets one command
func (e *Engine) Apply(msg *model.Message) (warnings []parse.Warning) {
	text := msg.Command()
	ctx := &MessageContext{}

	state := e.State
	isLamp := strings.Contains(text, "lamp")
	if isLamp {
		for _, lamp := range e.Lamps {
			if lamp.Name != "" && strings.Contains(text, lamp.Name) {
				state = lamp.State
				break
			}
		}
	}

	warnings = HandleMessage(text, state, isLamp, ctx)

	if level, isPresent := DimLevel(text); isPresent {
		e.Dim.Set(level)
	} else if ctx.Reset && !isLamp {
		e.Dim.Set(DefaultDim)
	}

	for _, w := range warnings {
		logger.Warn("command warning", "id", msg.ID, "text", msg.Text, "warning", w.String())
	}
	logger.Debug("command applied", "id", msg.ID, "source", msg.Source, "main", describe(state.Main()), "pattern", describe(state.Pattern()))
	return warnings
}

// Root is the complete effect for the next frame
func (e *Engine) Root() alter.Alter {
	root := alter.Multiplex{e.State.Main(), e.State.Pattern()}
	if len(e.Lamps) != 0 {
		lamps := make(alter.Partition, 0, len(e.Lamps))
		for _, lamp := range e.Lamps {
			lamps = append(lamps, alter.Region{Alter: lamp.State.Layers(), Ranges: lamp.Ranges})
		}
		root = append(root, lamps)
	}
	if e.hide != nil {
		root = append(root, e.hide)
	}
	return append(root, alter.Dim{Level: e.Dim})
}

// RenderFrame computes every pixel for the time given and shows the strips
func (e *Engine) RenderFrame(seconds float64) (err errors.Error) {
	root := e.Root()
	md := &alter.Metadata{Frame: e.frames.Add(1)}
	for i := 0; i < e.mapping.Len(); i++ {
		px := root.AlterPixel(seconds, i, model.Unset, md)
		e.mapping.Set(i, px.Or(model.Black).RGB255())
	}
	return e.mapping.Show()
}

func (e *Engine) step(errorC chan<- errors.Error) {
	if e.queue != nil {
		for _, msg := range e.queue.NewMessages() {
			e.Apply(&msg)
		}
	}

	now := e.now()
	if err := e.RenderFrame(now.Sub(e.start).Seconds()); err != nil {
		if now.Sub(e.lastReport) >= errorReportInterval {
			e.lastReport = now
			reportError(err, errorC)
		}
	}
}

// Run renders frames until quitC is closed
func (e *Engine) Run(errorC chan<- errors.Error, quitC <-chan struct{}) {
	defer logger.Debug("engine stopped")

	tick := time.NewTicker(e.period)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			e.step(errorC)
		case <-quitC:
			return
		}
	}
}

// Status can be called from any goroutine
func (e *Engine) Status() (status Status) {
	status = Status{
		Main:         describe(e.State.Main()),
		Pattern:      describe(e.State.Pattern()),
		Dim:          e.Dim.Get(),
		ColorSpeed:   e.State.ColorSpeed.Get(),
		PatternSpeed: e.State.PatternSpeed.Get(),
		Frames:       e.frames.Load(),
	}
	// What the meter hears is reported while it works
	if level := e.State.level; level != nil {
		if loudness, errGo := level.CurrentLoudness(); errGo == nil {
			status.Loudness = loudness
		}
		if frequency, errGo := level.CurrentFrequency(); errGo == nil {
			status.Frequency = frequency
		}
	}
	if len(e.Lamps) != 0 {
		status.Lamps = make(map[string]string, len(e.Lamps))
		for _, lamp := range e.Lamps {
			status.Lamps[lamp.Name] = describe(lamp.State.Main())
		}
	}
	return status
}
