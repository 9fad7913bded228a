package main

// This file implements a simulator that draws the strip inside a terminal
// and accepts commands typed at a prompt on the bottom line, it runs the
// same engine and sources as the ledmachine command without any hardware

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-stack/stack"
	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
	"github.com/karlmutch/errors"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/TeamNorCal/ledmachine"
	"github.com/TeamNorCal/ledmachine/model"
)

var (
	logger logxi.Logger

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")
	logFile = flag.String("log", "", "A file receiving the simulator log, the terminal is used for the strip")
	pixels  = flag.Int("pixels", 450, "The number of pixels on the simulated strip")
	hidden  = flag.Int("hidden", ledmachine.DefaultHiddenPixels, "The number of pixels at the start of the strip that are always dark")
	initial = flag.String("initial", "rainbow", "A command applied at startup")
	listen  = flag.String("listen", "", "The address on which commands can be posted over HTTP, for example :8080")
	frame   = flag.Duration("frame", 40*time.Millisecond, "The time between frames drawn on the terminal")
)

const prompt = "> "

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       terminal LED strip simulator (ledmachine)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Type commands at the prompt and press enter, escape or ctrl-c quits.")
}

func init() {
	flag.Usage = usage
}

// TerminalStrip draws every pixel as a colored block, wrapping onto as many
// rows as the terminal needs and leaving the last row for the prompt
type TerminalStrip struct {
	screen tcell.Screen
	pixels []model.RGB
}

func NewTerminalStrip(screen tcell.Screen, count int) (strip *TerminalStrip) {
	return &TerminalStrip{
		screen: screen,
		pixels: make([]model.RGB, count),
	}
}

func (strip *TerminalStrip) Pixels() []model.RGB {
	return strip.pixels
}

func (strip *TerminalStrip) Show() (err errors.Error) {
	width, height := strip.screen.Size()
	if width <= 0 || height <= 1 {
		return errors.New("terminal too small").With("width", width).With("height", height).With("stack", stack.Trace().TrimRuntime())
	}
	for i, px := range strip.pixels {
		x, y := i%width, i/width
		if y >= height-1 {
			break
		}
		color := tcell.NewRGBColor(int32(px.R), int32(px.G), int32(px.B))
		strip.screen.SetContent(x, y, '█', nil, tcell.StyleDefault.Foreground(color))
	}
	strip.screen.Show()
	return nil
}

// promptLine holds the command being typed
type promptLine struct {
	text []rune
	sync.Mutex
}

func (p *promptLine) draw(screen tcell.Screen) {
	p.Lock()
	defer p.Unlock()

	width, height := screen.Size()
	line := []rune(prompt + string(p.text))
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		screen.SetContent(x, height-1, r, nil, tcell.StyleDefault)
	}
	screen.ShowCursor(len(line), height-1)
	screen.Show()
}

func (p *promptLine) take() (text string) {
	p.Lock()
	defer p.Unlock()
	text = string(p.text)
	p.text = p.text[:0]
	return text
}

func (p *promptLine) add(r rune) {
	p.Lock()
	defer p.Unlock()
	p.text = append(p.text, r)
}

func (p *promptLine) backspace() {
	p.Lock()
	defer p.Unlock()
	if len(p.text) != 0 {
		p.text = p.text[:len(p.text)-1]
	}
}

func logWriter() (w io.Writer, err errors.Error) {
	if *logFile == "" {
		return ioutil.Discard, nil
	}
	f, errGo := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("file", *logFile).With("stack", stack.Trace().TrimRuntime())
	}
	return f, nil
}

func main() {

	if !flag.Parsed() {
		envflag.Parse()
	}

	w, err := logWriter()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	logger = logxi.NewLogger(logxi.NewConcurrentWriter(w), "simulator")
	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	if err = run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
}

func run() (err errors.Error) {
	screen, errGo := tcell.NewScreen()
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = screen.Init(); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	defer screen.Fini()

	cfg := ledmachine.DefaultConfig()
	cfg.Strips = []ledmachine.StripConfig{{Pixels: *pixels}}
	cfg.HiddenPixels = *hidden
	cfg.Initial = *initial
	cfg.FramePeriod = *frame
	cfg.Sources.Listen = *listen

	quitC := make(chan struct{})
	defer close(quitC)

	errorC := make(chan errors.Error, 8)
	go func() {
		for {
			select {
			case err := <-errorC:
				if err != nil {
					logger.Warn("failure", "error", err.Error())
				}
			case <-quitC:
				return
			}
		}
	}()

	strip := NewTerminalStrip(screen, cfg.Pixels())
	gw := &ledmachine.Gateway{}
	if err = gw.Start(cfg, []ledmachine.Strip{strip}, nil, errorC, quitC); err != nil {
		return err
	}
	logger.Info("started", "pixels", cfg.Pixels())

	line := &promptLine{}
	line.draw(screen)

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyEnter:
				if text := line.take(); text != "" {
					msg := model.NewMessage("simulator", text)
					logger.Debug("command", "id", msg.ID, "text", msg.Text)
					select {
					case gw.MsgC <- msg:
					case <-time.After(time.Second):
						logger.Warn("command dropped", "id", msg.ID)
					}
				}
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				line.backspace()
			case tcell.KeyRune:
				line.add(ev.Rune())
			}
			line.draw(screen)
		case *tcell.EventResize:
			screen.Clear()
			screen.Sync()
			line.draw(screen)
		case nil:
			return nil
		}
	}
}
