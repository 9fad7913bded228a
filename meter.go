package ledmachine

// This module listens to the default audio input and keeps track of how
// loud it is and the dominant frequency heard, for the music reactive
// effects.  Levels are reported on the scale of signed 16 bit samples.
//
// Capture uses portaudio, on a raspberry pi "sudo apt-get install
// portaudio19-dev" is needed to build

import (
	"math"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/gordonklaus/portaudio"
)

const (
	defaultSampleRate = 44100.0

	// recordPeriod is the length of audio measured at a time
	recordPeriod = 150 * time.Millisecond

	// defaultAmbientLevel is the loudness of a quiet room
	defaultAmbientLevel = 1600.0

	// defaultFullLevel above the ambient level is full scale
	defaultFullLevel = 20000.0

	// crossingHysteresis stops noise around zero counting as crossings
	crossingHysteresis = 200.0

	sampleScale = 32768.0

	// historySize covers the last 45 seconds of levels, one per record period
	historySize = 300

	// historySeed fills the history before anything has been heard
	historySeed = 1000.0
)

// analyze measures the RMS level and, from the zero crossings, the
// frequency of a block of samples
func analyze(samples []float32, sampleRate float64) (loudness float64, frequency float64) {
	if len(samples) == 0 || sampleRate <= 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range samples {
		v := float64(s) * sampleScale
		sum += v * v
	}
	loudness = math.Sqrt(sum / float64(len(samples)))

	crossings := 0
	high := float64(samples[0])*sampleScale > 0
	for _, s := range samples[1:] {
		v := float64(s) * sampleScale
		next := v > crossingHysteresis
		if high {
			next = v > -crossingHysteresis
		}
		if next != high {
			crossings++
			high = next
		}
	}
	// Two crossings make a full cycle
	duration := float64(len(samples)) / sampleRate
	frequency = float64(crossings) / 2 / duration
	return loudness, frequency
}

type Meter struct {
	sampleRate float64

	loudness  float64
	frequency float64
	err       errors.Error

	// history is a ring of the recent loudness levels, next is the slot
	// written by the following update
	history []float64
	next    int
	sync.Mutex
}

func newMeter(sampleRate float64) (m *Meter) {
	m = &Meter{
		sampleRate: sampleRate,
		history:    make([]float64, historySize),
	}
	for i := range m.history {
		m.history[i] = historySeed
	}
	return m
}

func (m *Meter) update(loudness float64, frequency float64) {
	m.Lock()
	defer m.Unlock()
	m.loudness = loudness
	m.frequency = frequency
	m.err = nil

	if len(m.history) != 0 {
		m.history[m.next] = loudness
		m.next = (m.next + 1) % len(m.history)
	}
}

// RecentLoudness returns up to count of the latest levels, oldest first
func (m *Meter) RecentLoudness(count int) (levels []float64) {
	m.Lock()
	defer m.Unlock()

	size := len(m.history)
	if count > size {
		count = size
	}
	levels = make([]float64, 0, count)
	for i := count; i > 0; i-- {
		levels = append(levels, m.history[(m.next-i+size)%size])
	}
	return levels
}

func (m *Meter) fail(err errors.Error) {
	m.Lock()
	defer m.Unlock()
	m.err = err
}

// CurrentLoudness is the RMS level of the last block of audio
func (m *Meter) CurrentLoudness() (float64, error) {
	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.loudness, nil
}

// CurrentFrequency is the frequency estimated for the last block of audio
func (m *Meter) CurrentFrequency() (float64, error) {
	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return m.frequency, nil
}

// StartMeter opens the default input device and measures it until quitC is
// closed.  A meter is returned even when the device cannot be opened, it
// then reports the failure from every read so the effects fall back to
// their defaults
func StartMeter(sampleRate float64, errorC chan<- errors.Error, quitC <-chan struct{}) (m *Meter) {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	m = newMeter(sampleRate)
	m.fail(errors.New("meter has not heard anything yet").With("stack", stack.Trace().TrimRuntime()))

	go m.run(errorC, quitC)
	return m
}

func (m *Meter) run(errorC chan<- errors.Error, quitC <-chan struct{}) {
	defer logger.Debug("meter stopped")

	if errGo := portaudio.Initialize(); errGo != nil {
		err := errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
		m.fail(err)
		reportError(err, errorC)
		return
	}
	defer portaudio.Terminate()

	in := make([]float32, int(m.sampleRate*recordPeriod.Seconds()))
	stream, errGo := portaudio.OpenDefaultStream(1, 0, m.sampleRate, len(in), in)
	if errGo != nil {
		err := errors.Wrap(errGo).With("sample_rate", m.sampleRate).With("stack", stack.Trace().TrimRuntime())
		m.fail(err)
		reportError(err, errorC)
		return
	}
	defer stream.Close()

	if errGo = stream.Start(); errGo != nil {
		err := errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
		m.fail(err)
		reportError(err, errorC)
		return
	}
	defer stream.Stop()

	for {
		select {
		case <-quitC:
			return
		default:
		}

		// An overflow only means some samples were lost, what was read is fine
		if errGo = stream.Read(); errGo != nil && errGo != portaudio.InputOverflowed {
			err := errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
			m.fail(err)
			reportError(err, errorC)

			select {
			case <-time.After(time.Second):
			case <-quitC:
				return
			}
			continue
		}
		m.update(analyze(in, m.sampleRate))
	}
}
