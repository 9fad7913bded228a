package ledmachine

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

// Segment places a run of logical pixels onto part of a physical strip.
// Reversed segments are wired so that the first logical pixel is the last
// physical one
type Segment struct {
	Strip   int
	Start   int
	Length  int
	Reverse bool
}

type target struct {
	strip    int
	physical int
}

// Mapping routes the logical pixels the effects are computed for onto the
// physical strips.  Logical pixels are handed out to the segments in order
type Mapping struct {
	strips  []Strip
	targets []target
}

// NewLinearMapping lays the strips end to end in the order given
func NewLinearMapping(strips ...Strip) (m *Mapping) {
	segments := make([]Segment, 0, len(strips))
	for i, strip := range strips {
		segments = append(segments, Segment{Strip: i, Length: len(strip.Pixels())})
	}
	m, _ = NewMapping(strips, segments)
	return m
}

func NewMapping(strips []Strip, segments []Segment) (m *Mapping, err errors.Error) {
	m = &Mapping{strips: strips}
	for i, seg := range segments {
		if seg.Strip < 0 || seg.Strip >= len(strips) {
			return nil, errors.New("segment uses an unknown strip").With("segment", i).With("strip", seg.Strip).With("stack", stack.Trace().TrimRuntime())
		}
		size := len(strips[seg.Strip].Pixels())
		if seg.Start < 0 || seg.Length < 0 || seg.Start+seg.Length > size {
			msg := fmt.Sprintf("segment [%d, %d) does not fit in a strip of %d pixels", seg.Start, seg.Start+seg.Length, size)
			return nil, errors.New(msg).With("segment", i).With("strip", seg.Strip).With("stack", stack.Trace().TrimRuntime())
		}
		for j := 0; j < seg.Length; j++ {
			physical := seg.Start + j
			if seg.Reverse {
				physical = seg.Start + seg.Length - 1 - j
			}
			m.targets = append(m.targets, target{strip: seg.Strip, physical: physical})
		}
	}
	return m, nil
}

// Len is the number of logical pixels
func (m *Mapping) Len() int {
	return len(m.targets)
}

// Set writes a logical pixel, positions outside the mapping are ignored
func (m *Mapping) Set(logical int, c model.RGB) {
	if logical < 0 || logical >= len(m.targets) {
		return
	}
	t := m.targets[logical]
	m.strips[t.strip].Pixels()[t.physical] = c
}

// Show displays every strip, all strips are shown even when one fails and
// the first failure is returned
func (m *Mapping) Show() (err errors.Error) {
	for i, strip := range m.strips {
		if errShow := strip.Show(); errShow != nil && err == nil {
			err = errShow.With("strip", i)
		}
	}
	return err
}
