package ledmachine

import (
	"sync"

	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

// Strip is a physical run of pixels.  The engine writes every pixel of the
// buffer returned by Pixels and then calls Show to display them
type Strip interface {
	Pixels() []model.RGB
	Show() (err errors.Error)
}

// MemoryStrip keeps the last shown frame in memory, it is used when running
// without hardware and in tests
type MemoryStrip struct {
	pixels []model.RGB
	shown  []model.RGB
	frames int
	sync.Mutex
}

func NewMemoryStrip(count int) (strip *MemoryStrip) {
	return &MemoryStrip{
		pixels: make([]model.RGB, count),
		shown:  make([]model.RGB, count),
	}
}

func (strip *MemoryStrip) Pixels() []model.RGB {
	return strip.pixels
}

func (strip *MemoryStrip) Show() (err errors.Error) {
	strip.Lock()
	defer strip.Unlock()
	copy(strip.shown, strip.pixels)
	strip.frames++
	return nil
}

// Shown returns a copy of the last frame shown and the number of frames
// shown so far
func (strip *MemoryStrip) Shown() (pixels []model.RGB, frames int) {
	strip.Lock()
	defer strip.Unlock()
	return append([]model.RGB(nil), strip.shown...), strip.frames
}
