package ledmachine

import (
	"strings"
	"testing"

	"github.com/karlmutch/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/TeamNorCal/ledmachine/model"
)

func TestLineSource(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	msgC := make(chan *model.Message, 4)
	input := strings.NewReader("red | blue\n\n   \n  twinkle 40  \n")
	NewLineSource("stdin", input, msgC, make(chan errors.Error, 1)).Run(make(chan struct{}))

	assert.Len(t, msgC, 2)
	first := <-msgC
	assert.Equal(t, "red | blue", first.Text)
	assert.Equal(t, "stdin", first.Source)
	assert.Equal(t, "twinkle 40", (<-msgC).Text)
}

func TestLineSourceStops(t *testing.T) {
	msgC := make(chan *model.Message, 4)
	quitC := make(chan struct{})
	close(quitC)

	NewLineSource("stdin", strings.NewReader("red\nblue\n"), msgC, make(chan errors.Error, 1)).Run(quitC)
	assert.Empty(t, msgC)
}
