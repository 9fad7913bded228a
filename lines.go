package ledmachine

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

// LineSource reads one command per line, typically from stdin
type LineSource struct {
	name   string
	reader io.Reader
	msgC   chan<- *model.Message
	errorC chan<- errors.Error
}

func NewLineSource(name string, reader io.Reader, msgC chan<- *model.Message, errorC chan<- errors.Error) (src *LineSource) {
	return &LineSource{
		name:   name,
		reader: reader,
		msgC:   msgC,
		errorC: errorC,
	}
}

// Run returns at the end of the input or once quitC is closed.  A blocked
// read cannot be interrupted, the goroutine then ends with the next line
func (src *LineSource) Run(quitC <-chan struct{}) {
	scanner := bufio.NewScanner(src.reader)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		select {
		case <-quitC:
			return
		default:
		}
		sendMessage(model.NewMessage(src.name, text), src.msgC, src.errorC, time.Second)
	}
	if errGo := scanner.Err(); errGo != nil {
		reportError(errors.Wrap(errGo).With("source", src.name).With("stack", stack.Trace().TrimRuntime()), src.errorC)
	}
}
