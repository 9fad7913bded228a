package main

import (
	"fmt"
	"os"

	"github.com/karlmutch/errors"
)

var (
	errV = os.Stderr
)

// watchErrors logs the failures reported by the engine and sources, when
// the logger is disabled they are still printed so they are not lost
func watchErrors(errorC <-chan errors.Error, quitC <-chan struct{}) {
	for {
		select {
		case err := <-errorC:
			if err == nil {
				continue
			}
			if logger.IsWarn() {
				logger.Warn("failure", "error", err.Error())
				continue
			}
			fmt.Fprintln(errV, err.Error())
		case <-quitC:
			return
		}
	}
}
