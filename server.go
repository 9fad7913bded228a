package ledmachine

// This module implements an HTTP server that accepts commands posted to
// /command and reports what the lights are doing on /status

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/TeamNorCal/ledmachine/model"
)

const (
	maxCommandBytes = 4096
)

type CommandServer struct {
	addr   string
	msgC   chan<- *model.Message
	status func() Status
	errorC chan<- errors.Error
}

func NewCommandServer(addr string, msgC chan<- *model.Message, status func() Status, errorC chan<- errors.Error) (srv *CommandServer) {
	return &CommandServer{
		addr:   addr,
		msgC:   msgC,
		status: status,
		errorC: errorC,
	}
}

func (srv *CommandServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Post("/command", srv.postCommand)
	r.Get("/status", srv.getStatus)
	return r
}

func (srv *CommandServer) postCommand(w http.ResponseWriter, r *http.Request) {
	body, errGo := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	if errGo != nil {
		http.Error(w, errGo.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	text := extractText(body)
	if text == "" {
		http.Error(w, "no command found", http.StatusBadRequest)
		return
	}

	msg := model.NewMessage("http", text)
	select {
	case srv.msgC <- msg:
	case <-r.Context().Done():
		http.Error(w, "command not accepted", http.StatusServiceUnavailable)
		return
	}
	logger.Debug("command posted", "id", msg.ID, "request", middleware.GetReqID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(msg)
}

func (srv *CommandServer) getStatus(w http.ResponseWriter, r *http.Request) {
	status := Status{}
	if srv.status != nil {
		status = srv.status()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Run serves until quitC is closed
func (srv *CommandServer) Run(quitC <-chan struct{}) {
	server := &http.Server{
		Addr:    srv.addr,
		Handler: srv.Handler(),
	}

	go func() {
		<-quitC
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("command server listening", "addr", srv.addr)
	if errGo := server.ListenAndServe(); errGo != nil && errGo != http.ErrServerClosed {
		reportError(errors.Wrap(errGo).With("addr", srv.addr).With("stack", stack.Trace().TrimRuntime()), srv.errorC)
	}
}
