package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// SignalMux passes every received signal to handler until it returns true.
type SignalMux struct {
	sigChan chan os.Signal
	handler func(os.Signal) bool
}

func NewSignalMux(handler func(os.Signal) bool) *SignalMux {
	if handler == nil {
		log.Panic("signal handler is nil")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return &SignalMux{
		sigChan: sigChan,
		handler: handler,
	}
}

func (s *SignalMux) Serve() {
	defer signal.Stop(s.sigChan)

	for {
		sig := <-s.sigChan
		log.Infof("receive signal: %s", sig.String())

		if s.handler(sig) {
			return
		}
	}
}
