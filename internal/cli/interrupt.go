package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns the first Ctrl+C into a context cancellation and
// tells the user what happens to the work already done.
type InterruptHandler struct {
	console     *Console
	notify      func(chan<- os.Signal)
	stop        func(chan<- os.Signal)
	cancel      context.CancelFunc
	hint        string
	interrupted atomic.Bool
}

// NewInterruptHandler creates a handler that announces interrupts on console.
// hint is printed under the notice when non-empty.
func NewInterruptHandler(console *Console, hint string) *InterruptHandler {
	return &InterruptHandler{
		console: console,
		hint:    hint,
		notify: func(c chan<- os.Signal) {
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		},
		stop: func(c chan<- os.Signal) {
			signal.Stop(c)
		},
	}
}

// Watch returns a context canceled on the first interrupt or on Stop.
func (h *InterruptHandler) Watch(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	signals := make(chan os.Signal, 1)
	h.notify(signals)

	go func() {
		defer h.stop(signals)
		select {
		case <-signals:
		case <-ctx.Done():
			return
		}
		first := h.interrupted.CompareAndSwap(false, true)
		cancel()
		if first {
			h.announce()
		}
	}()

	return ctx
}

// Stop releases the signal handler without reporting an interrupt.
func (h *InterruptHandler) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Interrupted reports whether the user interrupted the watched work.
func (h *InterruptHandler) Interrupted() bool {
	return h.interrupted.Load()
}

func (h *InterruptHandler) announce() {
	msg := "\n" + FormatWarning("Batch purchase interrupted!")
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	msg += "\n" + FormatInfo("Sampai jumpa! "+SignalIcon)
	h.console.Print(msg)
}
