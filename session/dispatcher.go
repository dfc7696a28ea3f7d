package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ouka-input/ouka/hotmap"
)

// DefaultQueueSize is the dispatcher queue length used when none is given.
const DefaultQueueSize = 64

// Dispatcher runs matched handlers one at a time on a single goroutine.
//
// Every session shares one dispatcher, so handlers never run concurrently
// with each other and a slow handler never stalls device polling: when the
// queue is full new work is dropped.
type Dispatcher struct {
	queue   chan hotmap.Handler
	logger  *slog.Logger
	dropped atomic.Uint64
	handled atomic.Uint64
}

// NewDispatcher returns a dispatcher with a queue of size entries.
func NewDispatcher(size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		queue:  make(chan hotmap.Handler, size),
		logger: logger,
	}
}

// Submit queues h without blocking.
func (d *Dispatcher) Submit(h hotmap.Handler) bool {
	select {
	case d.queue <- h:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Run invokes queued handlers until ctx is cancelled. Work still queued at
// that point is discarded.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case h := <-d.queue:
			if err := d.invoke(ctx, h); err != nil {
				d.logger.Error("hotkey handler failed", "error", err)
			}
			d.handled.Add(1)
		}
	}
}

func (d *Dispatcher) invoke(ctx context.Context, h hotmap.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Invoke(ctx)
}

// Dropped returns how many submissions were rejected.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Handled returns how many handlers have run.
func (d *Dispatcher) Handled() uint64 { return d.handled.Load() }
