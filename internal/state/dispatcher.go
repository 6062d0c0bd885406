package state

import (
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher runs work on a designated execution context, such as a UI
// event loop. Work must run in submission order.
type Dispatcher interface {
	Dispatch(work func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(work func())

func (f DispatcherFunc) Dispatch(work func()) {
	f(work)
}

// Inline runs work on the caller's goroutine.
var Inline Dispatcher = DispatcherFunc(func(work func()) { work() })

// SerialDispatcher runs work one item at a time on a dedicated goroutine.
type SerialDispatcher struct {
	logger zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

func NewSerialDispatcher(logger zerolog.Logger) *SerialDispatcher {
	d := &SerialDispatcher{
		logger: logger.With().Str("component", "dispatcher").Logger(),
		done:   make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.loop()
	return d
}

// Dispatch queues work. Work submitted after Close is dropped.
func (d *SerialDispatcher) Dispatch(work func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Debug().Msg("Dropping work submitted after close")
		return
	}
	d.queue = append(d.queue, work)
	d.cond.Signal()
}

// Close runs the queued work and stops the worker. Safe to call twice.
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Signal()
	}
	d.mu.Unlock()
	<-d.done
}

func (d *SerialDispatcher) loop() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		work := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.run(work)
	}
}

func (d *SerialDispatcher) run(work func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Msg("Dispatched work panicked")
		}
	}()
	work()
}
