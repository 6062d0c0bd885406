// Package broadcast fans values out to subscribers with replay of the
// latest value on subscribe.
package broadcast

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrObserverPanic = errors.New("observer panicked")

// Observer receives published values.
type Observer[T any] interface {
	OnNext(T)
}

// ErrorObserver is implemented by observers that want to learn about their
// own delivery failures.
type ErrorObserver interface {
	OnError(error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[T any] func(T)

func (f ObserverFunc[T]) OnNext(v T) {
	f(v)
}

// Broadcaster delivers each published value to every subscriber registered
// at publish time, in registration order.
//
// Observers must not publish synchronously into the broadcaster they are
// subscribed to; that delivery would wait on itself.
type Broadcaster[T any] struct {
	name   string
	logger zerolog.Logger

	mu        sync.Mutex
	subs      []*Subscription[T]
	latest    T
	hasLatest bool
	seq       uint64
}

func New[T any](name string, logger zerolog.Logger) *Broadcaster[T] {
	return &Broadcaster[T]{
		name:   name,
		logger: logger.With().Str("component", "broadcaster").Str("topic", name).Logger(),
	}
}

// Subscribe registers observer and, if a value has been published, delivers
// it synchronously before returning.
func (b *Broadcaster[T]) Subscribe(observer Observer[T]) *Subscription[T] {
	if observer == nil {
		panic("broadcast: nil observer")
	}

	sub := &Subscription[T]{
		id:       uuid.New(),
		owner:    b,
		observer: observer,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	latest, hasLatest, seq := b.latest, b.hasLatest, b.seq
	b.mu.Unlock()

	b.logger.Debug().Str("subscription", sub.id.String()).Msg("Subscribed")

	if hasLatest {
		sub.deliver(latest, seq)
	}
	return sub
}

// Publish records v as latest and delivers it.
func (b *Broadcaster[T]) Publish(v T) {
	b.Deliver(v, b.Offer(v))
}

// Offer records v as latest without delivering it and returns its sequence
// number for a later Deliver.
func (b *Broadcaster[T]) Offer(v T) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.latest = v
	b.hasLatest = true
	return b.seq
}

// Deliver fans v out to a copy of the current subscriber list. A subscriber
// that already saw a newer sequence skips v.
func (b *Broadcaster[T]) Deliver(v T, seq uint64) {
	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(v, seq)
	}
}

// Latest returns the most recently published or offered value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

// Len returns the number of open subscriptions.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster[T]) remove(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := slices.Index(b.subs, sub); i >= 0 {
		b.subs = slices.Delete(b.subs, i, i+1)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription[T any] struct {
	id       uuid.UUID
	owner    *Broadcaster[T]
	observer Observer[T]
	closed   atomic.Bool

	deliverMu sync.Mutex
	lastSeq   uint64
}

func (s *Subscription[T]) ID() uuid.UUID {
	return s.id
}

func (s *Subscription[T]) Closed() bool {
	return s.closed.Load()
}

// Close removes the observer. Closing twice is a no-op.
func (s *Subscription[T]) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.owner.remove(s)
	s.owner.logger.Debug().Str("subscription", s.id.String()).Msg("Unsubscribed")
}

func (s *Subscription[T]) deliver(v T, seq uint64) {
	if s.closed.Load() {
		return
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if s.closed.Load() || seq <= s.lastSeq {
		return
	}
	s.lastSeq = seq
	s.invoke(v)
}

func (s *Subscription[T]) invoke(v T) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrObserverPanic, r)
			s.owner.logger.Error().Err(err).Str("subscription", s.id.String()).Msg("Observer failed")
			s.report(err)
		}
	}()
	s.observer.OnNext(v)
}

func (s *Subscription[T]) report(err error) {
	eo, ok := s.observer.(ErrorObserver)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.owner.logger.Error().Interface("panic", r).Str("subscription", s.id.String()).Msg("Observer error handler failed")
		}
	}()
	eo.OnError(err)
}
