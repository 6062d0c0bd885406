package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []int
	errs   []error
}

func (r *recorder) OnNext(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) got() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func newTestBroadcaster() *Broadcaster[int] {
	return New[int]("test", zerolog.Nop())
}

func TestSubscribe_NoLatestNoReplay(t *testing.T) {
	b := newTestBroadcaster()
	r := &recorder{}
	b.Subscribe(r)

	assert.Empty(t, r.got())
	_, ok := b.Latest()
	assert.False(t, ok)
}

func TestSubscribe_ReplaysLatestSynchronously(t *testing.T) {
	b := newTestBroadcaster()
	b.Publish(1)
	b.Publish(2)

	r := &recorder{}
	b.Subscribe(r)
	assert.Equal(t, []int{2}, r.got())

	b.Publish(3)
	assert.Equal(t, []int{2, 3}, r.got())
}

func TestPublish_RegistrationOrder(t *testing.T) {
	b := newTestBroadcaster()

	var order []string
	b.Subscribe(ObserverFunc[int](func(int) { order = append(order, "a") }))
	b.Subscribe(ObserverFunc[int](func(int) { order = append(order, "b") }))
	b.Subscribe(ObserverFunc[int](func(int) { order = append(order, "c") }))

	b.Publish(1)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestClose_StopsDeliveryAndIsIdempotent(t *testing.T) {
	b := newTestBroadcaster()
	r := &recorder{}
	sub := b.Subscribe(r)
	b.Publish(1)

	sub.Close()
	sub.Close()
	assert.True(t, sub.Closed())
	assert.Equal(t, 0, b.Len())

	b.Publish(2)
	assert.Equal(t, []int{1}, r.got())
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	b := newTestBroadcaster()

	first := &recorder{}
	third := &recorder{}
	var second *Subscription[int]

	b.Subscribe(ObserverFunc[int](func(v int) {
		first.OnNext(v)
		second.Close()
	}))
	second = b.Subscribe(ObserverFunc[int](func(v int) {
		t.Errorf("closed subscription received %d", v)
	}))
	b.Subscribe(third)

	require.NotPanics(t, func() { b.Publish(7) })
	assert.Equal(t, []int{7}, first.got())
	assert.Equal(t, []int{7}, third.got())
	assert.Equal(t, 2, b.Len())
}

func TestSelfUnsubscribeDuringPublish(t *testing.T) {
	b := newTestBroadcaster()
	other := &recorder{}

	var self *Subscription[int]
	calls := 0
	self = b.Subscribe(ObserverFunc[int](func(int) {
		calls++
		self.Close()
	}))
	b.Subscribe(other)

	b.Publish(1)
	b.Publish(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{1, 2}, other.got())
}

func TestSubscribeDuringPublish(t *testing.T) {
	b := newTestBroadcaster()
	late := &recorder{}

	once := sync.Once{}
	b.Subscribe(ObserverFunc[int](func(int) {
		once.Do(func() { b.Subscribe(late) })
	}))

	b.Publish(1)
	// The late subscriber gets the value through replay, not twice.
	assert.Equal(t, []int{1}, late.got())

	b.Publish(2)
	assert.Equal(t, []int{1, 2}, late.got())
}

func TestObserverPanicIsIsolatedAndReported(t *testing.T) {
	b := newTestBroadcaster()
	failing := &panicky{}
	healthy := &recorder{}

	b.Subscribe(failing)
	b.Subscribe(healthy)

	require.NotPanics(t, func() { b.Publish(5) })
	assert.Equal(t, []int{5}, healthy.got())
	require.Len(t, failing.errs, 1)
	assert.True(t, errors.Is(failing.errs[0], ErrObserverPanic))
}

type panicky struct {
	errs []error
}

func (p *panicky) OnNext(int)        { panic("boom") }
func (p *panicky) OnError(err error) { p.errs = append(p.errs, err) }

func TestOfferThenDeliver(t *testing.T) {
	b := newTestBroadcaster()
	r := &recorder{}
	b.Subscribe(r)

	seq := b.Offer(10)
	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, 10, latest)
	assert.Empty(t, r.got())

	b.Deliver(10, seq)
	assert.Equal(t, []int{10}, r.got())

	// A stale or repeated sequence is skipped.
	b.Deliver(10, seq)
	newer := b.Offer(11)
	b.Deliver(11, newer)
	b.Deliver(9, seq)
	assert.Equal(t, []int{10, 11}, r.got())
}

func TestSubscribeNilPanics(t *testing.T) {
	assert.Panics(t, func() { newTestBroadcaster().Subscribe(nil) })
}

func TestConcurrentPublishKeepsPerSubscriberOrder(t *testing.T) {
	b := newTestBroadcaster()
	r := &recorder{}
	b.Subscribe(r)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				b.Publish(w*1000 + i)
			}
		}(w)
	}

	var subs sync.WaitGroup
	for i := 0; i < 20; i++ {
		subs.Add(1)
		go func() {
			defer subs.Done()
			b.Subscribe(&recorder{}).Close()
		}()
	}

	wg.Wait()
	subs.Wait()

	// Each writer's values must appear in increasing order.
	last := map[int]int{}
	for _, v := range r.got() {
		w := v / 1000
		if prev, ok := last[w]; ok {
			assert.Greater(t, v, prev)
		}
		last[w] = v
	}
	assert.Equal(t, 1, b.Len())
}
