package state

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mabhi256/memlab/internal/broadcast"
	"github.com/mabhi256/memlab/internal/model"
)

// SnapshotSource is the upstream feed of snapshots.
type SnapshotSource interface {
	Subscribe(observer broadcast.Observer[model.MemorySnapshot]) *broadcast.Subscription[model.MemorySnapshot]
}

// Store projects snapshots into UiState and republishes them through a
// Dispatcher. Delivery order matches the order of source snapshots.
type Store struct {
	dispatcher Dispatcher
	capacity   int
	logger     zerolog.Logger

	states *broadcast.Broadcaster[UiState]

	mu       sync.Mutex
	latest   *UiState
	upstream *broadcast.Subscription[model.MemorySnapshot]
	closed   bool
}

// NewStore subscribes to source immediately. A nil dispatcher delivers
// on the producer's goroutine.
func NewStore(source SnapshotSource, dispatcher Dispatcher, historyPoints int, logger zerolog.Logger) *Store {
	if dispatcher == nil {
		dispatcher = Inline
	}

	s := &Store{
		dispatcher: dispatcher,
		capacity:   max(1, historyPoints),
		logger:     logger.With().Str("component", "ui_store").Logger(),
		states:     broadcast.New[UiState]("ui_state", logger),
	}

	sub := source.Subscribe(broadcast.ObserverFunc[model.MemorySnapshot](s.onSnapshot))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Close()
		return s
	}
	s.upstream = sub
	s.mu.Unlock()
	return s
}

func (s *Store) HistoryCapacity() int {
	return s.capacity
}

// Latest returns the most recent UiState, if any snapshot has arrived.
func (s *Store) Latest() (UiState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return UiState{}, false
	}
	return *s.latest, true
}

// Subscribe registers observer and replays the latest state synchronously.
func (s *Store) Subscribe(observer broadcast.Observer[UiState]) *broadcast.Subscription[UiState] {
	return s.states.Subscribe(observer)
}

// Close releases the upstream subscription. Existing subscribers are kept.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	upstream := s.upstream
	s.upstream = nil
	s.mu.Unlock()

	if upstream != nil {
		upstream.Close()
	}
	s.logger.Debug().Msg("Store closed")
}

func (s *Store) onSnapshot(snapshot model.MemorySnapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	prev := NewUiState(snapshot, s.capacity)
	if s.latest != nil {
		prev.TotalManagedHistory = s.latest.TotalManagedHistory
	}
	next := prev.WithPushedManaged(snapshot.TotalManagedCommitted())
	s.latest = &next

	// Offer under the lock so sequence numbers follow snapshot order.
	seq := s.states.Offer(next)
	s.mu.Unlock()

	if s.states.Len() == 0 {
		return
	}
	s.dispatcher.Dispatch(func() {
		s.states.Deliver(next, seq)
	})
}
