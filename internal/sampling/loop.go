package sampling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabhi256/memlab/internal/broadcast"
	"github.com/mabhi256/memlab/internal/model"
)

var ErrAlreadyStarted = errors.New("sampling loop already started")

// StatsBuilder produces the collector view for one tick.
type StatsBuilder interface {
	Build() (model.GcStats, model.HeapBreakdown)
}

// ProcessReader captures OS-level process counters.
type ProcessReader interface {
	Read(ctx context.Context) (model.ProcessMemory, error)
}

// ThreadLister optionally enriches snapshots with per-thread detail.
type ThreadLister interface {
	ListThreads(ctx context.Context) ([]model.ThreadInfo, error)
}

type Options struct {
	Interval time.Duration
	// Threads is optional. Without it snapshots carry only the thread count.
	Threads ThreadLister
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Stats struct {
	Ticks    uint64
	Failures uint64
}

// Loop periodically builds a MemorySnapshot and publishes it.
// A Loop runs at most once.
type Loop struct {
	interval time.Duration
	stats    StatsBuilder
	proc     ProcessReader
	threads  ThreadLister
	now      func() time.Time
	logger   zerolog.Logger

	snapshots *broadcast.Broadcaster[model.MemorySnapshot]

	started  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc

	tickMu sync.Mutex
	lastTS time.Time

	ticks    atomic.Uint64
	failures atomic.Uint64
}

func NewLoop(opts Options, stats StatsBuilder, proc ProcessReader, logger zerolog.Logger) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Loop{
		interval:  opts.Interval,
		stats:     stats,
		proc:      proc,
		threads:   opts.Threads,
		now:       opts.Clock,
		logger:    logger.With().Str("component", "sampling_loop").Logger(),
		snapshots: broadcast.New[model.MemorySnapshot]("snapshots", logger),
		done:      make(chan struct{}),
	}
}

// Start runs the loop on its own goroutine until Stop or ctx is cancelled.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	go l.run(ctx)
	return nil
}

// Stop cancels a loop launched by Start and waits for it to finish.
// It is safe to call more than once and a no-op if Start was never called.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-l.done
}

// Done is closed exactly once, after the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run ticks until ctx is cancelled. Cancellation is checked between ticks;
// a tick in progress always completes.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	l.run(ctx)
	return nil
}

func (l *Loop) run(ctx context.Context) {
	defer l.doneOnce.Do(func() { close(l.done) })

	l.logger.Info().Dur("interval", l.interval).Msg("Sampling loop started")
	defer func() {
		l.logger.Info().Uint64("ticks", l.ticks.Load()).Uint64("failures", l.failures.Load()).Msg("Sampling loop stopped")
	}()

	timer := time.NewTimer(l.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		// Failures are logged inside Tick; the loop carries on regardless.
		_, _ = l.Tick(context.WithoutCancel(ctx))

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// Tick builds and publishes one snapshot. When the process read fails
// nothing is published and the error is returned.
func (l *Loop) Tick(ctx context.Context) (model.MemorySnapshot, error) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	gc, heap := l.stats.Build()

	proc, err := l.proc.Read(ctx)
	if err != nil {
		l.failures.Add(1)
		l.logger.Warn().Err(err).Msg("Process read failed, skipping tick")
		return model.MemorySnapshot{}, fmt.Errorf("sampling tick: %w", err)
	}

	threads := model.ThreadsSnapshot{TotalThreads: proc.ThreadCount}
	if l.threads != nil {
		list, err := l.threads.ListThreads(ctx)
		if err != nil {
			l.logger.Debug().Err(err).Msg("Thread listing unavailable")
		} else {
			threads.Threads = list
		}
	}

	snapshot := model.MemorySnapshot{
		Timestamp: l.stamp(),
		Process:   proc,
		GC:        gc,
		Heap:      heap,
		Threads:   threads,
	}

	l.snapshots.Publish(snapshot)
	l.ticks.Add(1)

	l.logger.Debug().
		Stringer("working_set", proc.WorkingSet).
		Stringer("managed", snapshot.TotalManagedCommitted()).
		Msg("Snapshot published")

	return snapshot, nil
}

// stamp never returns a time before the previous snapshot's.
func (l *Loop) stamp() time.Time {
	ts := l.now()
	if ts.Before(l.lastTS) {
		ts = l.lastTS
	}
	l.lastTS = ts
	return ts
}

// Latest returns the most recent snapshot, if any.
func (l *Loop) Latest() (model.MemorySnapshot, bool) {
	return l.snapshots.Latest()
}

// Subscribe registers observer and replays the latest snapshot.
func (l *Loop) Subscribe(observer broadcast.Observer[model.MemorySnapshot]) *broadcast.Subscription[model.MemorySnapshot] {
	return l.snapshots.Subscribe(observer)
}

func (l *Loop) Stats() Stats {
	return Stats{Ticks: l.ticks.Load(), Failures: l.failures.Load()}
}
