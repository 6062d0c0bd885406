package process

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/mabhi256/memlab/internal/model"
)

// DefaultStackReserve is the per-thread reserve assumed when the OS does not
// report one. It matches the usual 8 MiB main-thread limit on Linux.
const DefaultStackReserve = 8 * model.MB

type Options struct {
	// PID to observe. Zero means the current process.
	PID int32
	// MaxThreads caps ListThreads. Zero means no cap.
	MaxThreads int
}

// Sampler reads OS-level memory counters for one process.
type Sampler struct {
	proc       *process.Process
	pid        int32
	maxThreads int
	logger     zerolog.Logger
}

func NewSampler(opts Options, logger zerolog.Logger) (*Sampler, error) {
	pid := opts.PID
	if pid == 0 {
		pid = int32(os.Getpid())
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	return &Sampler{
		proc:       proc,
		pid:        pid,
		maxThreads: opts.MaxThreads,
		logger:     logger.With().Str("component", "process_sampler").Int32("pid", pid).Logger(),
	}, nil
}

func (s *Sampler) PID() int32 {
	return s.pid
}

// Read captures working set, private bytes, virtual size and thread count.
// Any OS failure is returned as is; nothing is defaulted or retried.
func (s *Sampler) Read(ctx context.Context) (model.ProcessMemory, error) {
	mem, err := s.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return model.ProcessMemory{}, fmt.Errorf("failed to read memory info: %w", err)
	}

	private, err := privateBytes(ctx, s.proc, mem)
	if err != nil {
		return model.ProcessMemory{}, fmt.Errorf("failed to read private bytes: %w", err)
	}

	threads, err := s.proc.NumThreadsWithContext(ctx)
	if err != nil {
		return model.ProcessMemory{}, fmt.Errorf("failed to read thread count: %w", err)
	}

	return model.ProcessMemory{
		WorkingSet:    model.BytesFromUint64(mem.RSS),
		PrivateBytes:  private,
		VirtualMemory: model.BytesFromUint64(mem.VMS),
		ThreadCount:   int(threads),
	}, nil
}

// ListThreads returns the process threads sorted by id, capped at MaxThreads.
// The thread whose id equals the pid is the main thread.
func (s *Sampler) ListThreads(ctx context.Context) ([]model.ThreadInfo, error) {
	stats, err := s.proc.ThreadsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	ids := make([]int32, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if s.maxThreads > 0 && len(ids) > s.maxThreads {
		s.logger.Debug().Int("threads", len(ids)).Int("max", s.maxThreads).Msg("Truncating thread list")
		ids = ids[:s.maxThreads]
	}

	return BuildThreadInfos(ids, s.pid), nil
}

// BuildThreadInfos assigns the default stack reserve to each thread id.
func BuildThreadInfos(ids []int32, mainID int32) []model.ThreadInfo {
	out := make([]model.ThreadInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.ThreadInfo{
			ID:           id,
			StackReserve: DefaultStackReserve,
			IsUIThread:   id == mainID,
		})
	}
	return out
}
