package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mabhi256/memlab/internal/config"
	"github.com/mabhi256/memlab/internal/counters"
	"github.com/mabhi256/memlab/internal/process"
	"github.com/mabhi256/memlab/internal/sampling"
)

// pipeline wires counter feeds into an aggregator and a sampling loop for
// the current process.
type pipeline struct {
	aggregator *counters.Aggregator
	feed       *counters.RuntimeFeed
	lines      *counters.LineFeed
	sampler    *process.Sampler
	loop       *sampling.Loop
	logger     zerolog.Logger
}

// newPipeline builds the components without starting anything. A non-nil
// counterInput adds a line feed reading "name value" pairs from it.
func newPipeline(cfg config.MetricsConfig, counterInput io.Reader, log zerolog.Logger) (*pipeline, error) {
	sampler, err := process.NewSampler(process.Options{MaxThreads: cfg.MaxThreads}, log)
	if err != nil {
		return nil, fmt.Errorf("unable to open process: %w", err)
	}

	aggregator := counters.NewAggregator(nil, log)

	opts := sampling.Options{Interval: cfg.ProcessPollInterval}
	if cfg.ListThreads {
		opts.Threads = sampler
	}

	p := &pipeline{
		aggregator: aggregator,
		feed:       counters.NewRuntimeFeed(aggregator, cfg.RuntimeCountersInterval, log),
		sampler:    sampler,
		loop:       sampling.NewLoop(opts, aggregator, sampler, log),
		logger:     log,
	}
	if counterInput != nil {
		p.lines = counters.NewLineFeed(counterInput, aggregator, log)
	}
	return p, nil
}

// startFeeds runs the counter feeds until ctx ends. The returned wait blocks
// for the runtime feed only: a line feed parked in a blocking read is
// abandoned.
func (p *pipeline) startFeeds(ctx context.Context) (wait func() error) {
	var g errgroup.Group
	g.Go(func() error {
		return p.feed.Run(ctx)
	})

	if p.lines != nil {
		go func() {
			if err := p.lines.Run(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("Counter line feed stopped")
			}
		}()
	}
	return g.Wait
}
