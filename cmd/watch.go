package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mabhi256/memlab/internal/watch"
)

var interval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive memory dashboard for the running process",
	Long: `Watch opens a terminal dashboard fed by the sampling loop:
- Process working set, private bytes, virtual memory and threads
- Managed heap generations and large/pinned object segments
- Time in GC and a sparkline of the total managed history

Logs never go to the terminal while the dashboard runs; set log.file to keep them.

Examples:
  memlab watch                 # Sample every second
  memlab watch -i 250          # Sample every 250ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("interval") {
			cfg.Metrics.ProcessPollInterval = time.Duration(interval) * time.Millisecond
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		log, closer, err := setupLogger(cfg.Log, nil)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdin belongs to the dashboard, so no line feed here.
		p, err := newPipeline(cfg.Metrics, nil, log)
		if err != nil {
			return err
		}

		feedCtx, cancelFeeds := context.WithCancel(ctx)
		waitFeeds := p.startFeeds(feedCtx)
		defer func() {
			cancelFeeds()
			_ = waitFeeds()
		}()

		if err := p.loop.Start(ctx); err != nil {
			return err
		}
		defer p.loop.Stop()

		err = watch.StartTUI(ctx, p.loop, watch.Options{
			Metrics: cfg.Metrics,
			Target:  "pid " + strconv.Itoa(int(p.sampler.PID())),
			Stats:   p.loop.Stats,
		}, log)
		if err != nil {
			return fmt.Errorf("unable to start TUI: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVarP(&interval, "interval", "i", 1000, "Update interval in ms")
}
