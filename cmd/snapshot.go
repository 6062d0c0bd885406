package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	snapshotFormat string
	snapshotWarmup time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a single memory snapshot",
	Long: `Snapshot primes the runtime counters, waits for the warmup so time in GC has
a window to measure, takes one sample and prints it.

Examples:
  memlab snapshot
  memlab snapshot --format yaml --warmup 1s`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cobra.NoFileCompletions,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotFormat != "json" && snapshotFormat != "yaml" {
			return fmt.Errorf("invalid format %q: must be json or yaml", snapshotFormat)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, closer, err := setupLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		p, err := newPipeline(cfg.Metrics, nil, log)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		p.feed.Poll()
		if snapshotWarmup > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(snapshotWarmup):
			}
			p.feed.Poll()
		}

		snap, err := p.loop.Tick(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if snapshotFormat == "yaml" {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(snap); err != nil {
				return err
			}
			return enc.Close()
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", "json", "Output format (json, yaml)")
	snapshotCmd.Flags().DurationVar(&snapshotWarmup, "warmup", 200*time.Millisecond, "Delay between counter priming and the sample")
	_ = snapshotCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))
}
