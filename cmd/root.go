package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mabhi256/memlab/internal/config"
	"github.com/mabhi256/memlab/internal/logger"
	"github.com/mabhi256/memlab/utils"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "memlab",
	Short: "Live memory telemetry for the running process",
	Long: `memlab samples process memory and Go runtime collector statistics on a fixed
interval, projects them into a bounded history and fans them out to a terminal
dashboard, a Prometheus endpoint or a one-shot report.

Configuration is read from an optional YAML file and MEMLAB_* environment
variables, then overridden by command flags.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig resolves defaults, file and environment, then the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogger builds the process logger. A nil console keeps the terminal
// free, which the dashboard needs.
func setupLogger(cfg config.LogConfig, console io.Writer) (zerolog.Logger, io.Closer, error) {
	log, closer, err := logger.New(cfg, logger.Options{Console: console})
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("unable to set up logging: %w", err)
	}
	return log, closer, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	_ = rootCmd.RegisterFlagCompletionFunc("config", utils.CompleteFilesByExtension(".yaml", ".yml"))
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", cobra.FixedCompletions(
		[]string{"trace", "debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp))
}
