package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mabhi256/memlab/internal/config"
)

// Options controls where log output goes beyond config.LogConfig.
type Options struct {
	// Console receives human or JSON output. Nil disables console logging,
	// which the TUI needs because it owns the terminal.
	Console io.Writer
}

// New builds a zerolog logger from cfg. The returned closer flushes and
// closes the rotating log file, if any.
func New(cfg config.LogConfig, opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, consoleWriter(opts.Console, cfg.Format))
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    positiveOr(cfg.MaxSizeMB, 100),
			MaxBackups: positiveOr(cfg.MaxBackups, 3),
			Compress:   true,
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return log, closer, nil
}

// ParseLevel maps a level name to zerolog. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func consoleWriter(w io.Writer, format string) io.Writer {
	if strings.EqualFold(format, "json") {
		return w
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		if info, err := f.Stat(); err == nil {
			noColor = info.Mode()&os.ModeCharDevice == 0
		}
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: noColor}
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
