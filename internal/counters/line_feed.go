package counters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// LineFeed reads "name value" or "name=value" lines from an external
// producer and forwards them to a Sink. Blank lines and lines starting
// with '#' are skipped.
type LineFeed struct {
	r      io.Reader
	sink   Sink
	logger zerolog.Logger
}

func NewLineFeed(r io.Reader, sink Sink, logger zerolog.Logger) *LineFeed {
	return &LineFeed{
		r:      r,
		sink:   sink,
		logger: logger.With().Str("component", "line_feed").Logger(),
	}
}

// Run consumes lines until EOF or cancellation. Malformed lines are logged
// and skipped. Cancellation is observed between lines.
func (f *LineFeed) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(f.r)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++

		name, value, ok, err := ParseCounterLine(scanner.Text())
		if err != nil {
			f.logger.Debug().Err(err).Int("line", lineNo).Msg("Skipping malformed counter line")
			continue
		}
		if !ok {
			continue
		}
		f.sink.OnCounter(name, value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading counter feed: %w", err)
	}
	return nil
}

// ParseCounterLine parses one feed line. ok is false for blank and comment lines.
func ParseCounterLine(line string) (name string, value float64, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", 0, false, nil
	}

	var raw string
	if i := strings.IndexByte(line, '='); i >= 0 {
		name, raw = line[:i], line[i+1:]
	} else {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "", 0, false, fmt.Errorf("expected \"name value\", got %q", line)
		}
		name, raw = fields[0], fields[1]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, false, fmt.Errorf("missing counter name in %q", line)
	}

	value, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return name, value, true, nil
}
