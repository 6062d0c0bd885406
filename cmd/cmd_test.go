package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mabhi256/memlab/internal/broadcast"
	"github.com/mabhi256/memlab/internal/config"
	"github.com/mabhi256/memlab/internal/exporter"
	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/state"
)

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := runRoot(t, "version")
	assert.Contains(t, out, "memlab version dev")
}

func TestSnapshotCommand_JSON(t *testing.T) {
	out := runRoot(t, "snapshot", "--format", "json", "--warmup", "0")

	var snap model.MemorySnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.False(t, snap.Timestamp.IsZero())
	assert.Positive(t, snap.Process.WorkingSet.Bytes())
	assert.Positive(t, snap.Process.ThreadCount)
}

func TestSnapshotCommand_YAML(t *testing.T) {
	out := runRoot(t, "snapshot", "--format", "yaml", "--warmup", "0")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "process")
	assert.Contains(t, doc, "heap")
}

func TestSnapshotCommand_RejectsUnknownFormat(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"snapshot", "--format", "xml"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		snapshotFormat = "json"
	})

	assert.ErrorContains(t, rootCmd.Execute(), "invalid format")
}

func TestPipeline_TickPublishesToStore(t *testing.T) {
	cfg := config.Default().Metrics
	cfg.ListThreads = false

	p, err := newPipeline(cfg, nil, zerolog.Nop())
	require.NoError(t, err)

	store := state.NewStore(p.loop, state.Inline, 3, zerolog.Nop())
	defer store.Close()

	p.aggregator.OnCounter("gen-0-size", 4096)
	_, err = p.loop.Tick(t.Context())
	require.NoError(t, err)

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Len(t, latest.TotalManagedHistory, 1)
	assert.Equal(t, model.ByteSize(4096), latest.Snapshot.Heap.Gen0.Size)
}

func TestServeMux(t *testing.T) {
	cfg := config.Default().Metrics
	cfg.ListThreads = false
	p, err := newPipeline(cfg, nil, zerolog.Nop())
	require.NoError(t, err)

	exp := exporter.New()
	defer p.loop.Subscribe(exp).Close()
	store := state.NewStore(p.loop, nil, 4, zerolog.Nop())
	defer store.Close()

	mux, err := newServeMux("/metrics", exp, store)
	require.NoError(t, err)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	_, err = p.loop.Tick(t.Context())
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/state")
	require.NoError(t, err)
	var got struct {
		TotalManagedHistory []int64 `json:"total_managed_history"`
		HistoryCapacity     int     `json:"history_capacity"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Len(t, got.TotalManagedHistory, 1)
	assert.Equal(t, 4, got.HistoryCapacity)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "memlab_process_working_set_bytes")
}

func TestServeMux_RejectsReservedMetricsPath(t *testing.T) {
	exp := exporter.New()
	store := state.NewStore(&emptySource{}, nil, 1, zerolog.Nop())
	defer store.Close()

	for _, path := range []string{"/state", "/healthz"} {
		assert.NotPanics(t, func() {
			_, err := newServeMux(path, exp, store)
			assert.ErrorContains(t, err, "is reserved")
		}, path)
	}
}

type emptySource struct{}

func (emptySource) Subscribe(observer broadcast.Observer[model.MemorySnapshot]) *broadcast.Subscription[model.MemorySnapshot] {
	return broadcast.New[model.MemorySnapshot]("empty", zerolog.Nop()).Subscribe(observer)
}

func TestStartFeedsStopsWithContext(t *testing.T) {
	cfg := config.Default().Metrics
	cfg.RuntimeCountersInterval = 10 * time.Millisecond
	p, err := newPipeline(cfg, bytes.NewBufferString("allocated-bytes 123\n"), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	wait := p.startFeeds(ctx)
	cancel()
	assert.NoError(t, wait())
}
