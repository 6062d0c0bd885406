package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mabhi256/memlab/internal/broadcast"
	"github.com/mabhi256/memlab/internal/exporter"
	"github.com/mabhi256/memlab/internal/state"
)

const (
	shutdownTimeout = 5 * time.Second

	healthPath = "/healthz"
	statePath  = "/state"
)

var (
	serveAddr      string
	servePath      string
	serveFeedStdin bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose memory telemetry as Prometheus metrics",
	Long: `Serve runs the sampling loop headless and exposes every snapshot as
memlab_* gauges. It also serves:
  /healthz    200 once the first snapshot is published
  /state      the latest projected state with its managed history, as JSON

Examples:
  memlab serve                          # Listen on :9464, metrics at /metrics
  memlab serve --addr 127.0.0.1:9000
  producer | memlab serve --feed-stdin  # Merge "name value" counter lines`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Serve.Addr = serveAddr
		}
		if cmd.Flags().Changed("path") {
			cfg.Serve.Path = servePath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, closer, err := setupLogger(cfg.Log, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var input io.Reader
		if serveFeedStdin {
			input = cmd.InOrStdin()
		}
		p, err := newPipeline(cfg.Metrics, input, log)
		if err != nil {
			return err
		}

		exp := exporter.New()
		expSub := p.loop.Subscribe(exp)
		defer expSub.Close()

		dispatcher := state.NewSerialDispatcher(log)
		store := state.NewStore(p.loop, dispatcher, cfg.Metrics.HistoryCapacity(), log)
		storeSub := store.Subscribe(broadcast.ObserverFunc[state.UiState](logState(log)))
		defer func() {
			storeSub.Close()
			store.Close()
			dispatcher.Close()
		}()

		mux, err := newServeMux(cfg.Serve.Path, exp, store)
		if err != nil {
			return err
		}
		server := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(p.startFeeds(gctx))
		g.Go(func() error {
			return p.loop.Run(gctx)
		})
		g.Go(func() error {
			log.Info().Str("addr", cfg.Serve.Addr).Str("path", cfg.Serve.Path).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		err = g.Wait()
		stats := p.loop.Stats()
		log.Info().Uint64("ticks", stats.Ticks).Uint64("failures", stats.Failures).Msg("Stopped")
		return err
	},
}

// newServeMux rejects a metrics path that collides with the built-in routes;
// ServeMux would panic on the duplicate pattern.
func newServeMux(metricsPath string, exp *exporter.Exporter, store *state.Store) (*http.ServeMux, error) {
	if metricsPath == healthPath || metricsPath == statePath {
		return nil, fmt.Errorf("metrics path %q is reserved", metricsPath)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, exp.Handler())

	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := store.Latest(); !ok {
			http.Error(w, "waiting for first snapshot", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "ok\n")
	})

	mux.HandleFunc(statePath, func(w http.ResponseWriter, r *http.Request) {
		latest, ok := store.Latest()
		if !ok {
			http.Error(w, "waiting for first snapshot", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(latest)
	})

	return mux, nil
}

func logState(log zerolog.Logger) func(state.UiState) {
	return func(s state.UiState) {
		log.Debug().
			Stringer("working_set", s.Snapshot.Process.WorkingSet).
			Stringer("managed", s.Snapshot.TotalManagedCommitted()).
			Stringer("time_in_gc", s.Snapshot.GC.TimeInGCPercent).
			Int("history", len(s.TotalManagedHistory)).
			Msg("Snapshot projected")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides serve.addr)")
	serveCmd.Flags().StringVar(&servePath, "path", "", "Metrics path (overrides serve.path)")
	serveCmd.Flags().BoolVar(&serveFeedStdin, "feed-stdin", false, `Read "name value" counter lines from stdin`)
}
