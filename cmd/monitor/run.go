package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-launch-monitor/internal/config"
	"solana-launch-monitor/internal/decoder"
	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/enrichment"
	"solana-launch-monitor/internal/ingestion"
	"solana-launch-monitor/internal/logging"
	"solana-launch-monitor/internal/observability"
	"solana-launch-monitor/internal/publish"
	"solana-launch-monitor/internal/solana"
	chstore "solana-launch-monitor/internal/storage/clickhouse"
	"solana-launch-monitor/internal/storage/migrations"
	pgstore "solana-launch-monitor/internal/storage/postgres"
	"solana-launch-monitor/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

var (
	flagWSURL         string
	flagPrograms      []string
	flagMetricsAddr   string
	flagPostgresDSN   string
	flagClickhouseDSN string
	flagRedisURL      string
	flagRedisChannel  string
	flagTradeTracking bool
)

func init() {
	runCmd.Flags().StringVar(&flagWSURL, "ws-url", "", "Solana WebSocket endpoint override")
	runCmd.Flags().StringSliceVar(&flagPrograms, "programs", nil, "Program IDs to subscribe to (default: pump.fun and launchpad)")
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Metrics and health HTTP address override (empty keeps config)")
	runCmd.Flags().StringVar(&flagPostgresDSN, "postgres-dsn", "", "PostgreSQL DSN for the event archive")
	runCmd.Flags().StringVar(&flagClickhouseDSN, "clickhouse-dsn", "", "ClickHouse DSN for curve snapshots")
	runCmd.Flags().StringVar(&flagRedisURL, "redis-url", "", "Redis URL for event publishing")
	runCmd.Flags().StringVar(&flagRedisChannel, "redis-channel", "", "Redis channel for event publishing")
	runCmd.Flags().BoolVar(&flagTradeTracking, "trade-tracking", false, "Apply trade events to curve progress")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live launch monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runMonitor(ctx, cfg, logger)
	},
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagWSURL != "" {
		cfg.Solana.WSURL = flagWSURL
	}
	if len(flagPrograms) > 0 {
		cfg.Solana.Programs = flagPrograms
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = flagMetricsAddr
	}
	if flagPostgresDSN != "" {
		cfg.Storage.PostgresDSN = flagPostgresDSN
	}
	if flagClickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = flagClickhouseDSN
	}
	if flagRedisURL != "" {
		cfg.Redis.URL = flagRedisURL
	}
	if flagRedisChannel != "" {
		cfg.Redis.Channel = flagRedisChannel
	}
	if cmd.Flags().Changed("trade-tracking") {
		cfg.Tracker.TradeTracking = flagTradeTracking
	}
}

func runMonitor(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	rpc := solana.NewHTTPClient(cfg.Solana.RPCURL,
		solana.WithLatencyObserver(func(method string, d time.Duration) {
			observability.RecordRPCLatency(method, d.Seconds())
		}),
	)

	wsCfg := solana.DefaultWSConfig()
	wsCfg.Logger = logger
	ws, err := solana.NewWSClient(ctx, cfg.Solana.WSURL, &wsCfg)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	defer ws.Close()

	opts := ingestion.MonitorOptions{
		Source: ingestion.NewWSLogSource(ws, cfg.Solana.Programs, logger),
		RPC:    rpc,
		Parser: decoder.NewParser(nil),
		Tracker: tracker.New(tracker.Options{
			Target:              cfg.Tracker.Target,
			NearCompletionRatio: cfg.Tracker.NearCompletionRatio,
			MaxQueuedEvents:     cfg.Tracker.MaxQueuedEvents,
			TradeTracking:       cfg.Tracker.TradeTracking,
		}),
		Enrichment: enrichment.NewQueue(rpc, enrichment.Options{
			Capacity:    cfg.Enrichment.Capacity,
			TrimTo:      cfg.Enrichment.TrimTo,
			Spacing:     cfg.Enrichment.Spacing,
			MaxRetries:  cfg.Enrichment.MaxRetries,
			BackoffBase: cfg.Enrichment.BackoffBase,
			BackoffMax:  cfg.Enrichment.BackoffMax,
			Logger:      logger,
		}),
		ThrottleWindow:    cfg.Throttle.Window,
		LaunchHistory:     cfg.History.Launches,
		CompletionHistory: cfg.History.Completions,
		EnrichmentHistory: cfg.History.Enrichments,
		ConnectTimeout:    cfg.Solana.ConnectTimeout,
		Logger:            logger,
	}

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgstore.NewPool(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		opts.EventStore = pgstore.NewEventStore(pool)
		logger.Info("event archive enabled", zap.String("postgres", logging.RedactURL(dsn)))
	}

	if dsn := cfg.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close()
		opts.SnapshotStore = chstore.NewSnapshotStore(conn)
		logger.Info("snapshot archive enabled", zap.String("clickhouse", logging.RedactURL(dsn)))
	}

	if url := cfg.Redis.URL; url != "" {
		pub, err := publish.NewRedisPublisher(ctx, url, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Publisher = pub
		logger.Info("event publishing enabled", zap.String("channel", pub.Channel()))
	}

	monitor, err := ingestion.NewMonitor(opts)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := newStatusServer(cfg.Metrics.Addr, monitor)
		go func() {
			logger.Info("starting metrics server", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := monitor.Start(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go logEvents(monitor, logger, done)

	logger.Info("monitoring programs", zap.Strings("programs", cfg.Solana.Programs))
	err = monitor.Wait()
	<-done

	stats := monitor.Stats()
	logger.Info("shutdown complete",
		zap.Int64("notifications", stats.Notifications),
		zap.Int64("launches", stats.Launches),
		zap.Int64("completions", stats.Completions),
		zap.Int64("enrichments", stats.Enrichments),
		zap.Duration("uptime", stats.Uptime),
	)
	return err
}

// logEvents drains the monitor outputs until both are closed.
func logEvents(m *ingestion.Monitor, logger *zap.Logger, done chan<- struct{}) {
	defer close(done)

	events, snapshots := m.Events(), m.Snapshots()
	for events != nil || snapshots != nil {
		select {
		case e, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			logEvent(logger, e)
		case curves, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			if len(curves) > 0 {
				logger.Debug("curves updated",
					zap.Int("active", len(curves)),
					zap.String("leader", curves[0].Mint),
					zap.Float64("leader_progress", curves[0].Progress),
				)
			}
		}
	}
}

func logEvent(logger *zap.Logger, e domain.Event) {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.String("priority", string(e.Priority)),
		zap.String("mint", e.Mint),
		zap.String("signature", e.Signature),
	}
	switch {
	case e.Launch != nil:
		fields = append(fields, zap.String("symbol", e.Launch.Symbol), zap.String("source", e.Launch.Source.String()))
	case e.Curve != nil:
		fields = append(fields, zap.Float64("progress", e.Curve.Progress))
	}

	if e.Priority == domain.PriorityHigh {
		logger.Warn("event", fields...)
		return
	}
	logger.Info("event", fields...)
}

// newStatusServer serves /metrics, /health and /stats.
func newStatusServer(addr string, m *ingestion.Monitor) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !m.Stats().Connected {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("disconnected"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Stats          ingestion.Stats
			NearCompletion []domain.CurveState
			Launches       []domain.Launch
		}{
			Stats:          m.Stats(),
			NearCompletion: m.NearCompletion(),
			Launches:       m.RecentLaunches(),
		})
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
