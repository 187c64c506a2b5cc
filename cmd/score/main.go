// Package main provides the scoring pipeline entry point.
// Executes: fetching → aligning → predicting → ranking → assembling → writing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"time-to-shop/internal/align"
	"time-to-shop/internal/config"
	"time-to-shop/internal/domain"
	"time-to-shop/internal/logging"
	"time-to-shop/internal/model"
	"time-to-shop/internal/observability"
	"time-to-shop/internal/orchestrator"
	"time-to-shop/internal/runsummary"
	"time-to-shop/internal/storage"
	chstore "time-to-shop/internal/storage/clickhouse"
	"time-to-shop/internal/storage/localfile"
	"time-to-shop/internal/storage/memory"
	pgstore "time-to-shop/internal/storage/postgres"
)

func main() {
	// Parse flags
	query := flag.String("query", "", "Override the feature query (default: full feature table)")
	noUpload := flag.Bool("no-upload", false, "Skip the warehouse sink")
	saveLocal := flag.Bool("save-local", false, "Also write predictions to a local CSV file")
	output := flag.String("output", "predictions_output.csv", "Local CSV output path (with -save-local)")
	modelPath := flag.String("model-path", "", "Model artifact path (overrides TTS_MODEL_PATH)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides TTS_LOG_LEVEL)")
	useMemory := flag.Bool("use-memory", false, "Score the built-in fixture table instead of ClickHouse")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty: disabled)")
	flag.Parse()

	// Load config from environment, apply flag overrides
	cfg := config.Load()
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(config.Requirements{
		NeedSource:        !*useMemory,
		NeedWarehouseSink: !*noUpload,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, cancelling run", zap.String("signal", sig.String()))
		close(interrupted)
		cancel()
	}()

	// Metrics endpoint
	var metrics *observability.Metrics
	if *metricsAddr != "" {
		metrics = observability.NewMetrics("")
		go serveMetrics(logger, *metricsAddr)
	}

	// Load the model before touching any warehouse: a bad artifact must
	// fail the run without a single connection opened.
	manifest := domain.DefaultFeatureManifest()
	m, err := model.Load(cfg.ModelPath, manifest, logger)
	if err != nil {
		logger.Error("model load failed", zap.Error(err))
		os.Exit(1)
	}

	// Feature source
	var source storage.FeatureSource
	if *useMemory {
		source = memory.NewFeatureSource(memory.FixtureFeatureTable())
		logger.Info("using in-memory fixture feature table")
	} else {
		conn, err := chstore.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			logger.Error("connect to clickhouse", zap.Error(err))
			os.Exit(1)
		}
		defer conn.Close()
		source = chstore.NewFeatureSource(conn, cfg.FeatureTable)
	}

	// Output sinks
	var sinks []storage.ScoreSink
	if !*noUpload {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Error("connect to postgres", zap.Error(err))
			os.Exit(1)
		}
		defer pool.Close()
		sinks = append(sinks, pgstore.NewScoreSink(pool, cfg.ScoreTable))
	}
	if *saveLocal {
		sinks = append(sinks, localfile.NewCSVSink(*output))
	}
	if len(sinks) == 0 {
		fmt.Fprintln(os.Stderr, "configuration error: -no-upload without -save-local leaves no output sink")
		os.Exit(1)
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Source:  source,
		Sinks:   sinks,
		Aligner: align.New(manifest, nil, logger),
		Model:   m,
		Query:   *query,
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		logger.Error("build pipeline", zap.Error(err))
		os.Exit(1)
	}

	result, runErr := orch.Run(ctx)
	fmt.Println(runsummary.Render(result))

	select {
	case <-interrupted:
		os.Exit(130)
	default:
	}
	if runErr != nil || errors.Is(ctx.Err(), context.Canceled) {
		os.Exit(1)
	}
}

// serveMetrics exposes /metrics and /health for scrapers.
func serveMetrics(logger *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
