// Interactive viewer server: serves the composed strategy charts over REST
// and pushes recomposed charts to websocket subscribers whenever the
// selection changes.
//
// Usage:
//
//	go run cmd/stratviz-viewer/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"stratviz/internal/config"
	"stratviz/internal/domain"
	"stratviz/internal/httpapi"
	"stratviz/internal/store"
	"stratviz/internal/util"
	"stratviz/internal/viewer"
)

func main() {
	cfgPath := "config/stratviz.yaml"
	if p := os.Getenv("STRATVIZ_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tables := store.NewParquetStore(cfg.Storage.VizDataDir)

	var catalog store.MetricsStore
	if cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening metrics catalog: %v", err)
		}
		defer db.Close()
		catalog = db
	}

	initial := domain.Selection{
		Strategy:  cfg.Viewer.DefaultStrategy,
		Timeframe: cfg.Viewer.DefaultTimeframe,
		Benchmark: cfg.Viewer.DefaultBenchmark,
		Target:    cfg.Viewer.DefaultTarget,
	}
	ctrl := viewer.NewController(ctx, tables, initial, logger)

	hub := viewer.NewHub(logger)
	ctrl.AttachBroadcaster(hub)
	go hub.Run(ctx)

	strategies := make([]string, 0, len(cfg.Strategies))
	for name := range cfg.Strategies {
		strategies = append(strategies, name)
	}
	sort.Strings(strategies)

	srv := httpapi.NewServer(ctrl, hub, catalog, httpapi.Options{
		Strategies: strategies,
		Timeframes: cfg.Viewer.Timeframes,
		Targets:    cfg.Viewer.Targets,
		Benchmarks: cfg.Viewer.Benchmarks,
	}, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("viewer server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down viewer server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
