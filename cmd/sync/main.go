// Command sync runs the long-lived process that mirrors the remote chain
// into ClickHouse: bulk import on startup, then a polling loop that keeps
// up with new blocks and recovers from forks. Wiring mirrors
// cmd/utxo/backfill-ingester/main.go: parse config, build the observed
// node client and repository, start a metrics server, then hand off to the
// orchestrator's run loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xloem/vartex/internal/config"
	"github.com/xloem/vartex/internal/doctor"
	"github.com/xloem/vartex/internal/metrics"
	"github.com/xloem/vartex/internal/model"
	"github.com/xloem/vartex/internal/node"
	"github.com/xloem/vartex/internal/store"
	"github.com/xloem/vartex/internal/sync"
	"github.com/xloem/vartex/internal/workerpool"
)

// nodeRequestTimeout bounds a single remote-node HTTP call. spec.md names
// no dedicated env var for this; DB_TIMEOUT is schema-agreement wait, not
// node request latency, so this stays a fixed default rather than
// overloading an unrelated setting.
const nodeRequestTimeout = 30 * time.Second

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load(os.Args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("sync failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := store.NewRepository(cfg.ClickhouseDSN, metrics.NewStore())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repo.Close()
	writer := store.NewWriter(repo)

	rawClient := node.New(cfg.NodeURL, nodeRequestTimeout, logger)
	observedClient := node.NewObservedClient(rawClient, metrics.NewNode())

	dr := doctor.New(repo, observedClient, metrics.NewDoctor())
	pool := workerpool.New(cfg.ParallelWorkers)

	orchestrator := sync.New(
		nodeAdapter{observedClient},
		doctorAdapter{dr},
		repo,
		writer,
		poolAdapter{pool},
		logger,
		metrics.NewSync(),
		sync.Config{
			ParallelWorkers:     cfg.ParallelWorkers,
			PollInterval:        time.Duration(cfg.PollIntervalSeconds) * time.Second,
			DevelopmentSyncFrom: cfg.DevelopmentSyncLength,
		},
	)

	return orchestrator.StartSync(ctx)
}

// nodeAdapter narrows *node.ObservedClient to internal/sync.NodeClient,
// translating node.Info to sync.NodeInfo so the orchestrator doesn't
// depend on internal/node's package directly.
type nodeAdapter struct {
	client *node.ObservedClient
}

func (a nodeAdapter) NetworkInfo(ctx context.Context) (sync.NodeInfo, error) {
	info, err := a.client.NetworkInfo(ctx)
	return sync.NodeInfo{Height: info.Height, Current: info.Current}, err
}

func (a nodeAdapter) HashList(ctx context.Context, from, to uint64) ([]string, error) {
	return a.client.HashList(ctx, from, to)
}

func (a nodeAdapter) BlockByHash(ctx context.Context, hash string) (model.Block, error) {
	return a.client.BlockByHash(ctx, hash)
}

func (a nodeAdapter) Transaction(ctx context.Context, id string) (model.Transaction, error) {
	return a.client.Transaction(ctx, id)
}

// doctorAdapter narrows *doctor.Doctor to internal/sync.Doctor.
type doctorAdapter struct {
	doctor *doctor.Doctor
}

func (a doctorAdapter) FindMissingBlocks(ctx context.Context, hashList []string) ([]sync.MissingBlock, error) {
	missing, err := a.doctor.FindMissingBlocks(ctx, hashList)
	if err != nil {
		return nil, err
	}
	out := make([]sync.MissingBlock, len(missing))
	for i, m := range missing {
		out[i] = sync.MissingBlock{Height: m.Height, Hash: m.Hash}
	}
	return out, nil
}

// poolAdapter narrows *workerpool.Pool to internal/sync.Pool, translating
// the progress channel's element type.
type poolAdapter struct {
	pool *workerpool.Pool
}

func (a poolAdapter) ImportHeights(ctx context.Context, heights []uint64, importOne func(context.Context, uint64) error) (<-chan sync.Progress, <-chan error) {
	progress, done := a.pool.ImportHeights(ctx, heights, importOne)

	translated := make(chan sync.Progress, cap(progress))
	go func() {
		defer close(translated)
		for p := range progress {
			translated <- sync.Progress{Height: p.Height, Err: p.Err}
		}
	}()

	return translated, done
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
