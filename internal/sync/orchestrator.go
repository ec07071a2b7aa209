// Package sync implements the single long-lived state machine that keeps
// the local mirror caught up with the remote chain: a one-shot bulk import
// on startup followed by a polling loop that detects and recovers from
// forks. Its state variables are owned by exactly one goroutine, the same
// single-writer-goroutine shape the teacher's ingester services use, so no
// locking guards them.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xloem/vartex/internal/clock"
	"github.com/xloem/vartex/internal/model"
	"github.com/xloem/vartex/internal/projector"
)

// maxForkWalk bounds resolveFork's walk back through parent hashes so a
// pathological reorg cannot monopolize the process.
const maxForkWalk = 1024

// Config carries the tunables spec.md names for the orchestrator.
type Config struct {
	ParallelWorkers     int
	PollInterval        time.Duration
	DevelopmentSyncFrom *int
}

// Orchestrator owns the sync state machine.
type Orchestrator struct {
	node    NodeClient
	doctor  Doctor
	repo    Repository
	writer  Writer
	pool    Pool
	logger  *zap.Logger
	metrics Metrics
	cfg     Config

	topHash          string
	topHeight        uint64
	gatewayHeight    uint64
	currentHeight    uint64
	isPaused         bool
	isPollingStarted bool
}

// New constructs an Orchestrator.
func New(node NodeClient, doctor Doctor, repo Repository, writer Writer, pool Pool, logger *zap.Logger, metrics Metrics, cfg Config) *Orchestrator {
	if cfg.ParallelWorkers <= 0 {
		cfg.ParallelWorkers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Orchestrator{
		node:    node,
		doctor:  doctor,
		repo:    repo,
		writer:  writer,
		pool:    pool,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

func (o *Orchestrator) observe(operation string, err error, started time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.Observe(operation, err, started)
}

// StartSync runs the startup sequence described in spec.md §4.6: fetch the
// authoritative hash list, detect first run, repair gaps via the doctor,
// bulk-import everything remaining, then hand off to StartPolling.
func (o *Orchestrator) StartSync(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { o.observe("start_sync", err, start) }()

	info, err := o.node.NetworkInfo(ctx)
	if err != nil {
		return fmt.Errorf("start sync: fetch network info: %w", err)
	}
	o.topHeight = info.Height

	hashList, err := o.node.HashList(ctx, 0, info.Height)
	if err != nil {
		return fmt.Errorf("start sync: fetch hash list: %w", err)
	}
	o.topHeight = uint64(len(hashList))

	o.gatewayHeight, err = o.repo.MaxBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("start sync: read gateway height: %w", err)
	}
	firstRun := o.gatewayHeight == 0

	heightHash := make(map[uint64]string)
	var unsynced []uint64
	if firstRun {
		for height, hash := range hashList {
			heightHash[uint64(height)] = hash
		}
		unsynced = heightsFor(hashList)
	} else {
		missing, merr := o.doctor.FindMissingBlocks(ctx, hashList)
		if merr != nil {
			err = merr
			return fmt.Errorf("start sync: find missing blocks: %w", err)
		}
		unsynced = make([]uint64, 0, len(missing))
		for _, m := range missing {
			unsynced = append(unsynced, m.Height)
			heightHash[m.Height] = m.Hash
		}
	}

	sort.Slice(unsynced, func(i, j int) bool { return unsynced[i] < unsynced[j] })

	if o.cfg.DevelopmentSyncFrom != nil {
		from := *o.cfg.DevelopmentSyncFrom
		if from < 0 {
			from = 0
		}
		if from > len(unsynced) {
			from = len(unsynced)
		}
		unsynced = unsynced[from:]
	}

	if len(unsynced) == 0 {
		o.logger.Info("nothing to sync, entering polling loop")
		return o.StartPolling(ctx)
	}

	o.logger.Info("bulk import starting", zap.Int("heights", len(unsynced)))

	importByHeight := func(ctx context.Context, height uint64) error {
		hash, ok := heightHash[height]
		if !ok {
			return fmt.Errorf("import height %d: no hash available", height)
		}
		// Runs on pool worker goroutines, so it must not touch orchestrator
		// state; the tip is re-read from the store on every poll.
		_, err := o.writeBlockByHash(ctx, hash)
		return err
	}

	progress, done := o.pool.ImportHeights(ctx, unsynced, importByHeight)
	for p := range progress {
		if p.Err != nil {
			continue
		}
		if p.Height > o.currentHeight {
			o.currentHeight = p.Height
		}
		o.logger.Debug("block imported", zap.Uint64("height", p.Height))
	}

	if poolErr := <-done; poolErr != nil {
		err = poolErr
		return fmt.Errorf("start sync: bulk import: %w", err)
	}

	o.logger.Info("bulk import complete", zap.Uint64("current_height", o.currentHeight))
	return o.StartPolling(ctx)
}

func heightsFor(hashList []string) []uint64 {
	heights := make([]uint64, len(hashList))
	for i := range hashList {
		heights[i] = uint64(i)
	}
	return heights
}

// importBlockByHash fetches, projects, and writes a single block, then
// advances the in-memory tip. Only the orchestrator's own goroutine calls it.
func (o *Orchestrator) importBlockByHash(ctx context.Context, hash string) error {
	block, err := o.writeBlockByHash(ctx, hash)
	if err != nil {
		return err
	}
	o.topHash = block.IndepHash
	if block.Height > o.gatewayHeight {
		o.gatewayHeight = block.Height
	}
	return nil
}

// writeBlockByHash fetches, projects, and writes a single block without
// touching orchestrator state.
func (o *Orchestrator) writeBlockByHash(ctx context.Context, hash string) (model.Block, error) {
	block, err := o.node.BlockByHash(ctx, hash)
	if err != nil {
		return model.Block{}, fmt.Errorf("import block %s: fetch: %w", hash, err)
	}

	txs := make([]model.Transaction, 0, len(block.Txs))
	for _, txID := range block.Txs {
		tx, terr := o.node.Transaction(ctx, txID)
		if terr != nil {
			return model.Block{}, fmt.Errorf("import block %s: fetch tx %s: %w", hash, txID, terr)
		}
		txs = append(txs, tx)
	}

	projected := projector.Project(block, txs)
	if err := o.writer.WriteBlock(ctx, projected); err != nil {
		return model.Block{}, fmt.Errorf("import block %s: write: %w", hash, err)
	}
	return block, nil
}

// StartPolling runs spec.md §4.6's polling loop until ctx is canceled.
func (o *Orchestrator) StartPolling(ctx context.Context) error {
	o.isPollingStarted = true

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if o.isPaused {
			if err := clock.SleepWithContext(ctx, o.cfg.PollInterval); err != nil {
				return err
			}
			continue
		}

		if err := o.poll(ctx); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) poll(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { o.observe("poll", err, start) }()

	info, err := o.node.NetworkInfo(ctx)
	if err != nil {
		o.logger.Warn("poll: fetch network info failed", zap.Error(err))
		err = nil
		return clock.SleepWithContext(ctx, o.cfg.PollInterval)
	}

	// Re-derive the local tip from the store rather than trusting the
	// in-memory copy: a fork resolution may have rolled it back since the
	// last time this loop ran.
	if err = o.refreshLocalTip(ctx); err != nil {
		return fmt.Errorf("poll: refresh local tip: %w", err)
	}

	if info.Current == o.topHash {
		return clock.SleepWithContext(ctx, o.cfg.PollInterval)
	}

	currentRemoteBlock, err := o.node.BlockByHash(ctx, info.Current)
	if err != nil {
		return fmt.Errorf("poll: fetch current remote block: %w", err)
	}

	parent, err := o.node.BlockByHash(ctx, currentRemoteBlock.PreviousBlock)
	if err != nil {
		return fmt.Errorf("poll: fetch parent block: %w", err)
	}

	if parent.IndepHash != o.topHash {
		if err = o.resolveFork(ctx, currentRemoteBlock, 0); err != nil {
			return fmt.Errorf("poll: resolve fork: %w", err)
		}
		return nil
	}

	if err = o.importBlockByHash(ctx, info.Current); err != nil {
		return fmt.Errorf("poll: import new block: %w", err)
	}
	return nil
}

// refreshLocalTip re-reads (topHash, gatewayHeight) from the store,
// matching spec.md's getMaxHeightBlock read at the top of every poll.
func (o *Orchestrator) refreshLocalTip(ctx context.Context) error {
	height, err := o.repo.MaxBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("read gateway height: %w", err)
	}
	hash, err := o.repo.BlockHash(ctx, height)
	if err != nil {
		return fmt.Errorf("read top hash: %w", err)
	}
	o.gatewayHeight = height
	o.topHash = hash
	return nil
}

// resolveFork implements spec.md §4.6's fork-recovery walk: pause, walk
// backward through parent hashes collecting every diverging block until an
// already-known ancestor is found, delete everything past that ancestor,
// then walk forward re-importing the collected blocks from the ancestor
// through the original diverging tip.
//
// The delete must run before any reimport, not interleaved with the
// backward walk: deleting by height after a block has already been
// written at that height (as an interleaved walk-and-import would do one
// level up) erases the very block the walk just re-added.
func (o *Orchestrator) resolveFork(ctx context.Context, tip model.Block, depth int) error {
	o.isPaused = true
	defer func() { o.isPaused = false }()

	// diverging holds every remote block from tip back to (but not
	// including) the known ancestor, in tip-to-ancestor order.
	diverging := []model.Block{tip}
	current := tip

	for {
		if depth > maxForkWalk {
			return fmt.Errorf("resolve fork at height %d: %w", tip.Height, ErrForkWalkExceeded)
		}

		parent, err := o.node.BlockByHash(ctx, current.PreviousBlock)
		if err != nil {
			return fmt.Errorf("resolve fork: fetch ancestor: %w", err)
		}

		localHash, err := o.repo.BlockHash(ctx, parent.Height)
		if err != nil {
			return fmt.Errorf("resolve fork: read local hash: %w", err)
		}

		if localHash != "" && localHash == parent.IndepHash {
			if err := o.repo.DeleteBlocksFrom(ctx, parent.Height+1); err != nil {
				return fmt.Errorf("resolve fork: delete orphaned blocks: %w", err)
			}
			for i := len(diverging) - 1; i >= 0; i-- {
				if err := o.importBlockByHash(ctx, diverging[i].IndepHash); err != nil {
					return fmt.Errorf("resolve fork: reimport %s: %w", diverging[i].IndepHash, err)
				}
			}
			return nil
		}

		diverging = append(diverging, parent)
		current = parent
		depth++
	}
}

// ErrForkWalkExceeded is returned when a fork recovery walk exceeds
// maxForkWalk; callers treat this as fatal, matching spec.md's guidance
// that a pathological reorg should terminate the process rather than spin.
var ErrForkWalkExceeded = errors.New("fork walk exceeded maximum depth")
