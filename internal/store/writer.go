package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/xloem/vartex/internal/model"
)

// Writer persists a single projected block across every table it touches.
// Each table's statement runs on its own goroutine, matching the
// fan-out/join shape ingestion pipelines in this codebase have always used
// for a single unit of work; unlike a Cassandra logged batch, these writes
// are not transactional with each other, so a self-healing retry driven by
// the doctor is what keeps the mirror consistent across a partial failure.
type Writer struct {
	repo *Repository
}

// NewWriter constructs a Writer around repo.
func NewWriter(repo *Repository) *Writer {
	return &Writer{repo: repo}
}

// WriteBlock persists every row produced by the projector for one block.
func (w *Writer) WriteBlock(ctx context.Context, block model.ProjectedBlock) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := []func(context.Context) error{
		func(ctx context.Context) error { return w.repo.InsertBlocks(ctx, []model.Block{block.Block}) },
		func(ctx context.Context) error { return w.repo.InsertBlockGQLRows(ctx, block.GQLRows) },
		func(ctx context.Context) error {
			return w.repo.InsertBlockHeightsByHash(ctx, []model.BlockHeightByHash{block.HeightByHash})
		},
		func(ctx context.Context) error { return w.repo.InsertBlocksByTxID(ctx, block.ByTxID) },
		func(ctx context.Context) error { return w.repo.InsertTransactions(ctx, block.Transactions) },
		func(ctx context.Context) error { return w.repo.InsertTags(ctx, block.Tags) },
		func(ctx context.Context) error { return w.repo.InsertTxOffsets(ctx, block.Offsets) },
	}
	if block.POA != nil {
		poa := *block.POA
		tasks = append(tasks, func(ctx context.Context) error { return w.repo.InsertPOAs(ctx, []model.ProofOfAccessRow{poa}) })
	}

	errs := make(chan error, len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(context.Context) error) {
			defer wg.Done()
			if err := task(ctx); err != nil {
				select {
				case errs <- err:
				default:
				}
				cancel()
			}
		}(task)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return fmt.Errorf("write block %s: %w", block.Block.IndepHash, err)
		}
	}
	return nil
}
