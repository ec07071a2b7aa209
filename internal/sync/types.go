package sync

import (
	"context"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// NodeClient is the subset of internal/node.Client the orchestrator needs.
type NodeClient interface {
	NetworkInfo(ctx context.Context) (NodeInfo, error)
	HashList(ctx context.Context, from, to uint64) ([]string, error)
	BlockByHash(ctx context.Context, hash string) (model.Block, error)
	Transaction(ctx context.Context, id string) (model.Transaction, error)
}

// NodeInfo mirrors internal/node.Info without importing that package
// directly, so the orchestrator depends only on the shape it needs.
type NodeInfo struct {
	Height  uint64
	Current string
}

// Doctor is the subset of internal/doctor.Doctor the orchestrator needs.
type Doctor interface {
	FindMissingBlocks(ctx context.Context, hashList []string) ([]MissingBlock, error)
}

// MissingBlock mirrors internal/doctor.MissingBlock.
type MissingBlock struct {
	Height uint64
	Hash   string
}

// Repository is the subset of internal/store.Repository the orchestrator
// needs for fork bookkeeping and top-of-chain discovery.
type Repository interface {
	MaxBlockHeight(ctx context.Context) (uint64, error)
	BlockHash(ctx context.Context, height uint64) (string, error)
	DeleteBlocksFrom(ctx context.Context, fromHeight uint64) error
}

// Writer is the subset of internal/store.Writer the orchestrator needs.
type Writer interface {
	WriteBlock(ctx context.Context, block model.ProjectedBlock) error
}

// Pool imports a set of heights with bounded concurrency and reports
// per-height completion. It matches internal/workerpool.Pool's shape.
type Pool interface {
	ImportHeights(ctx context.Context, heights []uint64, importOne func(context.Context, uint64) error) (<-chan Progress, <-chan error)
}

// Progress mirrors internal/workerpool.Progress.
type Progress struct {
	Height uint64
	Err    error
}

// Metrics observes a single orchestrator operation.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}
