// Package doctor finds the two kinds of damage a live mirror can develop:
// missing heights behind the tip (gaps) and heights whose stored hash no
// longer matches the remote node (forks the sync orchestrator failed to
// catch in flight). The gap query is grounded on the repository's
// RandomMissingBlockHeights LEFT ANTI JOIN idiom, made exhaustive rather
// than sampled since the doctor must return every gap, not a sample of
// them.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Metrics observes a single doctor scan.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Repository is the subset of internal/store.Repository the doctor needs.
type Repository interface {
	MaxBlockHeight(ctx context.Context) (uint64, error)
	MissingHeights(ctx context.Context, maxHeight uint64) ([]uint64, error)
	BlockHash(ctx context.Context, height uint64) (string, error)
	StreamBlockHashes(ctx context.Context, visit func(height uint64, hash string)) error
}

// NodeHashLister fetches the remote node's canonical hash for a height.
type NodeHashLister interface {
	HashAt(ctx context.Context, height uint64) (string, error)
}

// MissingBlock names a gap in the mirror by height and the hash the remote
// node reports for it.
type MissingBlock struct {
	Height uint64
	Hash   string
}

// Doctor scans the mirror for gaps and mismatched hashes.
type Doctor struct {
	repo    Repository
	node    NodeHashLister
	metrics Metrics
}

// New constructs a Doctor.
func New(repo Repository, node NodeHashLister, metrics Metrics) *Doctor {
	return &Doctor{repo: repo, node: node, metrics: metrics}
}

func (d *Doctor) observe(operation string, err error, started time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.Observe(operation, err, started)
}

// CheckForBlockGaps is a cheap probe: it compares the mirror's stored max
// height against topHeight and reports whether any gap could possibly
// exist, without enumerating it.
func (d *Doctor) CheckForBlockGaps(ctx context.Context, topHeight uint64) (bool, error) {
	start := time.Now()
	var err error
	defer func() { d.observe("check_for_block_gaps", err, start) }()

	maxHeight, err := d.repo.MaxBlockHeight(ctx)
	if err != nil {
		return false, fmt.Errorf("check for block gaps: %w", err)
	}
	return maxHeight < topHeight, nil
}

// FindBlockGaps returns every height from 0 through topHeight (inclusive)
// missing from the mirror, ascending.
func (d *Doctor) FindBlockGaps(ctx context.Context, topHeight uint64) ([]uint64, error) {
	start := time.Now()
	var err error
	defer func() { d.observe("find_block_gaps", err, start) }()

	heights, err := d.repo.MissingHeights(ctx, topHeight)
	if err != nil {
		return nil, fmt.Errorf("find block gaps: %w", err)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights, nil
}

// FindMissingBlocks runs the full height+hash diff spec.md §4.4 describes:
// build a height→hash map from the authoritative hashList, stream the
// local block table deleting every entry that matches on both height and
// indep_hash, and return whatever is left, sorted ascending. Unlike
// FindBlockGaps (presence only), this also catches a locally-stored block
// whose hash has diverged from the remote chain without ever being
// removed — the self-heal path for Invariant 1 after a crash mid-fork.
func (d *Doctor) FindMissingBlocks(ctx context.Context, hashList []string) ([]MissingBlock, error) {
	start := time.Now()
	var err error
	defer func() { d.observe("find_missing_blocks", err, start) }()

	remaining := make(map[uint64]string, len(hashList))
	for height, hash := range hashList {
		remaining[uint64(height)] = hash
	}

	if err = d.repo.StreamBlockHashes(ctx, func(height uint64, hash string) {
		if remaining[height] == hash {
			delete(remaining, height)
		}
	}); err != nil {
		return nil, fmt.Errorf("find missing blocks: stream local blocks: %w", err)
	}

	out := make([]MissingBlock, 0, len(remaining))
	for height, hash := range remaining {
		out = append(out, MissingBlock{Height: height, Hash: hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Height < out[j].Height })
	return out, nil
}

// VerifyHash compares the mirror's stored hash for height against the hash
// the remote node reports, returning false when they diverge — the signal
// the sync orchestrator's fork-recovery path waits on.
func (d *Doctor) VerifyHash(ctx context.Context, height uint64) (bool, error) {
	start := time.Now()
	var err error
	defer func() { d.observe("verify_hash", err, start) }()

	stored, err := d.repo.BlockHash(ctx, height)
	if err != nil {
		return false, fmt.Errorf("verify hash: read stored: %w", err)
	}
	if stored == "" {
		return false, nil
	}

	remote, err := d.node.HashAt(ctx, height)
	if err != nil {
		return false, fmt.Errorf("verify hash: read remote: %w", err)
	}

	return stored == remote, nil
}
