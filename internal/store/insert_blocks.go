package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertBlocks stores block rows in the block table.
func (r *Repository) InsertBlocks(ctx context.Context, blocks []model.Block) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_blocks", err, start) }()

	if len(blocks) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `
INSERT INTO block (
	indep_hash,
	height,
	previous_block,
	timestamp,
	diff,
	last_retarget,
	hash_list_merkle,
	wallet_list_hash,
	reward_pool,
	reward_addr
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare block batch: %w", err)
	}

	for _, b := range blocks {
		if err = batch.Append(
			b.IndepHash,
			b.Height,
			b.PreviousBlock,
			b.Timestamp,
			b.Diff,
			b.LastRetarget,
			b.HashListMerkle,
			b.WalletListHash,
			b.RewardPool,
			b.RewardAddr,
		); err != nil {
			return fmt.Errorf("append block: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
