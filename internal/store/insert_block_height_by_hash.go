package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertBlockHeightsByHash writes to block_height_by_block_hash, the
// hash-to-height lookup table.
// ClickHouse has no native IF NOT EXISTS for a single-row insert; an
// INSERT ... SELECT guarded by a NOT EXISTS subquery approximates the same
// first-writer-wins intent spec.md asks for without a logged batch.
func (r *Repository) InsertBlockHeightsByHash(ctx context.Context, rows []model.BlockHeightByHash) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_block_heights_by_hash", err, start) }()

	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `
INSERT INTO block_height_by_block_hash (block_hash, height)
SELECT ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM block_height_by_block_hash WHERE block_hash = ?
)`

	for _, row := range rows {
		if err = r.conn.Exec(ctx, query, row.BlockHash, row.Height, row.BlockHash); err != nil {
			return fmt.Errorf("insert block height by hash: %w", err)
		}
	}
	return nil
}
