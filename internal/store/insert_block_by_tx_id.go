package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertBlocksByTxID writes to block_by_tx_id, the other hash/height lookup
// table spec.md requires. Same NOT EXISTS guard as
// InsertBlockHeightsByHash, keyed on tx_id instead.
func (r *Repository) InsertBlocksByTxID(ctx context.Context, rows []model.BlockByTxID) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_blocks_by_tx_id", err, start) }()

	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `
INSERT INTO block_by_tx_id (tx_id, indep_hash, height)
SELECT ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM block_by_tx_id WHERE tx_id = ?
)`

	for _, row := range rows {
		if err = r.conn.Exec(ctx, query, row.TxID, row.IndepHash, row.Height, row.TxID); err != nil {
			return fmt.Errorf("insert block by tx id: %w", err)
		}
	}
	return nil
}
