package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertTransactions stores rows in the transaction table.
func (r *Repository) InsertTransactions(ctx context.Context, txs []model.TransactionRow) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_transactions", err, start) }()

	if len(txs) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `
INSERT INTO transaction (
	tx_id,
	indep_hash,
	block_height,
	block_timestamp,
	owner,
	target,
	quantity,
	reward,
	data_root,
	data_size,
	signature,
	last_tx,
	format,
	tag_count
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare transaction batch: %w", err)
	}

	for _, tx := range txs {
		if err = batch.Append(
			tx.TxID,
			tx.IndepHash,
			tx.Height,
			tx.Timestamp,
			tx.Owner,
			tx.Target,
			tx.Quantity,
			tx.Reward,
			tx.DataRoot,
			tx.DataSize,
			tx.Signature,
			tx.LastTx,
			int32(tx.Format),
			int32(tx.TagCount),
		); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}
