package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertTxOffsets stores rows in the tx_offset table. Callers only pass
// rows for transactions whose DataSize is non-zero; the projector already
// filters the rest out.
func (r *Repository) InsertTxOffsets(ctx context.Context, rows []model.TxOffsetRow) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_tx_offsets", err, start) }()

	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `INSERT INTO tx_offset (tx_id, data_size) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare tx_offset batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(row.TxID, row.DataSize); err != nil {
			return fmt.Errorf("append tx_offset row: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert tx offsets: %w", err)
	}
	return nil
}
