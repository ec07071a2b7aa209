package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertPOAs stores proof-of-access rows in the poa table.
func (r *Repository) InsertPOAs(ctx context.Context, rows []model.ProofOfAccessRow) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_poas", err, start) }()

	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `INSERT INTO poa (indep_hash, option, tx_path, data_path, chunk) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare poa batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(row.IndepHash, row.Option, row.TXPath, row.DataPath, row.Chunk); err != nil {
			return fmt.Errorf("append poa row: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert poas: %w", err)
	}
	return nil
}
