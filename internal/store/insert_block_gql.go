package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// InsertBlockGQLRows writes the same rows into both block_gql_asc and
// block_gql_desc; the two tables differ only in ClickHouse's ORDER BY
// clustering direction, not in the columns they carry.
func (r *Repository) InsertBlockGQLRows(ctx context.Context, rows []model.BlockGQLRow) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_block_gql_rows", err, start) }()

	if len(rows) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	for _, table := range []string{"block_gql_asc", "block_gql_desc"} {
		if err = r.insertBlockGQLInto(ctx, table, rows); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) insertBlockGQLInto(ctx context.Context, table string, rows []model.BlockGQLRow) error {
	query := fmt.Sprintf(`INSERT INTO %s (indep_hash, height, timestamp) VALUES`, table)

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", table, err)
	}

	for _, row := range rows {
		if err := batch.Append(row.IndepHash, row.Height, row.Timestamp); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
