package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xloem/vartex/internal/model"
	"github.com/xloem/vartex/pkg/safe"
)

// InsertTags stores rows in the tx_tag table.
func (r *Repository) InsertTags(ctx context.Context, tags []model.TagRow) error {
	start := time.Now()
	var err error
	defer func() { r.observe("insert_tags", err, start) }()

	if len(tags) == 0 {
		return nil
	}

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	const query = `INSERT INTO tx_tag (tx_id, tag_index, next_tag_index, name, value) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare tx_tag batch: %w", err)
	}

	for _, tag := range tags {
		index, convErr := safe.Uint32(tag.TagIndex)
		if convErr != nil {
			return fmt.Errorf("tag index for tx %s: %w", tag.TxID, convErr)
		}

		var next *uint32
		if tag.NextTagIndex != nil {
			v, convErr := safe.Uint32(*tag.NextTagIndex)
			if convErr != nil {
				return fmt.Errorf("next tag index for tx %s: %w", tag.TxID, convErr)
			}
			next = &v
		}

		if err = batch.Append(tag.TxID, index, next, tag.Name, tag.Value); err != nil {
			return fmt.Errorf("append tx_tag row: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}
