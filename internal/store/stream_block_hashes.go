package store

import (
	"context"
	"fmt"
	"time"
)

// StreamBlockHashes calls visit once per row of the block table, height and
// indep_hash only, so the doctor's full-table diff never has to materialize
// an entire block's row into memory just to compare two columns. Runs under
// the fast profile, matching the teacher's eachRow-style scan idiom for
// large sequential reads.
func (r *Repository) StreamBlockHashes(ctx context.Context, visit func(height uint64, hash string)) error {
	start := time.Now()
	var err error
	defer func() { r.observe("stream_block_hashes", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFast)
	defer cancel()

	rows, err := r.conn.Query(ctx, `SELECT height, indep_hash FROM block`)
	if err != nil {
		return fmt.Errorf("stream block hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var height uint64
		var hash string
		if err = rows.Scan(&height, &hash); err != nil {
			return fmt.Errorf("scan block hash: %w", err)
		}
		visit(height, hash)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate block hashes: %w", err)
	}
	return nil
}
