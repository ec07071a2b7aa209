package store

import (
	"context"
	"fmt"
	"time"
)

// MissingHeights returns every height in [0, maxHeight] absent from block,
// using the numbers()/LEFT ANTI JOIN idiom but without the random sampling
// and LIMIT the ingestion-time query uses: the doctor needs the complete
// gap set, not a sample of it.
func (r *Repository) MissingHeights(ctx context.Context, maxHeight uint64) ([]uint64, error) {
	start := time.Now()
	var err error
	defer func() { r.observe("missing_heights", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFast)
	defer cancel()

	const query = `
WITH toUInt64(?) AS mx
SELECT number AS height
FROM numbers(mx + 1) AS m
LEFT ANTI JOIN (
	SELECT height
	FROM block
	WHERE height <= mx
) AS b ON b.height = m.number
WHERE m.number <= mx
ORDER BY height`

	rows, err := r.conn.Query(ctx, query, maxHeight)
	if err != nil {
		return nil, fmt.Errorf("query missing heights: %w", err)
	}
	defer rows.Close()

	var heights []uint64
	for rows.Next() {
		var height uint64
		if err = rows.Scan(&height); err != nil {
			return nil, fmt.Errorf("scan missing height: %w", err)
		}
		heights = append(heights, height)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missing heights: %w", err)
	}

	return heights, nil
}
