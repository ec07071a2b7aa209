package store

import (
	"context"
	"fmt"
	"time"
)

// MaxBlockHeight returns the maximum height stored in block.
func (r *Repository) MaxBlockHeight(ctx context.Context) (uint64, error) {
	start := time.Now()
	var err error
	defer func() { r.observe("max_block_height", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFast)
	defer cancel()

	const query = `SELECT coalesce(max(height), toUInt64(0)) AS max_height FROM block`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query max block height: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var height uint64
	if !rows.Next() {
		return 0, fmt.Errorf("max block height not found")
	}
	if err = rows.Scan(&height); err != nil {
		return 0, fmt.Errorf("scan max block height: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate max block height: %w", err)
	}

	return height, nil
}

// BlockHash returns the indep_hash stored for height, or "" if no block is
// persisted at that height.
func (r *Repository) BlockHash(ctx context.Context, height uint64) (string, error) {
	start := time.Now()
	var err error
	defer func() { r.observe("block_hash", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFast)
	defer cancel()

	const query = `SELECT indep_hash FROM block WHERE height = ? LIMIT 1`

	rows, err := r.conn.Query(ctx, query, height)
	if err != nil {
		return "", fmt.Errorf("query block hash: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", nil
	}

	var hash string
	if err = rows.Scan(&hash); err != nil {
		return "", fmt.Errorf("scan block hash: %w", err)
	}
	return hash, nil
}

// PreviousBlockHash returns the previous_block field stored for height.
func (r *Repository) PreviousBlockHash(ctx context.Context, height uint64) (string, error) {
	start := time.Now()
	var err error
	defer func() { r.observe("previous_block_hash", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFast)
	defer cancel()

	const query = `SELECT previous_block FROM block WHERE height = ? LIMIT 1`

	rows, err := r.conn.Query(ctx, query, height)
	if err != nil {
		return "", fmt.Errorf("query previous block hash: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", nil
	}

	var hash string
	if err = rows.Scan(&hash); err != nil {
		return "", fmt.Errorf("scan previous block hash: %w", err)
	}
	return hash, nil
}

// DeleteBlocksFrom removes every row keyed by height >= fromHeight across
// block, block_gql_asc, block_gql_desc, transaction and their dependent
// tables, used by the sync orchestrator to roll back an orphaned fork arm.
//
// tx_tag, tx_offset and poa carry no height column of their own, so those
// three are deleted first via a subquery against transaction/block while
// that parent data still exists; the height-keyed tables are then deleted
// directly, transaction included.
func (r *Repository) DeleteBlocksFrom(ctx context.Context, fromHeight uint64) error {
	start := time.Now()
	var err error
	defer func() { r.observe("delete_blocks_from", err, start) }()

	ctx, cancel := withProfile(ctx, ProfileFull)
	defer cancel()

	subqueryDeletes := []struct {
		table string
		where string
	}{
		{"tx_tag", "tx_id IN (SELECT tx_id FROM transaction WHERE block_height >= ?)"},
		{"tx_offset", "tx_id IN (SELECT tx_id FROM transaction WHERE block_height >= ?)"},
		{"poa", "indep_hash IN (SELECT indep_hash FROM block WHERE height >= ?)"},
	}
	for _, d := range subqueryDeletes {
		query := fmt.Sprintf(`ALTER TABLE %s DELETE WHERE %s`, d.table, d.where)
		if err = r.conn.Exec(ctx, query, fromHeight); err != nil {
			return fmt.Errorf("delete from %s: %w", d.table, err)
		}
	}

	heightColumns := []struct {
		table  string
		column string
	}{
		{"block", "height"},
		{"block_gql_asc", "height"},
		{"block_gql_desc", "height"},
		{"transaction", "block_height"},
		{"block_by_tx_id", "height"},
		{"block_height_by_block_hash", "height"},
	}
	for _, t := range heightColumns {
		query := fmt.Sprintf(`ALTER TABLE %s DELETE WHERE %s >= ?`, t.table, t.column)
		if err = r.conn.Exec(ctx, query, fromHeight); err != nil {
			return fmt.Errorf("delete from %s: %w", t.table, err)
		}
	}
	return nil
}
