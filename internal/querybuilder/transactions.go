// Package querybuilder produces parameterized SELECT statements for the
// downstream query frontend. It never executes a query itself; serving
// queries over a network transport stays out of this module's scope.
package querybuilder

import (
	"fmt"
	"strings"

	"github.com/xloem/vartex/internal/typeadapter"
)

// TransactionQueryParams mirrors the filters spec.md's Query Builder
// accepts for a transaction search.
type TransactionQueryParams struct {
	ID        string
	IDs       []string
	To        string
	Since     string // time-based UUID string, parsed to unix seconds via typeadapter.ParseTimeUUID
	Status    string
	MinHeight *uint64
	MaxHeight *uint64
}

// Transactions builds a parameterized SELECT against the transaction
// table. Every term is ANDed; ALLOW FILTERING is always appended, matching
// spec.md's unconditional inclusion of it.
func Transactions(p TransactionQueryParams) (string, []any, error) {
	var where []string
	var args []any

	if p.ID != "" {
		where = append(where, "tx_id = ?")
		args = append(args, p.ID)
	}
	if len(p.IDs) > 0 {
		placeholders := make([]string, len(p.IDs))
		for i, id := range p.IDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		where = append(where, fmt.Sprintf("tx_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if p.To != "" {
		where = append(where, "target = ?")
		args = append(args, p.To)
	}
	if p.Since != "" {
		since, err := typeadapter.ParseTimeUUID(p.Since)
		if err != nil {
			return "", nil, fmt.Errorf("since: %w", err)
		}
		where = append(where, "block_timestamp < ?")
		args = append(args, since)
	}
	if p.Status == "confirmed" {
		where = append(where, "block_height >= 0")
	}
	if p.MinHeight != nil {
		where = append(where, "block_height >= ?")
		args = append(args, *p.MinHeight)
	}
	if p.MaxHeight != nil {
		where = append(where, "block_height <= ?")
		args = append(args, *p.MaxHeight)
	}

	query := "SELECT * FROM transaction"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ALLOW FILTERING"

	return query, args, nil
}
