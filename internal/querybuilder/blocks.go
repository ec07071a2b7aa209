package querybuilder

import "fmt"

// SortOrder chooses which physical block_gql table a block query reads.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// BlockQueryParams mirrors spec.md's Query Builder filters for a block
// range scan.
type BlockQueryParams struct {
	SortOrder SortOrder
	MinHeight uint64
	MaxHeight uint64
	Offset    uint64
	FetchSize uint64
}

// Blocks builds a parameterized SELECT against block_gql_asc or
// block_gql_desc depending on p.SortOrder, folding the client-requested
// offset into the height window: ascending queries push the lower bound
// forward by offset, descending queries pull the upper bound back by it.
func Blocks(p BlockQueryParams) (string, []any) {
	table := "block_gql_asc"
	minHeight, maxHeight := p.MinHeight, p.MaxHeight

	if p.SortOrder == SortDescending {
		table = "block_gql_desc"
		if maxHeight >= p.Offset {
			maxHeight -= p.Offset
		} else {
			maxHeight = 0
		}
	} else {
		minHeight += p.Offset
	}

	query := fmt.Sprintf(
		"SELECT indep_hash, height, timestamp FROM %s WHERE height >= ? AND height <= ? LIMIT ?",
		table,
	)
	return query, []any{minHeight, maxHeight, p.FetchSize}
}
