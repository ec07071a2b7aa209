package querybuilder

import "strings"

// TagFilter names one tag constraint: a tag name plus either a single
// value or a set of candidate values.
type TagFilter struct {
	Name   string
	Value  string
	Values []string
}

// TagQuery is a single generated statement for one TagFilter.
type TagQuery struct {
	CQL  string
	Args []any
}

// Tags builds one statement per filter against tx_tag, each projecting
// tx_id, matching spec.md's per-filter (not combined) Query Builder
// contract for tag lookups.
func Tags(filters []TagFilter) []TagQuery {
	queries := make([]TagQuery, 0, len(filters))
	for _, f := range filters {
		var where strings.Builder
		where.WriteString("name = ?")
		args := []any{f.Name}

		if len(f.Values) > 0 {
			placeholders := make([]string, len(f.Values))
			for i, v := range f.Values {
				placeholders[i] = "?"
				args = append(args, v)
			}
			where.WriteString(" AND value IN (")
			where.WriteString(strings.Join(placeholders, ","))
			where.WriteString(")")
		} else {
			where.WriteString(" AND value = ?")
			args = append(args, f.Value)
		}

		queries = append(queries, TagQuery{
			CQL:  "SELECT tx_id FROM tx_tag WHERE " + where.String(),
			Args: args,
		})
	}
	return queries
}
