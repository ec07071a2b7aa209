// Package typeadapter converts loosely-typed values coming off the remote
// node's JSON wire format into the Go types the store expects.
package typeadapter

import (
	"strconv"

	"github.com/xloem/vartex/internal/model"
)

// ToLong coerces a value into an int64 the way the remote node's own
// "string-or-number" integer fields are meant to be read: nil or an empty
// string become 0, numeric strings are parsed base-10, and numeric types are
// cast directly. Overflow is not guarded against here, matching the node's
// own untyped-JSON-number behavior.
func ToLong(x any) int64 {
	switch v := x.(type) {
	case nil:
		return 0
	case string:
		if v == "" {
			return 0
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}

// TagTuple is the unordered 2-tuple projection of a model.Tag, used when
// de-duplicating a transaction or block's tag set.
type TagTuple struct {
	Name  string
	Value string
}

// TagSet de-duplicates a tag slice into an unordered set of tuples. The
// result is never nil so callers can write it straight into an array
// column without special-casing the empty case.
func TagSet(tags []model.Tag) []TagTuple {
	out := make([]TagTuple, 0, len(tags))
	seen := make(map[TagTuple]struct{}, len(tags))
	for _, t := range tags {
		tuple := TagTuple{Name: t.Name, Value: t.Value}
		if _, ok := seen[tuple]; ok {
			continue
		}
		seen[tuple] = struct{}{}
		out = append(out, tuple)
	}
	return out
}
