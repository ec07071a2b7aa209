package querybuilder

import (
	"strings"
	"testing"
	"time"

	"github.com/xloem/vartex/internal/typeadapter"
)

func TestTransactionsAndsAllTerms(t *testing.T) {
	minHeight := uint64(10)
	query, args, err := Transactions(TransactionQueryParams{
		ID:        "TX1",
		To:        "TARGET1",
		Status:    "confirmed",
		MinHeight: &minHeight,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "tx_id = ?") || !strings.Contains(query, "target = ?") ||
		!strings.Contains(query, "block_height >= 0") || !strings.Contains(query, "block_height >= ?") {
		t.Fatalf("expected all filters anded into query, got %s", query)
	}
	if !strings.HasSuffix(query, "ALLOW FILTERING") {
		t.Fatalf("expected ALLOW FILTERING suffix, got %s", query)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d: %v", len(args), args)
	}
}

func TestTransactionsIDsBuildsInList(t *testing.T) {
	query, args, err := Transactions(TransactionQueryParams{IDs: []string{"A", "B", "C"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "tx_id IN (?,?,?)") {
		t.Fatalf("expected IN list with 3 placeholders, got %s", query)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

// TestTransactionsSinceParsesTimeUUID matches spec.md scenario 6:
// generateTransactionQuery({since: <timeuuid for 2024-01-01>}) must produce
// "block_timestamp < ?" with 1704067200 bound as its argument.
func TestTransactionsSinceParsesTimeUUID(t *testing.T) {
	since := typeadapter.TimeUUID(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	query, args, err := Transactions(TransactionQueryParams{Since: since.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(query, "block_timestamp < ?") {
		t.Fatalf("expected block_timestamp filter, got %s", query)
	}
	if len(args) != 1 || args[0] != int64(1704067200) {
		t.Fatalf("expected since converted to 1704067200, got %v", args)
	}
}

func TestTransactionsSinceRejectsInvalidUUID(t *testing.T) {
	if _, _, err := Transactions(TransactionQueryParams{Since: "not-a-uuid"}); err == nil {
		t.Fatal("expected error for invalid since value")
	}
}

func TestBlocksAscendingAppliesOffsetToMin(t *testing.T) {
	query, args := Blocks(BlockQueryParams{SortOrder: SortAscending, MinHeight: 10, MaxHeight: 100, Offset: 5, FetchSize: 20})
	if !strings.Contains(query, "block_gql_asc") {
		t.Fatalf("expected ascending table, got %s", query)
	}
	if args[0] != uint64(15) {
		t.Fatalf("expected offset folded into min height, got %v", args[0])
	}
}

func TestBlocksDescendingAppliesOffsetToMax(t *testing.T) {
	query, args := Blocks(BlockQueryParams{SortOrder: SortDescending, MinHeight: 0, MaxHeight: 100, Offset: 5, FetchSize: 20})
	if !strings.Contains(query, "block_gql_desc") {
		t.Fatalf("expected descending table, got %s", query)
	}
	if args[1] != uint64(95) {
		t.Fatalf("expected offset folded into max height, got %v", args[1])
	}
}

func TestTagsOneStatementPerFilter(t *testing.T) {
	got := Tags([]TagFilter{
		{Name: "App-Name", Value: "vartex"},
		{Name: "Content-Type", Values: []string{"text/plain", "image/png"}},
	})

	if len(got) != 2 {
		t.Fatalf("expected one query per filter, got %d", len(got))
	}
	if !strings.Contains(got[0].CQL, "value = ?") {
		t.Fatalf("expected scalar equality for single-value filter, got %s", got[0].CQL)
	}
	if !strings.Contains(got[1].CQL, "value IN (?,?)") {
		t.Fatalf("expected IN clause for multi-value filter, got %s", got[1].CQL)
	}
}
