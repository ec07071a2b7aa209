package projector

import (
	"testing"
	"time"

	"github.com/xloem/vartex/internal/model"
)

func TestProject(t *testing.T) {
	block := model.Block{
		IndepHash: "BLOCK1",
		Height:    100,
		Timestamp: time.Unix(1700000000, 0),
		POA:       &model.ProofOfAccess{Option: "1", Chunk: "abc"},
	}
	txs := []model.Transaction{
		{
			ID:       "TX1",
			DataSize: 512,
			Tags:     []model.Tag{{Name: "Content-Type", Value: "text/plain"}, {Name: "App-Name", Value: "vartex"}},
		},
		{
			ID:       "TX2",
			DataSize: 0,
		},
	}

	got := Project(block, txs)

	if len(got.GQLRows) != 1 || got.GQLRows[0].Height != 100 {
		t.Fatalf("unexpected gql rows: %+v", got.GQLRows)
	}
	if got.HeightByHash.BlockHash != "BLOCK1" || got.HeightByHash.Height != 100 {
		t.Fatalf("unexpected height-by-hash row: %+v", got.HeightByHash)
	}
	if got.POA == nil || got.POA.Chunk != "abc" {
		t.Fatalf("expected poa row to be projected, got %+v", got.POA)
	}
	if len(got.Transactions) != 2 || got.Transactions[0].TagCount != 2 {
		t.Fatalf("unexpected transaction rows: %+v", got.Transactions)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tag rows, got %d", len(got.Tags))
	}
	if got.Tags[0].NextTagIndex == nil || *got.Tags[0].NextTagIndex != 1 {
		t.Fatalf("expected first tag to link to index 1, got %+v", got.Tags[0].NextTagIndex)
	}
	if got.Tags[1].NextTagIndex != nil {
		t.Fatalf("expected last tag to have nil NextTagIndex, got %v", *got.Tags[1].NextTagIndex)
	}
	if len(got.Offsets) != 1 || got.Offsets[0].TxID != "TX1" {
		t.Fatalf("expected only TX1 to produce an offset row, got %+v", got.Offsets)
	}
}

func TestProjectNoPOA(t *testing.T) {
	got := Project(model.Block{IndepHash: "B2", Height: 1}, nil)
	if got.POA != nil {
		t.Fatalf("expected nil poa row when block has none, got %+v", got.POA)
	}
	if len(got.Transactions) != 0 {
		t.Fatalf("expected no transaction rows, got %+v", got.Transactions)
	}
}
