// Package projector turns a fetched block and its transactions into the
// row set every persisted table needs, following the same loop-and-append
// shape the node fetchers use to assemble a batch of domain rows.
package projector

import (
	"github.com/xloem/vartex/internal/model"
)

// Project builds every row the writer needs to persist block and its
// transactions, applying the projection rules: tag linked-list indices,
// optional POA row, and tx_offset rows gated on a non-zero data size.
func Project(block model.Block, txs []model.Transaction) model.ProjectedBlock {
	out := model.ProjectedBlock{
		Block: block,
		GQLRows: []model.BlockGQLRow{{
			IndepHash: block.IndepHash,
			Height:    block.Height,
			Timestamp: block.Timestamp,
		}},
		HeightByHash: model.BlockHeightByHash{
			BlockHash: block.IndepHash,
			Height:    block.Height,
		},
	}

	if block.POA != nil {
		out.POA = &model.ProofOfAccessRow{
			IndepHash: block.IndepHash,
			Option:    block.POA.Option,
			TXPath:    block.POA.TXPath,
			DataPath:  block.POA.DataPath,
			Chunk:     block.POA.Chunk,
		}
	}

	out.ByTxID = make([]model.BlockByTxID, 0, len(txs))
	out.Transactions = make([]model.TransactionRow, 0, len(txs))

	for _, tx := range txs {
		out.ByTxID = append(out.ByTxID, model.BlockByTxID{
			TxID:      tx.ID,
			IndepHash: block.IndepHash,
			Height:    block.Height,
		})

		out.Transactions = append(out.Transactions, model.TransactionRow{
			TxID:      tx.ID,
			IndepHash: block.IndepHash,
			Height:    block.Height,
			Timestamp: block.Timestamp,
			Owner:     tx.Owner,
			Target:    tx.Target,
			Quantity:  tx.Quantity,
			Reward:    tx.Reward,
			DataRoot:  tx.DataRoot,
			DataSize:  tx.DataSize,
			Signature: tx.Signature,
			LastTx:    tx.LastTx,
			Format:    tx.Format,
			TagCount:  len(tx.Tags),
		})

		out.Tags = append(out.Tags, projectTags(tx)...)

		if tx.DataSize > 0 {
			out.Offsets = append(out.Offsets, model.TxOffsetRow{
				TxID:     tx.ID,
				DataSize: tx.DataSize,
			})
		}
	}

	return out
}

// projectTags assigns each tag its position in tx's tag list and links it
// to the next tag's index, leaving NextTagIndex nil on the last tag.
func projectTags(tx model.Transaction) []model.TagRow {
	if len(tx.Tags) == 0 {
		return nil
	}

	rows := make([]model.TagRow, 0, len(tx.Tags))
	for i, tag := range tx.Tags {
		var next *int
		if i+1 < len(tx.Tags) {
			n := i + 1
			next = &n
		}
		rows = append(rows, model.TagRow{
			TxID:         tx.ID,
			TagIndex:     i,
			NextTagIndex: next,
			Name:         tag.Name,
			Value:        tag.Value,
		})
	}
	return rows
}
