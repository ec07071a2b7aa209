package node

import (
	"time"

	"go.uber.org/zap"

	"github.com/xloem/vartex/internal/model"
	"github.com/xloem/vartex/internal/typeadapter"
)

// blockWireFields and transactionWireFields list every key decodeBlock and
// decodeTransaction know how to read. Anything else present in the raw
// object is logged via typeadapter.SkipUnknownField and dropped, matching
// spec.md's "dynamic, permissive JSON" policy of never failing ingestion
// over an unrecognized field.
var blockWireFields = map[string]struct{}{
	"indep_hash": {}, "height": {}, "previous_block": {}, "timestamp": {},
	"txs": {}, "tags": {}, "diff": {}, "last_retarget": {},
	"hash_list_merkle": {}, "wallet_list_hash": {}, "reward_pool": {},
	"reward_addr": {}, "poa": {},
}

var transactionWireFields = map[string]struct{}{
	"id": {}, "owner": {}, "target": {}, "quantity": {}, "reward": {},
	"data_root": {}, "data_size": {}, "signature": {}, "last_tx": {},
	"format": {}, "tags": {},
}

// decodeBlock converts the loosely-typed map a block's JSON body decodes
// into (the node's numeric fields arrive as either a JSON number or a
// numeric string) into model.Block, coercing every such field through
// typeadapter.ToLong instead of a strict-typed json.Decode that would fail
// the whole block over one field's representation.
func decodeBlock(raw map[string]any, logger *zap.Logger) model.Block {
	warnUnknownFields(raw, blockWireFields, logger)

	block := model.Block{
		IndepHash:      stringField(raw, "indep_hash"),
		Height:         uint64(typeadapter.ToLong(raw["height"])),
		PreviousBlock:  stringField(raw, "previous_block"),
		Timestamp:      time.Unix(typeadapter.ToLong(raw["timestamp"]), 0).UTC(),
		Txs:            stringSliceField(raw, "txs"),
		Tags:           tagsField(raw, "tags"),
		Diff:           stringField(raw, "diff"),
		LastRetarget:   typeadapter.ToLong(raw["last_retarget"]),
		HashListMerkle: stringField(raw, "hash_list_merkle"),
		WalletListHash: stringField(raw, "wallet_list_hash"),
		RewardPool:     typeadapter.ToLong(raw["reward_pool"]),
		RewardAddr:     stringField(raw, "reward_addr"),
	}

	if poa, ok := raw["poa"].(map[string]any); ok {
		block.POA = &model.ProofOfAccess{
			Option:   stringField(poa, "option"),
			TXPath:   stringField(poa, "tx_path"),
			DataPath: stringField(poa, "data_path"),
			Chunk:    stringField(poa, "chunk"),
		}
	}

	return block
}

// decodeTransaction mirrors decodeBlock for the transaction wire shape.
func decodeTransaction(raw map[string]any, logger *zap.Logger) model.Transaction {
	warnUnknownFields(raw, transactionWireFields, logger)

	return model.Transaction{
		ID:        stringField(raw, "id"),
		Owner:     stringField(raw, "owner"),
		Target:    stringField(raw, "target"),
		Quantity:  stringField(raw, "quantity"),
		Reward:    stringField(raw, "reward"),
		DataRoot:  stringField(raw, "data_root"),
		DataSize:  typeadapter.ToLong(raw["data_size"]),
		Signature: stringField(raw, "signature"),
		LastTx:    stringField(raw, "last_tx"),
		Format:    int(typeadapter.ToLong(raw["format"])),
		Tags:      tagsField(raw, "tags"),
	}
}

func warnUnknownFields(raw map[string]any, known map[string]struct{}, logger *zap.Logger) {
	for field, value := range raw {
		if _, ok := known[field]; !ok {
			typeadapter.SkipUnknownField(logger, field, value)
		}
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func stringSliceField(raw map[string]any, key string) []string {
	items, _ := raw[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// tagsField reads a wire tag list into model.Tag, preserving position and
// duplicates exactly as the node sent them. This feeds internal/projector's
// tag_index/tag_count derivation directly, which needs the tag list's
// literal length and order — deduplicating here would under-count
// tag_count and drop tx_tag rows for a transaction carrying the same
// (name, value) pair twice.
func tagsField(raw map[string]any, key string) []model.Tag {
	items, _ := raw[key].([]any)
	tags := make([]model.Tag, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tags = append(tags, model.Tag{Name: stringField(fields, "name"), Value: stringField(fields, "value")})
	}
	return tags
}
