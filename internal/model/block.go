// Package model defines domain models for the chain mirror.
package model

import "time"

// ProofOfAccess describes the access-proof envelope carried by a block.
type ProofOfAccess struct {
	Option   string
	TXPath   string
	DataPath string
	Chunk    string
}

// Block represents a chain block as returned by the remote node.
type Block struct {
	IndepHash      string
	Height         uint64
	PreviousBlock  string
	Timestamp      time.Time
	Txs            []string
	Tags           []Tag
	Diff           string
	LastRetarget   int64
	HashListMerkle string
	WalletListHash string
	RewardPool     int64
	RewardAddr     string
	POA            *ProofOfAccess
}
