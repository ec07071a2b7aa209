package node

import (
	"context"
	"time"

	"github.com/xloem/vartex/internal/model"
)

// Metrics observes a single remote-node call.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// ObservedClient wraps a Client, recording metrics around every call, the
// same decorator shape internal/pkg/btcd/rpcclient.ObservedClient used for
// the bitcoin RPC client.
type ObservedClient struct {
	client  Client
	metrics Metrics
}

// NewObservedClient wraps client with metrics.
func NewObservedClient(client Client, metrics Metrics) *ObservedClient {
	return &ObservedClient{client: client, metrics: metrics}
}

func (c *ObservedClient) NetworkInfo(ctx context.Context) (info Info, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("network_info", err, started) }()
	info, err = c.client.NetworkInfo(ctx)
	return
}

func (c *ObservedClient) HashList(ctx context.Context, from, to uint64) (hashes []string, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("hash_list", err, started) }()
	hashes, err = c.client.HashList(ctx, from, to)
	return
}

func (c *ObservedClient) BlockByHash(ctx context.Context, hash string) (block model.Block, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("block_by_hash", err, started) }()
	block, err = c.client.BlockByHash(ctx, hash)
	return
}

func (c *ObservedClient) Transaction(ctx context.Context, id string) (tx model.Transaction, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("transaction", err, started) }()
	tx, err = c.client.Transaction(ctx, id)
	return
}

func (c *ObservedClient) HashAt(ctx context.Context, height uint64) (hash string, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("hash_at", err, started) }()
	hash, err = c.client.HashAt(ctx, height)
	return
}
