// Package node talks to the remote chain's HTTP API: the wire format and
// endpoint layout are specific to that node and out of this module's
// scope, but a concrete JSON-over-HTTP implementation ships here because
// every sync pipeline in this codebase pairs its ingestion logic with one
// rather than leaving callers to supply their own.
package node

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xloem/vartex/internal/model"
)

// Client is the remote-node surface the sync orchestrator and doctor need.
type Client interface {
	NetworkInfo(ctx context.Context) (Info, error)
	HashList(ctx context.Context, from, to uint64) ([]string, error)
	BlockByHash(ctx context.Context, hash string) (model.Block, error)
	Transaction(ctx context.Context, id string) (model.Transaction, error)
	HashAt(ctx context.Context, height uint64) (string, error)
}

// Info mirrors the remote node's network-info response.
type Info struct {
	Height  uint64
	Current string
}

// HTTPClient is a minimal JSON-over-HTTP implementation of Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New constructs an HTTPClient against baseURL, using timeout as the
// per-request deadline. logger receives a warning for every wire field
// BlockByHash/Transaction don't recognize, rather than failing the decode.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getRawWire fetches path and decodes its body into a loosely-typed map
// rather than a Go struct, the "single tagged-variant value type for
// ingestion" decodeBlock/decodeTransaction then coerce through
// typeadapter — the node's own numeric fields arrive as either a JSON
// number or a numeric string, which a strict-typed json.Decode can't
// tolerate.
func (c *HTTPClient) getRawWire(ctx context.Context, path string) (map[string]any, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// NetworkInfo fetches the node's current height and tip hash.
func (c *HTTPClient) NetworkInfo(ctx context.Context) (Info, error) {
	var info Info
	if err := c.getJSON(ctx, "/info", &info); err != nil {
		return Info{}, fmt.Errorf("network info: %w", err)
	}
	return info, nil
}

// HashList fetches the hash list covering [from, to].
func (c *HTTPClient) HashList(ctx context.Context, from, to uint64) ([]string, error) {
	var hashes []string
	path := fmt.Sprintf("/hash_list?from=%d&to=%d", from, to)
	if err := c.getJSON(ctx, path, &hashes); err != nil {
		return nil, fmt.Errorf("hash list: %w", err)
	}
	return hashes, nil
}

// BlockByHash fetches a full block, with its transaction-id list, by hash.
func (c *HTTPClient) BlockByHash(ctx context.Context, hash string) (model.Block, error) {
	raw, err := c.getRawWire(ctx, "/block/hash/"+hash)
	if err != nil {
		return model.Block{}, fmt.Errorf("block by hash: %w", err)
	}
	return decodeBlock(raw, c.logger), nil
}

// Transaction fetches a single transaction by id.
func (c *HTTPClient) Transaction(ctx context.Context, id string) (model.Transaction, error) {
	raw, err := c.getRawWire(ctx, "/tx/"+id)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction: %w", err)
	}
	return decodeTransaction(raw, c.logger), nil
}

// HashAt fetches the canonical hash the node reports for height.
func (c *HTTPClient) HashAt(ctx context.Context, height uint64) (string, error) {
	var hash string
	path := fmt.Sprintf("/block/height/%d/hash", height)
	if err := c.getJSON(ctx, path, &hash); err != nil {
		return "", fmt.Errorf("hash at height: %w", err)
	}
	return hash, nil
}
