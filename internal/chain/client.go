package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"extrinsicScope/internal/model"
)

// Observer records the outcome of node RPC operations.
type Observer interface {
	Observe(operation string, err error, started time.Time)
}

type nopObserver struct{}

func (nopObserver) Observe(string, error, time.Time) {}

// Client wraps a go-ethereum RPC client speaking the Substrate node API.
//
// Extrinsics and storage values are returned as raw bytes when the node
// serves hex strings and as JSON documents when it serves decoded objects.
type Client struct {
	rpcClient *rpc.Client
	observer  Observer

	mu          sync.RWMutex
	numberCache map[string]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, observer Observer) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return newClient(rpcClient, observer), nil
}

func newClient(rpcClient *rpc.Client, observer Observer) *Client {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Client{
		rpcClient:   rpcClient,
		observer:    observer,
		numberCache: make(map[string]uint64),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	started := time.Now()
	err := c.rpcClient.CallContext(ctx, result, method, args...)
	c.observer.Observe(method, err, started)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

type header struct {
	ParentHash string         `json:"parentHash"`
	Number     hexutil.Uint64 `json:"number"`
}

type signedBlock struct {
	Block struct {
		Header     header            `json:"header"`
		Extrinsics []json.RawMessage `json:"extrinsics"`
	} `json:"block"`
}

// GetBlock returns the block body for blockHash.
func (c *Client) GetBlock(ctx context.Context, blockHash string) (model.Block, error) {
	var resp *signedBlock
	if err := c.call(ctx, &resp, "chain_getBlock", blockHash); err != nil {
		return model.Block{}, err
	}
	if resp == nil {
		return model.Block{}, fmt.Errorf("block %s not found", blockHash)
	}

	extrinsics := make([][]byte, 0, len(resp.Block.Extrinsics))
	for i, raw := range resp.Block.Extrinsics {
		data, err := payload(raw)
		if err != nil {
			return model.Block{}, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		extrinsics = append(extrinsics, data)
	}

	number := uint64(resp.Block.Header.Number)
	c.cacheNumber(blockHash, number)
	return model.Block{Hash: blockHash, Number: number, Extrinsics: extrinsics}, nil
}

// QueryStorage returns the storage value under key at blockHash, or nil when
// the item is empty.
func (c *Client) QueryStorage(ctx context.Context, key, blockHash string) ([]byte, error) {
	var raw json.RawMessage
	if err := c.call(ctx, &raw, "state_getStorage", key, blockHash); err != nil {
		return nil, err
	}
	return payload(raw)
}

// BlockHash returns the hash of the block at number.
func (c *Client) BlockHash(ctx context.Context, number uint64) (string, error) {
	var hash *string
	if err := c.call(ctx, &hash, "chain_getBlockHash", number); err != nil {
		return "", err
	}
	if hash == nil || *hash == "" {
		return "", fmt.Errorf("block %d not found", number)
	}
	c.cacheNumber(*hash, number)
	return *hash, nil
}

// FinalizedHead returns the hash of the latest finalized block.
func (c *Client) FinalizedHead(ctx context.Context) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "chain_getFinalizedHead"); err != nil {
		return "", err
	}
	return hash, nil
}

// BlockNumber returns the number of blockHash, using an in-memory cache.
func (c *Client) BlockNumber(ctx context.Context, blockHash string) (uint64, error) {
	c.mu.RLock()
	number, ok := c.numberCache[blockHash]
	c.mu.RUnlock()
	if ok {
		return number, nil
	}

	var head *header
	if err := c.call(ctx, &head, "chain_getHeader", blockHash); err != nil {
		return 0, err
	}
	if head == nil {
		return 0, fmt.Errorf("header %s not found", blockHash)
	}

	number = uint64(head.Number)
	c.cacheNumber(blockHash, number)
	return number, nil
}

func (c *Client) cacheNumber(blockHash string, number uint64) {
	c.mu.Lock()
	c.numberCache[blockHash] = number
	c.mu.Unlock()
}

// payload converts one RPC value into bytes: hex strings are decoded, JSON
// documents are kept as they are and null yields nil.
func payload(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '"' {
		return []byte(trimmed), nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return nil, err
	}
	data, err := hexutil.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("decode hex payload: %w", err)
	}
	return data, nil
}
