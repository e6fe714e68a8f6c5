package indexer

import "context"

// HeadSource resolves block numbers and hashes on the node.
type HeadSource interface {
	FinalizedHead(ctx context.Context) (string, error)
	BlockNumber(ctx context.Context, blockHash string) (uint64, error)
	BlockHash(ctx context.Context, number uint64) (string, error)
}

// BlockProcessor processes one block by hash.
type BlockProcessor interface {
	Process(ctx context.Context, blockHash string) error
}
