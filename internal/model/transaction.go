package model

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionStatus is the persisted execution status.
type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// TransactionRecord is the normalized record persisted per account and chain.
type TransactionRecord struct {
	ID             string            `json:"id"`
	ChainID        string            `json:"chain_id"`
	AccountID      string            `json:"account_id"`
	AssetID        uint32            `json:"asset_id"`
	BlockNumber    uint64            `json:"block_number"`
	ExtrinsicIndex uint32            `json:"extrinsic_index"`
	TxHash         string            `json:"tx_hash"`
	Sender         string            `json:"sender"`
	Receiver       string            `json:"receiver,omitempty"`
	Amount         string            `json:"amount,omitempty"`
	Fee            string            `json:"fee,omitempty"`
	FeeAssetID     *uint32           `json:"fee_asset_id,omitempty"`
	Status         TransactionStatus `json:"status"`
	Module         string            `json:"module"`
	Function       string            `json:"function"`
	Call           json.RawMessage   `json:"call,omitempty"`
	Swap           *SwapRecord       `json:"swap,omitempty"`
	Timestamp      int64             `json:"timestamp"`
}

// SwapRecord is the persisted form of SwapDetail.
type SwapRecord struct {
	AssetIDIn  uint32 `json:"asset_id_in"`
	AssetIDOut uint32 `json:"asset_id_out"`
	AmountIn   string `json:"amount_in"`
	AmountOut  string `json:"amount_out"`
}

// TransactionRecordID derives a stable record identifier from the extrinsic
// hash, falling back to the block position when no hash is known.
func TransactionRecordID(hash []byte, blockNumber uint64, index uint32) string {
	if len(hash) > 0 {
		return hexutil.Encode(hash)
	}
	return fmt.Sprintf("%d-%d", blockNumber, index)
}
