package model

import (
	"encoding/json"
	"math/big"
)

// Fee is the amount charged for an extrinsic. A nil AssetID means the chain's
// native asset.
type Fee struct {
	Amount  *big.Int `json:"amount"`
	AssetID *uint32  `json:"asset_id,omitempty"`
}

// NativeFee builds a fee paid in the native asset.
func NativeFee(amount *big.Int) *Fee {
	return &Fee{Amount: amount}
}

// AssetFee builds a fee paid in a non-native asset.
func AssetFee(amount *big.Int, assetID uint32) *Fee {
	return &Fee{Amount: amount, AssetID: &assetID}
}

// IsNative reports whether the fee was paid in the native asset.
func (f *Fee) IsNative() bool {
	return f == nil || f.AssetID == nil
}

// SwapDetail describes an executed or attempted DEX swap.
type SwapDetail struct {
	AssetIDIn  uint32   `json:"asset_id_in"`
	AssetIDOut uint32   `json:"asset_id_out"`
	AmountIn   *big.Int `json:"amount_in"`
	AmountOut  *big.Int `json:"amount_out"`
}

// ExtrinsicProcessingResult is the classification of one extrinsic for the
// account of interest.
type ExtrinsicProcessingResult struct {
	Sender        AccountID       `json:"sender"`
	CallPath      CallPath        `json:"call_path"`
	Call          json.RawMessage `json:"call"`
	ExtrinsicHash []byte          `json:"extrinsic_hash,omitempty"`
	Fee           *Fee            `json:"fee,omitempty"`
	PeerID        *AccountID      `json:"peer_id,omitempty"`
	Amount        *big.Int        `json:"amount,omitempty"`
	IsSuccess     bool            `json:"is_success"`
	AssetID       uint32          `json:"asset_id"`
	Swap          *SwapDetail     `json:"swap,omitempty"`
}

// TransactionSubscriptionResult places a processing result inside its block.
type TransactionSubscriptionResult struct {
	ProcessingResult ExtrinsicProcessingResult
	BlockNumber      uint64
	TxIndex          uint32
	ExtrinsicHash    []byte
}

// PeerRef returns a pointer to a copy of id.
func PeerRef(id AccountID) *AccountID {
	if id.IsEmpty() {
		return nil
	}
	return &id
}
