package subscription

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"extrinsicScope/internal/model"
)

// NewRecord maps a classified extrinsic into the persisted record of account.
// It reports false when the classified asset is not known on chain.
func NewRecord(result model.TransactionSubscriptionResult, chain model.Chain, account model.AccountID, timestamp int64) (model.TransactionRecord, bool) {
	processing := result.ProcessingResult
	if _, ok := chain.Asset(processing.AssetID); !ok {
		return model.TransactionRecord{}, false
	}

	status := model.TransactionFailed
	if processing.IsSuccess {
		status = model.TransactionSuccess
	}

	record := model.TransactionRecord{
		ID:             model.TransactionRecordID(result.ExtrinsicHash, result.BlockNumber, result.TxIndex),
		ChainID:        chain.ChainID,
		AccountID:      account.Hex(),
		AssetID:        processing.AssetID,
		BlockNumber:    result.BlockNumber,
		ExtrinsicIndex: result.TxIndex,
		Sender:         processing.Sender.Hex(),
		Status:         status,
		Module:         processing.CallPath.Module,
		Function:       processing.CallPath.Function,
		Call:           processing.Call,
		Timestamp:      timestamp,
	}
	if len(result.ExtrinsicHash) > 0 {
		record.TxHash = hexutil.Encode(result.ExtrinsicHash)
	}

	if processing.PeerID != nil {
		if processing.Sender == account {
			record.Receiver = processing.PeerID.Hex()
		} else {
			record.Receiver = account.Hex()
		}
	}
	if processing.Amount != nil {
		record.Amount = processing.Amount.String()
	}
	if processing.Fee != nil && processing.Fee.Amount != nil {
		record.Fee = processing.Fee.Amount.String()
		if processing.Fee.AssetID != nil {
			feeAsset := *processing.Fee.AssetID
			record.FeeAssetID = &feeAsset
		}
	}
	if swap := processing.Swap; swap != nil {
		record.Swap = &model.SwapRecord{
			AssetIDIn:  swap.AssetIDIn,
			AssetIDOut: swap.AssetIDOut,
			AmountIn:   bigString(swap.AmountIn),
			AmountOut:  bigString(swap.AmountOut),
		}
	}
	return record, true
}
