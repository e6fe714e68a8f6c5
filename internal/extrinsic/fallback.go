package extrinsic

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/fee"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/nested"
)

// FallbackMatcher reports any other extrinsic of the account with its status
// and fee only. On EVM chains an Ethereum.transact call is reported from its
// Executed event.
type FallbackMatcher struct{}

func (FallbackMatcher) Name() string { return "fallback" }

func (m FallbackMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	if ctx.Chain.IsEthereumBased && in.Extrinsic.Call.Path.EqualFold(model.EthereumTransact) {
		return m.matchEthereum(in, ctx)
	}
	return m.matchSubstrate(in, ctx)
}

// ethereumExecuted is the Ethereum.Executed event:
// [from, to, transaction_hash, exit_reason].
type ethereumExecuted struct {
	From    common.Address
	To      common.Address
	TxHash  common.Hash
	Succeed bool
}

func parseEthereumExecuted(record codec.EventRecord) (ethereumExecuted, error) {
	from, err := record.Param(0, "from").Bytes()
	if err != nil {
		return ethereumExecuted{}, fmt.Errorf("executed from: %w", err)
	}
	to, err := record.Param(1, "to").Bytes()
	if err != nil {
		return ethereumExecuted{}, fmt.Errorf("executed to: %w", err)
	}
	hash, err := record.Param(2, "transaction_hash").Bytes()
	if err != nil {
		return ethereumExecuted{}, fmt.Errorf("executed hash: %w", err)
	}
	reason, _, err := record.Param(3, "exit_reason").Variant()
	if err != nil {
		return ethereumExecuted{}, fmt.Errorf("executed exit reason: %w", err)
	}

	return ethereumExecuted{
		From:    common.BytesToAddress(from),
		To:      common.BytesToAddress(to),
		TxHash:  common.BytesToHash(hash),
		Succeed: reason == "Succeed",
	}, nil
}

func (FallbackMatcher) matchEthereum(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	scoped := in.Scoped()
	record, ok := firstEvent(scoped, model.EthereumExecuted)
	if !ok {
		return nil, nil
	}

	executed, err := parseEthereumExecuted(record)
	if err != nil {
		return nil, err
	}

	from := model.AccountIDFromBytes(executed.From.Bytes())
	if from != ctx.Account {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	utility, ok := ctx.Assets.Utility()
	if !ok {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:        from,
		CallPath:      model.EthereumTransact,
		Call:          in.Extrinsic.Call.JSON(),
		ExtrinsicHash: executed.TxHash.Bytes(),
		Fee:           fee.NativeResolver{}.Resolve(in.Index, from, in.Events),
		PeerID:        model.PeerRef(model.AccountIDFromBytes(executed.To.Bytes())),
		IsSuccess:     success && executed.Succeed,
		AssetID:       utility.ID,
	}, nil
}

// matchSubstrate decodes the outer call directly when the account signed the
// extrinsic, and otherwise looks for the account as a delegation owner.
func (FallbackMatcher) matchSubstrate(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	signer, ok := in.Signer()
	if !ok {
		return nil, nil
	}

	call := in.Extrinsic.Call
	callSender := signer
	if signer != ctx.Account {
		res, err := nested.NewUnwrapper(signer).UnwrapNotNested(in.Extrinsic.Call)
		if errors.Is(err, nested.ErrNoMatch) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		call = res.FirstCall()
		callSender = res.CallSender()
	}

	if callSender != ctx.Account {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	utility, ok := ctx.Assets.Utility()
	if !ok {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:    callSender,
		CallPath:  call.Path,
		Call:      in.Extrinsic.Call.JSON(),
		Fee:       fee.NativeResolver{}.Resolve(in.Index, signer, in.Events),
		IsSuccess: success,
		AssetID:   utility.ID,
	}, nil
}
