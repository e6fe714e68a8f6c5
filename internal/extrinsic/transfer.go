package extrinsic

import (
	"errors"
	"fmt"
	"math/big"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/fee"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/nested"
)

var (
	balancesAmountPaths = []model.CallPath{
		model.BalancesTransfer,
		model.BalancesTransferKeepAlive,
		model.BalancesTransferAllowDeath,
		model.BalancesForceTransfer,
	}
	balancesAllPaths = []model.CallPath{model.BalancesTransferAll}

	ormlPallets        = []string{"Tokens", "Currencies"}
	ormlAmountCalls    = []string{"transfer", "transfer_keep_alive"}
	ormlAllCalls       = []string{"transfer_all"}
	assetsPallets      = []string{model.DefaultAssetsPallet, "PoolAssets", "ForeignAssets"}
	assetsTransferCall = []string{"transfer", "transfer_keep_alive"}
)

func expand(pallets, functions []string) []model.CallPath {
	out := make([]model.CallPath, 0, len(pallets)*len(functions))
	for _, pallet := range pallets {
		for _, function := range functions {
			out = append(out, model.NewCallPath(pallet, function))
		}
	}
	return out
}

// transfer is a transfer call reached through the call tree of an extrinsic.
type transfer struct {
	call       codec.Call
	callSender model.AccountID
	dest       model.AccountID
}

// involves reports whether account sends or receives the transfer.
func (t transfer) involves(account model.AccountID) bool {
	return account == t.callSender || account == t.dest
}

func unwrapTransfer(in Input, signer model.AccountID, paths []model.CallPath, destArgs ...string) (transfer, bool, error) {
	res, err := nested.NewUnwrapper(signer).Unwrap(in.Extrinsic.Call, isOneOf(paths...))
	if errors.Is(err, nested.ErrNoMatch) {
		return transfer{}, false, nil
	}
	if err != nil {
		return transfer{}, false, err
	}

	call := res.FirstCall()
	dest, err := call.Args.FirstField(destArgs...).AccountID()
	if err != nil {
		return transfer{}, false, fmt.Errorf("%s destination: %w", call.Path, err)
	}
	return transfer{call: call, callSender: res.CallSender(), dest: dest}, true, nil
}

func amountArg(call codec.Call, names ...string) (*big.Int, error) {
	amount, err := call.Args.FirstField(names...).BigInt()
	if err != nil {
		return nil, fmt.Errorf("%s amount: %w", call.Path, err)
	}
	return amount, nil
}

// amountFromEvent recovers the amount of a transfer-all call, which carries
// none, from the first transfer event of the extrinsic.
func amountFromEvent(events []codec.EventRecord, path model.EventPath, position int) *big.Int {
	record, ok := firstEvent(events, path)
	if !ok {
		return new(big.Int)
	}
	amount, err := record.Param(position, "amount").BigInt()
	if err != nil {
		return new(big.Int)
	}
	return amount
}

// BalancesMatcher classifies native currency transfers.
type BalancesMatcher struct{}

func (BalancesMatcher) Name() string { return "balances" }

func (BalancesMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	signer, ok := in.Signer()
	if !ok {
		return nil, nil
	}

	scoped := in.Scoped()
	isAll := false
	found, ok, err := unwrapTransfer(in, signer, balancesAmountPaths, "dest")
	if err != nil {
		return nil, err
	}
	if !ok {
		found, ok, err = unwrapTransfer(in, signer, balancesAllPaths, "dest")
		if err != nil || !ok {
			return nil, err
		}
		isAll = true
	}

	if !found.involves(ctx.Account) {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	var amount *big.Int
	if isAll {
		amount = amountFromEvent(scoped, model.BalancesTransferred, 2)
	} else if amount, err = amountArg(found.call, "value", "amount"); err != nil {
		return nil, err
	}

	utility, ok := ctx.Assets.Utility()
	if !ok {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:    found.callSender,
		CallPath:  found.call.Path,
		Call:      in.Extrinsic.Call.JSON(),
		Fee:       fee.NativeResolver{}.Resolve(in.Index, signer, in.Events),
		PeerID:    peerOf(ctx.Account, found.callSender, found.dest),
		Amount:    amount,
		IsSuccess: success,
		AssetID:   utility.ID,
	}, nil
}

// AssetsMatcher classifies transfers of an assets pallet. The asset id is
// resolved against the local registry and unknown assets are declined.
type AssetsMatcher struct{}

func (AssetsMatcher) Name() string { return "assets" }

func (AssetsMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	signer, ok := in.Signer()
	if !ok {
		return nil, nil
	}

	found, ok, err := unwrapTransfer(in, signer, expand(assetsPalletsOf(ctx.Chain), assetsTransferCall), "target", "dest")
	if err != nil || !ok {
		return nil, err
	}
	if !found.involves(ctx.Account) {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	amount, err := amountArg(found.call, "amount")
	if err != nil {
		return nil, err
	}

	asset, ok := ctx.Assets.Statemine(found.call.Path.Module, found.call.Args.FirstField("id", "asset_id"))
	if !ok {
		return nil, nil
	}

	resolver := fee.NewCustomAssetResolver(ctx.Assets.AssetHubConverter(nil).Converter())

	return &model.ExtrinsicProcessingResult{
		Sender:    found.callSender,
		CallPath:  found.call.Path,
		Call:      in.Extrinsic.Call.JSON(),
		Fee:       resolver.Resolve(in.Index, signer, in.Events),
		PeerID:    peerOf(ctx.Account, found.callSender, found.dest),
		Amount:    amount,
		IsSuccess: success,
		AssetID:   asset.ID,
	}, nil
}

// assetsPalletsOf adds the pallet names configured on local assets to the
// well known assets pallets.
func assetsPalletsOf(chain model.Chain) []string {
	pallets := append([]string(nil), assetsPallets...)
	for _, asset := range chain.AssetsOfType(model.AssetTypeStatemine) {
		name := asset.StateminePallet()
		known := false
		for _, pallet := range pallets {
			if pallet == name {
				known = true
				break
			}
		}
		if !known {
			pallets = append(pallets, name)
		}
	}
	return pallets
}

// OrmlMatcher classifies multi-currency transfers of the tokens pallets.
// A transfer_all is attributed to the extrinsic signer even when it is
// dispatched through a proxy.
type OrmlMatcher struct{}

func (OrmlMatcher) Name() string { return "orml" }

func (OrmlMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	signer, ok := in.Signer()
	if !ok {
		return nil, nil
	}

	scoped := in.Scoped()
	isAll := false
	found, ok, err := unwrapTransfer(in, signer, expand(ormlPallets, ormlAmountCalls), "dest")
	if err != nil {
		return nil, err
	}
	if !ok {
		found, ok, err = unwrapTransfer(in, signer, expand(ormlPallets, ormlAllCalls), "dest")
		if err != nil || !ok {
			return nil, err
		}
		found.callSender = signer
		isAll = true
	}

	if !found.involves(ctx.Account) {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	var amount *big.Int
	if isAll {
		amount = amountFromEvent(scoped, model.TokensTransferred, 3)
	} else if amount, err = amountArg(found.call, "amount"); err != nil {
		return nil, err
	}

	asset, ok := ctx.Assets.ORML(found.call.Args.FirstField("currency_id", "currencyId"))
	if !ok {
		return nil, nil
	}

	resolver := fee.NewHydraResolver(ctx.Assets.HydraConverter())

	return &model.ExtrinsicProcessingResult{
		Sender:    found.callSender,
		CallPath:  found.call.Path,
		Call:      in.Extrinsic.Call.JSON(),
		Fee:       resolver.Resolve(in.Index, signer, in.Events),
		PeerID:    peerOf(ctx.Account, found.callSender, found.dest),
		Amount:    amount,
		IsSuccess: success,
		AssetID:   asset.ID,
	}, nil
}

// EquilibriumMatcher classifies EqBalances transfers. The pallet has no
// delegated or batched form, so only the outer call is inspected.
type EquilibriumMatcher struct{}

func (EquilibriumMatcher) Name() string { return "equilibrium" }

func (EquilibriumMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	call := in.Extrinsic.Call
	if !call.Path.EqualFold(model.EquilibriumTransfer) {
		return nil, nil
	}
	signer, ok := in.Signer()
	if !ok {
		return nil, nil
	}

	dest, err := call.Args.FirstField("to", "dest").AccountID()
	if err != nil {
		return nil, fmt.Errorf("%s destination: %w", call.Path, err)
	}
	found := transfer{call: call, callSender: signer, dest: dest}
	if !found.involves(ctx.Account) {
		return nil, nil
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	assetID, err := call.Args.FirstField("asset").Uint64()
	if err != nil {
		return nil, fmt.Errorf("%s asset: %w", call.Path, err)
	}
	amount, err := amountArg(call, "value", "amount")
	if err != nil {
		return nil, err
	}

	asset, ok := ctx.Assets.Equilibrium(assetID)
	if !ok {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:    signer,
		CallPath:  call.Path,
		Call:      call.JSON(),
		Fee:       fee.NativeResolver{}.Resolve(in.Index, signer, in.Events),
		PeerID:    peerOf(ctx.Account, signer, dest),
		Amount:    amount,
		IsSuccess: success,
		AssetID:   asset.ID,
	}, nil
}
