package extrinsic

import (
	"errors"
	"fmt"
	"math/big"

	"extrinsicScope/internal/assets"
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/fee"
	"extrinsicScope/internal/model"
	"extrinsicScope/internal/nested"
)

// swapArgs is the normalized shape shared by every swap family.
type swapArgs struct {
	assetIn   codec.Value
	assetOut  codec.Value
	amountIn  *big.Int
	amountOut *big.Int
	receiver  model.AccountID
}

// unwrapSwap finds a swap call sent by the account of interest.
func unwrapSwap(in Input, account model.AccountID, paths []model.CallPath) (codec.Call, model.AccountID, bool, error) {
	signer, ok := in.Signer()
	if !ok {
		return codec.Call{}, "", false, nil
	}

	res, err := nested.NewUnwrapper(signer).Unwrap(in.Extrinsic.Call, isOneOf(paths...))
	if errors.Is(err, nested.ErrNoMatch) {
		return codec.Call{}, "", false, nil
	}
	if err != nil {
		return codec.Call{}, "", false, err
	}

	callSender := res.CallSender()
	if callSender != account {
		return codec.Call{}, "", false, nil
	}
	return res.FirstCall(), callSender, true, nil
}

// withUtilityAsset labels a native fee with the utility asset id.
func withUtilityAsset(resolved *model.Fee, ctx MatchContext) *model.Fee {
	if resolved == nil || !resolved.IsNative() {
		return resolved
	}
	utility, ok := ctx.Assets.Utility()
	if !ok {
		return resolved
	}
	return model.AssetFee(resolved.Amount, utility.ID)
}

func bigArgs(v codec.Value, names ...string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(names))
	for _, name := range names {
		n, err := v.Field(name).BigInt()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, n)
	}
	return out, nil
}

var assetHubSwapPaths = []model.CallPath{
	model.AssetConversionSwapExactIn,
	model.AssetConversionSwapExactOut,
}

// AssetHubSwapMatcher classifies swaps of the asset conversion pallet.
// Successful swaps report the executed amounts of the user's swap event;
// failed swaps report the bounds requested by the call.
type AssetHubSwapMatcher struct {
	// Pallets maps pallet instance indices to assets pallet names for
	// location conversion. Nil uses assets.DefaultPalletInstances.
	Pallets map[uint64]string
}

func (AssetHubSwapMatcher) Name() string { return "assethub-swap" }

func (m AssetHubSwapMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	call, callSender, ok, err := unwrapSwap(in, ctx.Account, assetHubSwapPaths)
	if err != nil || !ok {
		return nil, err
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	convert := ctx.Assets.AssetHubConverter(m.Pallets)

	var args swapArgs
	if success {
		args, ok, err = assetHubExecuted(in.Scoped(), convert, ctx)
	} else {
		args, ok, err = assetHubRequested(call)
	}
	if err != nil || !ok {
		return nil, err
	}

	assetIn, okIn := convert(args.assetIn)
	assetOut, okOut := convert(args.assetOut)
	if !okIn || !okOut {
		return nil, nil
	}

	signer, _ := in.Signer()
	resolved := fee.NewCustomAssetResolver(convert.Converter()).Resolve(in.Index, signer, in.Events)
	if resolved == nil {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:    callSender,
		CallPath:  call.Path,
		Call:      call.JSON(),
		Fee:       withUtilityAsset(resolved, ctx),
		PeerID:    model.PeerRef(args.receiver),
		IsSuccess: success,
		AssetID:   assetIn.ID,
		Swap: &model.SwapDetail{
			AssetIDIn:  assetIn.ID,
			AssetIDOut: assetOut.ID,
			AmountIn:   args.amountIn,
			AmountOut:  args.amountOut,
		},
	}, nil
}

// assetHubExecuted reads the user's SwapExecuted event:
// [who, send_to, amount_in, amount_out, path].
func assetHubExecuted(events []codec.EventRecord, convert assets.LocationConverter, ctx MatchContext) (swapArgs, bool, error) {
	_, customFee := firstEvent(events, model.AssetTxFeePaid)
	record, ok := selectAssetHubSwap(allEvents(events, model.AssetConversionSwap), customFee, func(location codec.Value) bool {
		asset, ok := convert(location)
		utility, hasUtility := ctx.Assets.Utility()
		return ok && hasUtility && asset.ID == utility.ID
	})
	if !ok {
		return swapArgs{}, false, nil
	}

	receiver, err := record.Param(1, "send_to").AccountID()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("swap receiver: %w", err)
	}
	amountIn, err := record.Param(2, "amount_in").BigInt()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("swap amount in: %w", err)
	}
	amountOut, err := record.Param(3, "amount_out").BigInt()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("swap amount out: %w", err)
	}
	first, last, err := pathEnds(record.Param(4, "path"))
	if err != nil {
		return swapArgs{}, false, err
	}

	return swapArgs{
		assetIn:   first,
		assetOut:  last,
		amountIn:  amountIn,
		amountOut: amountOut,
		receiver:  receiver,
	}, true, nil
}

// selectAssetHubSwap picks the first swap event. When the fee was paid in a
// custom asset, the first swap is the fee conversion into the native asset
// and the user's swap is the one after it.
func selectAssetHubSwap(swaps []codec.EventRecord, customFee bool, isNative func(codec.Value) bool) (codec.EventRecord, bool) {
	if !customFee {
		if len(swaps) == 0 {
			return codec.EventRecord{}, false
		}
		return swaps[0], true
	}

	if len(swaps) < 2 {
		return codec.EventRecord{}, false
	}
	_, feeOut, err := pathEnds(swaps[0].Param(4, "path"))
	if err != nil || !isNative(feeOut) {
		return codec.EventRecord{}, false
	}
	return swaps[1], true
}

func assetHubRequested(call codec.Call) (swapArgs, bool, error) {
	var amounts []*big.Int
	var err error
	switch {
	case call.Path.EqualFold(model.AssetConversionSwapExactIn):
		amounts, err = bigArgs(call.Args, "amount_in", "amount_out_min")
	case call.Path.EqualFold(model.AssetConversionSwapExactOut):
		amounts, err = bigArgs(call.Args, "amount_in_max", "amount_out")
	default:
		return swapArgs{}, false, nil
	}
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("%s: %w", call.Path, err)
	}

	receiver, err := call.Args.Field("send_to").AccountID()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("%s receiver: %w", call.Path, err)
	}
	first, last, err := pathEnds(call.Args.Field("path"))
	if err != nil {
		return swapArgs{}, false, err
	}

	return swapArgs{
		assetIn:   first,
		assetOut:  last,
		amountIn:  amounts[0],
		amountOut: amounts[1],
		receiver:  receiver,
	}, true, nil
}

// pathEnds returns the first and last asset of a swap route. Route entries
// are either a location or a [location, amount] pair.
func pathEnds(path codec.Value) (codec.Value, codec.Value, error) {
	hops, err := path.List()
	if err != nil {
		return codec.Value{}, codec.Value{}, fmt.Errorf("swap path: %w", err)
	}
	if len(hops) < 2 {
		return codec.Value{}, codec.Value{}, fmt.Errorf("swap path has %d hops", len(hops))
	}
	return hopAsset(hops[0]), hopAsset(hops[len(hops)-1]), nil
}

func hopAsset(hop codec.Value) codec.Value {
	if pair, err := hop.List(); err == nil && len(pair) == 2 {
		return pair[0]
	}
	return hop
}

var hydraSwapPaths = []model.CallPath{
	model.RouterSell,
	model.RouterBuy,
	model.OmnipoolSell,
	model.OmnipoolBuy,
}

var hydraSwapEvents = []model.EventPath{
	model.RouterExecuted,
	model.OmnipoolSellExecuted,
	model.OmnipoolBuyExecuted,
}

// HydraSwapMatcher classifies Router and Omnipool swaps. Asset ids are plain
// integers on this chain.
type HydraSwapMatcher struct{}

func (HydraSwapMatcher) Name() string { return "hydra-swap" }

func (HydraSwapMatcher) Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error) {
	call, callSender, ok, err := unwrapSwap(in, ctx.Account, hydraSwapPaths)
	if err != nil || !ok {
		return nil, err
	}

	success, ok := MatchStatus(in.Index, in.Events)
	if !ok {
		return nil, nil
	}

	var args swapArgs
	if success {
		args, ok, err = hydraExecuted(in.Scoped())
	} else {
		args, ok, err = hydraRequested(call)
	}
	if err != nil || !ok {
		return nil, err
	}

	assetIn, err := hydraAsset(ctx, args.assetIn)
	if err != nil {
		return nil, nil
	}
	assetOut, err := hydraAsset(ctx, args.assetOut)
	if err != nil {
		return nil, nil
	}

	signer, _ := in.Signer()
	resolved := fee.NewHydraResolver(ctx.Assets.HydraConverter()).Resolve(in.Index, signer, in.Events)
	if resolved == nil {
		return nil, nil
	}

	return &model.ExtrinsicProcessingResult{
		Sender:    callSender,
		CallPath:  call.Path,
		Call:      call.JSON(),
		Fee:       withUtilityAsset(resolved, ctx),
		PeerID:    model.PeerRef(callSender),
		IsSuccess: success,
		AssetID:   assetIn.ID,
		Swap: &model.SwapDetail{
			AssetIDIn:  assetIn.ID,
			AssetIDOut: assetOut.ID,
			AmountIn:   args.amountIn,
			AmountOut:  args.amountOut,
		},
	}, nil
}

func hydraAsset(ctx MatchContext, id codec.Value) (model.Asset, error) {
	n, err := id.Uint32()
	if err != nil {
		return model.Asset{}, err
	}
	asset, ok := ctx.Assets.Hydra(n)
	if !ok {
		return model.Asset{}, fmt.Errorf("unknown hydra asset %d", n)
	}
	return asset, nil
}

// hydraExecuted reads the last swap event. Router.Executed carries
// [asset_in, asset_out, amount_in, amount_out]; the Omnipool events are
// prefixed with the trader.
func hydraExecuted(events []codec.EventRecord) (swapArgs, bool, error) {
	record, ok := lastEvent(events, hydraSwapEvents...)
	if !ok {
		return swapArgs{}, false, nil
	}

	offset := 0
	if !record.Is(model.RouterExecuted) {
		offset = 1
	}

	amountIn, err := record.Param(offset+2, "amount_in").BigInt()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("%s amount in: %w", record.Path, err)
	}
	amountOut, err := record.Param(offset+3, "amount_out").BigInt()
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("%s amount out: %w", record.Path, err)
	}

	return swapArgs{
		assetIn:   record.Param(offset, "asset_in"),
		assetOut:  record.Param(offset+1, "asset_out"),
		amountIn:  amountIn,
		amountOut: amountOut,
	}, true, nil
}

func hydraRequested(call codec.Call) (swapArgs, bool, error) {
	var amounts []*big.Int
	var err error
	switch {
	case call.Path.EqualFold(model.RouterSell):
		amounts, err = bigArgs(call.Args, "amount_in", "min_amount_out")
	case call.Path.EqualFold(model.RouterBuy):
		amounts, err = bigArgs(call.Args, "max_amount_in", "amount_out")
	case call.Path.EqualFold(model.OmnipoolSell):
		amounts, err = bigArgs(call.Args, "amount", "min_buy_amount")
	case call.Path.EqualFold(model.OmnipoolBuy):
		amounts, err = bigArgs(call.Args, "max_sell_amount", "amount")
	default:
		return swapArgs{}, false, nil
	}
	if err != nil {
		return swapArgs{}, false, fmt.Errorf("%s: %w", call.Path, err)
	}

	return swapArgs{
		assetIn:   call.Args.Field("asset_in"),
		assetOut:  call.Args.Field("asset_out"),
		amountIn:  amounts[0],
		amountOut: amounts[1],
	}, true, nil
}
