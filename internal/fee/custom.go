package fee

import (
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// CustomAssetResolver prefers a fee charged in a non-native asset and falls
// back to Native otherwise.
type CustomAssetResolver struct {
	Convert AssetConverter
	Native  Resolver
}

func NewCustomAssetResolver(convert AssetConverter) *CustomAssetResolver {
	return &CustomAssetResolver{Convert: convert, Native: NativeResolver{}}
}

func (r *CustomAssetResolver) Resolve(index uint32, sender model.AccountID, events []codec.EventRecord) *model.Fee {
	if fee := r.custom(codec.FilterByExtrinsic(events, index)); fee != nil {
		return fee
	}
	return r.native().Resolve(index, sender, events)
}

func (r *CustomAssetResolver) custom(events []codec.EventRecord) *model.Fee {
	if r.Convert == nil {
		return nil
	}

	record, ok := last(events, model.AssetTxFeePaid)
	if !ok {
		return nil
	}

	amount, err := record.Param(1, "actual_fee").BigInt()
	if err != nil {
		return nil
	}
	assetID, ok := r.Convert(record.Param(3, "asset_id"))
	if !ok {
		return nil
	}
	return model.AssetFee(amount, assetID)
}

func (r *CustomAssetResolver) native() Resolver {
	if r.Native == nil {
		return NativeResolver{}
	}
	return r.Native
}

// HydraResolver detects a fee charged in a non-native currency on HydraDX: a
// Tokens.Deposited event placed between the last swap event and the fee paid
// event.
type HydraResolver struct {
	Convert    AssetConverter
	SwapEvents []model.EventPath
	Native     Resolver
}

func NewHydraResolver(convert AssetConverter) *HydraResolver {
	return &HydraResolver{
		Convert:    convert,
		SwapEvents: []model.EventPath{model.RouterExecuted, model.OmnipoolSellExecuted, model.OmnipoolBuyExecuted},
		Native:     NativeResolver{},
	}
}

func (r *HydraResolver) Resolve(index uint32, sender model.AccountID, events []codec.EventRecord) *model.Fee {
	if fee := r.custom(codec.FilterByExtrinsic(events, index)); fee != nil {
		return fee
	}
	if r.Native == nil {
		return NativeResolver{}.Resolve(index, sender, events)
	}
	return r.Native.Resolve(index, sender, events)
}

func (r *HydraResolver) custom(events []codec.EventRecord) *model.Fee {
	if r.Convert == nil {
		return nil
	}

	swapIndex := lastIndexOf(events, r.SwapEvents...)
	if swapIndex < 0 {
		swapIndex = 0
	}
	feePaidIndex := lastIndexOf(events, model.TransactionFeePaid)
	if feePaidIndex < 0 || swapIndex >= feePaidIndex {
		return nil
	}

	for _, record := range events[swapIndex:feePaidIndex] {
		if !record.Is(model.TokensDeposited) {
			continue
		}
		amount, err := record.Param(2, "amount").BigInt()
		if err != nil {
			return nil
		}
		assetID, ok := r.Convert(record.Param(0, "currency_id"))
		if !ok {
			return nil
		}
		return model.AssetFee(amount, assetID)
	}
	return nil
}
