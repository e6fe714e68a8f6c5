package assets

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

const defaultAssetIDType = codec.TypeU32

// Resolver maps on-chain asset identifiers to the local assets of one chain.
// Identifiers are compared by re-encoding them with the codec of the block
// being processed.
type Resolver struct {
	chain   model.Chain
	factory codec.Factory
}

func NewResolver(chain model.Chain, factory codec.Factory) *Resolver {
	return &Resolver{chain: chain, factory: factory}
}

func (r *Resolver) Chain() model.Chain {
	return r.chain
}

// Utility returns the asset fees and native transfers are denominated in.
func (r *Resolver) Utility() (model.Asset, bool) {
	return r.chain.UtilityAsset()
}

// Statemine resolves an asset of an assets pallet by pallet name and id.
func (r *Resolver) Statemine(pallet string, assetID codec.Value) (model.Asset, bool) {
	for _, asset := range r.chain.AssetsOfType(model.AssetTypeStatemine) {
		if asset.StateminePallet() != pallet {
			continue
		}
		if r.statemineIDMatches(asset.Extras, assetID) {
			return asset, true
		}
	}
	return model.Asset{}, false
}

func (r *Resolver) statemineIDMatches(extras model.AssetExtras, assetID codec.Value) bool {
	local := strings.TrimSpace(extras.AssetID)
	if local == "" {
		return false
	}

	if strings.HasPrefix(local, "0x") {
		typeName := extras.AssetIDType
		if typeName == "" {
			typeName = defaultAssetIDType
			if _, err := assetID.BigInt(); err != nil {
				typeName = codec.TypeLocation
			}
		}
		want, err := hexutil.Decode(local)
		if err != nil {
			return false
		}
		got, err := r.factory.Encode(assetID, typeName)
		return err == nil && bytes.Equal(got, want)
	}

	want, ok := new(big.Int).SetString(local, 10)
	if !ok {
		return false
	}
	got, err := assetID.BigInt()
	return err == nil && got.Cmp(want) == 0
}

// ORML resolves a multi-currency asset by its currency id.
func (r *Resolver) ORML(currencyID codec.Value) (model.Asset, bool) {
	for _, asset := range r.chain.AssetsOfType(model.AssetTypeOrml) {
		if asset.Extras.CurrencyIDType == "" || asset.Extras.CurrencyIDScale == "" {
			continue
		}
		want, err := hexutil.Decode(asset.Extras.CurrencyIDScale)
		if err != nil {
			continue
		}
		got, err := r.factory.Encode(currencyID, asset.Extras.CurrencyIDType)
		if err != nil {
			continue
		}
		if bytes.Equal(got, want) {
			return asset, true
		}
	}
	return model.Asset{}, false
}

// Equilibrium resolves an Equilibrium asset by its numeric id.
func (r *Resolver) Equilibrium(assetID uint64) (model.Asset, bool) {
	for _, asset := range r.chain.AssetsOfType(model.AssetTypeEquilibrium) {
		if asset.Extras.EquilibriumAssetID == assetID {
			return asset, true
		}
	}
	return model.Asset{}, false
}

// HydraNativeAssetID is the currency id of the native HydraDX asset.
const HydraNativeAssetID = 0

// Hydra resolves a HydraDX numeric currency id.
func (r *Resolver) Hydra(currencyID uint32) (model.Asset, bool) {
	if currencyID == HydraNativeAssetID {
		return r.Utility()
	}
	return r.ORML(codec.NewValue(strconv.FormatUint(uint64(currencyID), 10)))
}

// HydraConverter adapts Hydra for fee resolution.
func (r *Resolver) HydraConverter() func(codec.Value) (uint32, bool) {
	return func(v codec.Value) (uint32, bool) {
		id, err := v.Uint32()
		if err != nil {
			return 0, false
		}
		asset, ok := r.Hydra(id)
		return asset.ID, ok
	}
}
