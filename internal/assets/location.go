package assets

import (
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// LocationConverter maps an AssetHub multilocation to a local asset.
type LocationConverter func(location codec.Value) (model.Asset, bool)

// DefaultPalletInstances are the assets pallets of the system parachains
// by their pallet index.
var DefaultPalletInstances = map[uint64]string{
	50: model.DefaultAssetsPallet,
	55: "PoolAssets",
}

const foreignAssetsPallet = "ForeignAssets"

// AssetHubConverter returns a LocationConverter for this chain. The native
// location maps to the utility asset, a PalletInstance/GeneralIndex pair maps
// to an asset of that pallet, and any other location is looked up as a
// foreign asset keyed by its encoded location.
func (r *Resolver) AssetHubConverter(pallets map[uint64]string) LocationConverter {
	if pallets == nil {
		pallets = DefaultPalletInstances
	}

	return func(location codec.Value) (model.Asset, bool) {
		if name, _, err := location.Variant(); err == nil && name == "Native" {
			return r.Utility()
		}

		parents, err := location.Field("parents").Uint64()
		if err != nil {
			return model.Asset{}, false
		}
		junctions, ok := interior(location.Field("interior"))
		if !ok {
			return model.Asset{}, false
		}

		if len(junctions) == 0 && parents <= 1 {
			return r.Utility()
		}

		if parents == 0 && len(junctions) == 2 {
			if asset, ok := r.localPalletAsset(junctions, pallets); ok {
				return asset, true
			}
		}

		return r.Statemine(foreignAssetsPallet, location)
	}
}

func (r *Resolver) localPalletAsset(junctions []codec.Value, pallets map[uint64]string) (model.Asset, bool) {
	name, instance, err := junctions[0].Variant()
	if err != nil || name != "PalletInstance" {
		return model.Asset{}, false
	}
	index, err := instance.Uint64()
	if err != nil {
		return model.Asset{}, false
	}
	pallet, ok := pallets[index]
	if !ok {
		return model.Asset{}, false
	}

	name, assetID, err := junctions[1].Variant()
	if err != nil || name != "GeneralIndex" {
		return model.Asset{}, false
	}
	return r.Statemine(pallet, assetID)
}

// interior flattens "Here", {"X1": j} and {"Xn": [j...]} junctions.
func interior(v codec.Value) ([]codec.Value, bool) {
	name, inner, err := v.Variant()
	if err != nil {
		return nil, false
	}
	if name == "Here" {
		return nil, true
	}
	if len(name) < 2 || name[0] != 'X' {
		return nil, false
	}
	if list, err := inner.List(); err == nil {
		return list, true
	}
	return []codec.Value{inner}, true
}

// Converter adapts a LocationConverter for fee resolution.
func (c LocationConverter) Converter() func(codec.Value) (uint32, bool) {
	return func(v codec.Value) (uint32, bool) {
		asset, ok := c(v)
		return asset.ID, ok
	}
}
