package model

// AssetType selects how a local asset is identified on chain.
type AssetType string

const (
	AssetTypeNative      AssetType = ""
	AssetTypeStatemine   AssetType = "statemine"
	AssetTypeOrml        AssetType = "orml"
	AssetTypeEquilibrium AssetType = "equilibrium"
)

// DefaultAssetsPallet is the pallet name assumed when a statemine asset does
// not specify one.
const DefaultAssetsPallet = "Assets"

// Asset is a locally known asset of a chain.
type Asset struct {
	ID      uint32      `json:"id" mapstructure:"id"`
	Symbol  string      `json:"symbol" mapstructure:"symbol"`
	Type    AssetType   `json:"type,omitempty" mapstructure:"type"`
	Utility bool        `json:"utility,omitempty" mapstructure:"utility"`
	Extras  AssetExtras `json:"extras,omitempty" mapstructure:"extras"`
}

// AssetExtras carries the type specific identification of an asset.
type AssetExtras struct {
	// statemine
	PalletName  string `json:"pallet_name,omitempty" mapstructure:"pallet_name"`
	AssetID     string `json:"asset_id,omitempty" mapstructure:"asset_id"`
	AssetIDType string `json:"asset_id_type,omitempty" mapstructure:"asset_id_type"`

	// orml
	CurrencyIDType  string `json:"currency_id_type,omitempty" mapstructure:"currency_id_type"`
	CurrencyIDScale string `json:"currency_id_scale,omitempty" mapstructure:"currency_id_scale"`

	// equilibrium
	EquilibriumAssetID uint64 `json:"equilibrium_asset_id,omitempty" mapstructure:"equilibrium_asset_id"`
}

// Chain describes a chain and its local asset registry.
type Chain struct {
	ChainID         string  `json:"chain_id" mapstructure:"chain_id"`
	Name            string  `json:"name" mapstructure:"name"`
	IsEthereumBased bool    `json:"is_ethereum_based" mapstructure:"is_ethereum_based"`
	Assets          []Asset `json:"assets" mapstructure:"assets"`
}

// UtilityAsset returns the asset flagged as utility, or the first asset.
func (c Chain) UtilityAsset() (Asset, bool) {
	for _, asset := range c.Assets {
		if asset.Utility {
			return asset, true
		}
	}
	if len(c.Assets) > 0 {
		return c.Assets[0], true
	}
	return Asset{}, false
}

// Asset returns the local asset with the given id.
func (c Chain) Asset(id uint32) (Asset, bool) {
	for _, asset := range c.Assets {
		if asset.ID == id {
			return asset, true
		}
	}
	return Asset{}, false
}

// AssetsOfType returns all assets with the given type, in registry order.
func (c Chain) AssetsOfType(assetType AssetType) []Asset {
	out := make([]Asset, 0, len(c.Assets))
	for _, asset := range c.Assets {
		if asset.Type == assetType {
			out = append(out, asset)
		}
	}
	return out
}

// StateminePallet returns the pallet name of a statemine asset.
func (a Asset) StateminePallet() string {
	if a.Extras.PalletName == "" {
		return DefaultAssetsPallet
	}
	return a.Extras.PalletName
}
