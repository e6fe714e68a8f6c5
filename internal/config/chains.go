package config

import (
	"fmt"

	"github.com/spf13/viper"

	"extrinsicScope/internal/model"
)

func loadChains(v *viper.Viper) ([]model.Chain, error) {
	if !v.IsSet("chains") {
		return nil, nil
	}

	var chains []model.Chain
	if err := v.UnmarshalKey("chains", &chains); err != nil {
		return nil, fmt.Errorf("decode chains: %w", err)
	}

	seen := make(map[string]struct{}, len(chains))
	for i, chain := range chains {
		if chain.ChainID == "" {
			return nil, fmt.Errorf("chain %d: chain_id is required", i)
		}
		if _, ok := seen[chain.ChainID]; ok {
			return nil, fmt.Errorf("chain %s: duplicate chain_id", chain.ChainID)
		}
		seen[chain.ChainID] = struct{}{}
		if err := validateAssets(chain); err != nil {
			return nil, err
		}
	}
	return chains, nil
}

func validateAssets(chain model.Chain) error {
	ids := make(map[uint32]struct{}, len(chain.Assets))
	for _, asset := range chain.Assets {
		if _, ok := ids[asset.ID]; ok {
			return fmt.Errorf("chain %s: duplicate asset id %d", chain.ChainID, asset.ID)
		}
		ids[asset.ID] = struct{}{}

		switch asset.Type {
		case model.AssetTypeNative, model.AssetTypeEquilibrium:
		case model.AssetTypeStatemine:
			if asset.Extras.AssetID == "" {
				return fmt.Errorf("chain %s asset %d: asset_id is required", chain.ChainID, asset.ID)
			}
		case model.AssetTypeOrml:
			if asset.Extras.CurrencyIDType == "" || asset.Extras.CurrencyIDScale == "" {
				return fmt.Errorf("chain %s asset %d: currency_id_type and currency_id_scale are required", chain.ChainID, asset.ID)
			}
		default:
			return fmt.Errorf("chain %s asset %d: unknown type %q", chain.ChainID, asset.ID, asset.Type)
		}
	}
	return nil
}

// Chain returns the configured chain selected by ChainID.
func (c Config) Chain() (model.Chain, error) {
	if c.ChainID == "" {
		return model.Chain{}, fmt.Errorf("chain is required")
	}
	for _, chain := range c.Chains {
		if chain.ChainID == c.ChainID {
			return chain, nil
		}
	}
	return model.Chain{}, fmt.Errorf("chain %s is not configured", c.ChainID)
}
