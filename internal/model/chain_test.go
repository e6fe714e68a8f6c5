package model

import "testing"

func TestChainUtilityAsset(t *testing.T) {
	chain := Chain{Assets: []Asset{{ID: 1, Symbol: "USDT", Type: AssetTypeStatemine}, {ID: 0, Symbol: "DOT", Utility: true}}}
	asset, ok := chain.UtilityAsset()
	if !ok || asset.ID != 0 {
		t.Fatalf("utility asset mismatch: %+v", asset)
	}

	fallback := Chain{Assets: []Asset{{ID: 5, Symbol: "X"}}}
	asset, ok = fallback.UtilityAsset()
	if !ok || asset.ID != 5 {
		t.Fatalf("fallback asset mismatch: %+v", asset)
	}

	if _, ok := (Chain{}).UtilityAsset(); ok {
		t.Fatalf("empty chain has no utility asset")
	}
}

func TestAssetStateminePallet(t *testing.T) {
	if got := (Asset{}).StateminePallet(); got != DefaultAssetsPallet {
		t.Fatalf("default pallet mismatch: %s", got)
	}
	if got := (Asset{Extras: AssetExtras{PalletName: "PoolAssets"}}).StateminePallet(); got != "PoolAssets" {
		t.Fatalf("custom pallet mismatch: %s", got)
	}
}
