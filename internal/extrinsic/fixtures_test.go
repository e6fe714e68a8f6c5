package extrinsic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"extrinsicScope/internal/assets"
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

const (
	alice = "0x1111111111111111111111111111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222222222222222222222222222"
	carol = "0x3333333333333333333333333333333333333333333333333333333333333333"

	nativeLocation = `{"parents":1,"interior":"Here"}`
	usdtLocation   = `{"parents":0,"interior":{"X2":[{"PalletInstance":50},{"GeneralIndex":1984}]}}`
)

var factory = codec.NewJSONFactory(1)

func account(t *testing.T, hex string) model.AccountID {
	t.Helper()
	id, err := model.ParseAccountID(hex)
	require.NoError(t, err)
	return id
}

func testChain(t *testing.T) model.Chain {
	t.Helper()
	ausd, err := factory.Encode(codec.MustParseJSON(`{"Token":"AUSD"}`), "CurrencyId")
	require.NoError(t, err)

	return model.Chain{
		ChainID: "test",
		Assets: []model.Asset{
			{ID: 0, Symbol: "DOT", Utility: true},
			{ID: 1, Symbol: "USDT", Type: model.AssetTypeStatemine, Extras: model.AssetExtras{AssetID: "1984"}},
			{ID: 4, Symbol: "aUSD", Type: model.AssetTypeOrml, Extras: model.AssetExtras{
				CurrencyIDType:  "CurrencyId",
				CurrencyIDScale: hexutil.Encode(ausd),
			}},
			{ID: 5, Symbol: "HDX5", Type: model.AssetTypeOrml, Extras: model.AssetExtras{
				CurrencyIDType:  codec.TypeU32,
				CurrencyIDScale: "0x05000000",
			}},
			{ID: 6, Symbol: "EQ", Type: model.AssetTypeEquilibrium, Extras: model.AssetExtras{EquilibriumAssetID: 25969}},
		},
	}
}

func matchContext(t *testing.T, who string) MatchContext {
	chain := testChain(t)
	return MatchContext{
		Account: account(t, who),
		Chain:   chain,
		Factory: factory,
		Assets:  assets.NewResolver(chain, factory),
		Logger:  zap.NewNop(),
	}
}

func signedJSON(signer, call string) string {
	return fmt.Sprintf(`{"signature":{"address":{"Id":%q}},"call":%s}`, signer, call)
}

func input(t *testing.T, index uint32, signer, call string, events ...codec.EventRecord) Input {
	t.Helper()
	ext, err := codec.DecodeExtrinsic(factory, []byte(signedJSON(signer, call)))
	require.NoError(t, err)
	return Input{Index: index, Extrinsic: ext, Events: events}
}

func ev(index uint32, path model.EventPath, params string) codec.EventRecord {
	return codec.EventRecord{ExtrinsicIndex: &index, Path: path, Params: codec.MustParseJSON(params)}
}

func succeeded(index uint32) codec.EventRecord {
	return ev(index, model.ExtrinsicSuccess, `[{"weight":1}]`)
}

func failed(index uint32) codec.EventRecord {
	return ev(index, model.ExtrinsicFailed, `[{"Module":{"index":1}}, {}]`)
}

func feePaid(index uint32, who, amount string) codec.EventRecord {
	return ev(index, model.TransactionFeePaid, fmt.Sprintf(`[%q, %q, "0"]`, who, amount))
}

func transferCall(dest string, value int) string {
	return fmt.Sprintf(`{"module":"Balances","function":"transfer","args":{"dest":{"Id":%q},"value":%d}}`, dest, value)
}

func remarkCall() string {
	return `{"module":"System","function":"remark","args":{"remark":"0x"}}`
}

func proxyCall(real, inner string) string {
	return fmt.Sprintf(`{"module":"Proxy","function":"proxy","args":{"real":{"Id":%q},"force_proxy_type":null,"call":%s}}`, real, inner)
}

func batchCall(calls ...string) string {
	return fmt.Sprintf(`{"module":"Utility","function":"batch","args":{"calls":[%s]}}`, strings.Join(calls, ","))
}
