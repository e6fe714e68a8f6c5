package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/model"
)

const (
	alice = "0x1111111111111111111111111111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222222222222222222222222222"
)

func TestDecodeExtrinsicSigned(t *testing.T) {
	raw := []byte(`{
		"signature": {"address": {"Id": "` + alice + `"}},
		"call": {"module": "Balances", "function": "transfer", "args": {"dest": {"Id": "` + bob + `"}, "value": 100}}
	}`)

	ext, err := DecodeExtrinsic(NewJSONFactory(1), raw)
	require.NoError(t, err)
	require.NotNil(t, ext.Signer)
	require.Equal(t, alice, ext.Signer.Hex())
	require.Equal(t, model.BalancesTransfer, ext.Call.Path)

	dest, err := ext.Call.Args.Field("dest").AccountID()
	require.NoError(t, err)
	require.Equal(t, bob, dest.Hex())

	value, err := ext.Call.Args.Field("value").BigInt()
	require.NoError(t, err)
	require.Equal(t, "100", value.String())
	require.JSONEq(t, `{"module":"Balances","function":"transfer","args":{"dest":{"Id":"`+bob+`"},"value":100}}`, string(ext.Call.JSON()))
}

func TestDecodeExtrinsicUnsigned(t *testing.T) {
	raw := []byte(`{"signature": null, "call": {"module": "Timestamp", "function": "set", "args": {"now": 1}}}`)

	ext, err := DecodeExtrinsic(NewJSONFactory(1), raw)
	require.NoError(t, err)
	require.Nil(t, ext.Signer)
	require.Equal(t, "Timestamp.set", ext.Call.Path.String())
}

func TestDecodeExtrinsicMalformed(t *testing.T) {
	_, err := DecodeExtrinsic(NewJSONFactory(1), []byte{0xde, 0xad})
	require.Error(t, err)

	_, err = DecodeExtrinsic(NewJSONFactory(1), []byte(`{"call": {"function": "transfer"}}`))
	require.Error(t, err)
}

func TestNewCallRoundTrip(t *testing.T) {
	call := NewCall(model.BalancesTransfer, MustParseJSON(`{"value":"5"}`))
	again, err := CallFromValue(call.Value())
	require.NoError(t, err)
	require.Equal(t, call.Path, again.Path)
	require.JSONEq(t, string(call.JSON()), string(again.JSON()))
}

func TestExtrinsicHash(t *testing.T) {
	hash := ExtrinsicHash([]byte("extrinsic"))
	require.Len(t, hash, 32)
	require.Equal(t, hash, ExtrinsicHash([]byte("extrinsic")))
	require.NotEqual(t, hash, ExtrinsicHash([]byte("other")))
}
