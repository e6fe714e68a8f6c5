package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/model"
)

func TestDecodeEventRecords(t *testing.T) {
	raw := []byte(`[
		{"phase": {"ApplyExtrinsic": 0}, "event": {"module": "Balances", "event": "Transfer", "params": ["` + alice + `", "` + bob + `", "100"]}},
		{"phase": {"ApplyExtrinsic": 0}, "event": {"module": "System", "event": "ExtrinsicSuccess", "params": [{}]}},
		{"phase": {"ApplyExtrinsic": 1}, "event": {"module": "System", "event": "ExtrinsicFailed", "params": []}},
		{"phase": "Finalization", "event": {"module": "Treasury", "event": "Deposit", "params": ["1"]}}
	]`)

	records, err := DecodeEventRecords(NewJSONFactory(1), raw)
	require.NoError(t, err)
	require.Len(t, records, 4)

	require.True(t, records[0].AppliesTo(0))
	require.True(t, records[0].Is(model.BalancesTransferred))
	require.Nil(t, records[3].ExtrinsicIndex)
	require.False(t, records[3].AppliesTo(0))

	amount, err := records[0].Param(2, "amount").BigInt()
	require.NoError(t, err)
	require.Equal(t, "100", amount.String())

	forFirst := FilterByExtrinsic(records, 0)
	require.Len(t, forFirst, 2)
	require.True(t, forFirst[1].Is(model.ExtrinsicSuccess))
}

func TestEventParamNamedFallback(t *testing.T) {
	record := EventRecord{Params: MustParseJSON(`{"who":"` + alice + `","actual_fee":"12"}`)}
	fee, err := record.Param(1, "actual_fee").BigInt()
	require.NoError(t, err)
	require.Equal(t, "12", fee.String())
}

func TestDecodeEventRecordsEmpty(t *testing.T) {
	records, err := DecodeEventRecords(NewJSONFactory(1), nil)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestDecodeEventRecordsBadPhase(t *testing.T) {
	raw := []byte(`[{"phase": {"ApplyExtrinsic": "x"}, "event": {"module": "System", "event": "ExtrinsicSuccess"}}]`)
	_, err := DecodeEventRecords(NewJSONFactory(1), raw)
	require.Error(t, err)
}
