package nested

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

const (
	alice = "0x1111111111111111111111111111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222222222222222222222222222"
	carol = "0x3333333333333333333333333333333333333333333333333333333333333333"
)

func account(t *testing.T, hex string) model.AccountID {
	t.Helper()
	id, err := model.ParseAccountID(hex)
	require.NoError(t, err)
	return id
}

func transferJSON(dest string, value int) string {
	return fmt.Sprintf(`{"module":"Balances","function":"transfer","args":{"dest":{"Id":"%s"},"value":%d}}`, dest, value)
}

func remarkJSON() string {
	return `{"module":"System","function":"remark","args":{"remark":"0x00"}}`
}

func proxyJSON(real, inner string) string {
	return fmt.Sprintf(`{"module":"Proxy","function":"proxy","args":{"real":{"Id":"%s"},"force_proxy_type":null,"call":%s}}`, real, inner)
}

func batchJSON(calls ...string) string {
	out := `{"module":"Utility","function":"batch_all","args":{"calls":[`
	for i, call := range calls {
		if i > 0 {
			out += ","
		}
		out += call
	}
	return out + `]}}`
}

func mustCall(t *testing.T, raw string) codec.Call {
	t.Helper()
	call, err := codec.CallFromValue(codec.MustParseJSON(raw))
	require.NoError(t, err)
	return call
}

func isTransfer(call codec.Call) bool {
	return call.Path.EqualFold(model.BalancesTransfer)
}

func TestUnwrapDirect(t *testing.T) {
	signer := account(t, alice)
	res, err := NewUnwrapper(signer).Unwrap(mustCall(t, transferJSON(bob, 10)), isTransfer)
	require.NoError(t, err)
	require.Equal(t, signer, res.CallSender())
	require.Equal(t, model.BalancesTransfer, res.FirstCall().Path)
}

func TestUnwrapDelegation(t *testing.T) {
	res, err := NewUnwrapper(account(t, bob)).Unwrap(mustCall(t, proxyJSON(alice, transferJSON(carol, 5))), isTransfer)
	require.NoError(t, err)
	require.Equal(t, account(t, alice), res.CallSender())
	require.IsType(t, Delegated[codec.Call]{}, res.Node)
}

func TestUnwrapNestedDelegationDeepestOwnerWins(t *testing.T) {
	call := mustCall(t, proxyJSON(bob, proxyJSON(alice, transferJSON(carol, 5))))
	res, err := NewUnwrapper(account(t, carol)).Unwrap(call, isTransfer)
	require.NoError(t, err)
	require.Equal(t, account(t, alice), res.CallSender())
}

func TestUnwrapBatchKeepsOnlyMatches(t *testing.T) {
	call := mustCall(t, batchJSON(remarkJSON(), transferJSON(bob, 7), remarkJSON()))
	res, err := NewUnwrapper(account(t, alice)).Unwrap(call, isTransfer)
	require.NoError(t, err)

	calls := res.Calls()
	require.Len(t, calls, 1)
	value, err := calls[0].Args.Field("value").BigInt()
	require.NoError(t, err)
	require.Equal(t, "7", value.String())
	require.Equal(t, account(t, alice), res.CallSender())
}

func TestUnwrapBatchWithoutMatchesFails(t *testing.T) {
	call := mustCall(t, batchJSON(remarkJSON(), remarkJSON()))
	_, err := NewUnwrapper(account(t, alice)).Unwrap(call, isTransfer)
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestUnwrapDelegatedBatch(t *testing.T) {
	call := mustCall(t, proxyJSON(alice, batchJSON(remarkJSON(), transferJSON(carol, 3))))
	res, err := NewUnwrapper(account(t, bob)).Unwrap(call, isTransfer)
	require.NoError(t, err)
	require.Equal(t, account(t, alice), res.CallSender())
	require.Len(t, res.Calls(), 1)
}

func TestUnwrapBatchOfDelegations(t *testing.T) {
	call := mustCall(t, batchJSON(remarkJSON(), proxyJSON(alice, transferJSON(carol, 3)), transferJSON(carol, 4)))
	res, err := NewUnwrapper(account(t, bob)).Unwrap(call, isTransfer)
	require.NoError(t, err)
	require.Len(t, res.Calls(), 2)
	require.Equal(t, account(t, alice), res.CallSender())
}

func TestUnwrapUnknownCallFails(t *testing.T) {
	_, err := NewUnwrapper(account(t, alice)).Unwrap(mustCall(t, remarkJSON()), isTransfer)
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestUnwrapNotNested(t *testing.T) {
	call := mustCall(t, proxyJSON(alice, remarkJSON()))
	res, err := NewUnwrapper(account(t, bob)).UnwrapNotNested(call)
	require.NoError(t, err)
	require.Equal(t, "System.remark", res.FirstCall().Path.String())
	require.Equal(t, account(t, alice), res.CallSender())
}

func TestMapKeepsStructure(t *testing.T) {
	owner := model.AccountID("owner")
	var node Node[int] = Batch[int]{Children: []Node[int]{
		Leaf[int]{Value: 1},
		Delegated[int]{Owner: owner, Child: Leaf[int]{Value: 2}},
	}}

	mapped := Map(node, func(v int) string { return fmt.Sprint(v * 10) })
	require.Equal(t, []string{"10", "20"}, Calls[string](mapped))
	require.Nil(t, CallSender[string](mapped))

	delegatedFirst := Batch[int]{Children: []Node[int]{
		Delegated[int]{Owner: owner, Child: Leaf[int]{Value: 1}},
	}}
	require.Equal(t, &owner, CallSender[int](delegatedFirst))
}
