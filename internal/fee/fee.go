package fee

import (
	"math/big"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// Resolver determines the fee paid by one extrinsic. It returns nil when no
// event describes the fee.
type Resolver interface {
	Resolve(index uint32, sender model.AccountID, events []codec.EventRecord) *model.Fee
}

// AssetConverter maps an on-chain asset identifier to a local asset id.
type AssetConverter func(assetID codec.Value) (uint32, bool)

type strategy func(sender model.AccountID, events []codec.EventRecord) *big.Int

// NativeResolver tries, in order, the fee paid event, a withdrawal from the
// sender and finally the sum of the balances and treasury deposits.
type NativeResolver struct{}

var nativeStrategies = []strategy{
	feePaidAmount,
	withdrawAmount,
	depositsAmount,
}

func (NativeResolver) Resolve(index uint32, sender model.AccountID, events []codec.EventRecord) *model.Fee {
	scoped := codec.FilterByExtrinsic(events, index)
	for _, find := range nativeStrategies {
		if amount := find(sender, scoped); amount != nil {
			return model.NativeFee(amount)
		}
	}
	return nil
}

func feePaidAmount(_ model.AccountID, events []codec.EventRecord) *big.Int {
	record, ok := last(events, model.TransactionFeePaid)
	if !ok {
		return nil
	}
	amount, err := record.Param(1, "actual_fee").BigInt()
	if err != nil {
		return nil
	}
	return amount
}

// withdrawAmount takes the first withdrawal from the sender; the fee is
// withdrawn before any withdrawal made by the call itself.
func withdrawAmount(sender model.AccountID, events []codec.EventRecord) *big.Int {
	for _, record := range events {
		if !record.Is(model.BalancesWithdraw) {
			continue
		}
		who, err := record.Param(0, "who").AccountID()
		if err != nil || who != sender {
			continue
		}
		amount, err := record.Param(1, "amount").BigInt()
		if err != nil {
			continue
		}
		return amount
	}
	return nil
}

// depositsAmount sums the last balances deposit and the last treasury deposit.
func depositsAmount(_ model.AccountID, events []codec.EventRecord) *big.Int {
	var total *big.Int

	if record, ok := last(events, model.BalancesDeposit); ok {
		if amount, err := record.Param(1, "amount").BigInt(); err == nil {
			total = new(big.Int).Set(amount)
		}
	}

	if record, ok := last(events, model.TreasuryDeposit); ok {
		if amount, err := record.Param(0, "value").BigInt(); err == nil {
			if total == nil {
				total = new(big.Int)
			}
			total.Add(total, amount)
		}
	}

	return total
}

func last(events []codec.EventRecord, path model.EventPath) (codec.EventRecord, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Is(path) {
			return events[i], true
		}
	}
	return codec.EventRecord{}, false
}

func lastIndexOf(events []codec.EventRecord, paths ...model.EventPath) int {
	for i := len(events) - 1; i >= 0; i-- {
		for _, path := range paths {
			if events[i].Is(path) {
				return i
			}
		}
	}
	return -1
}
