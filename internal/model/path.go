package model

import "strings"

// CallPath identifies a call shape by pallet and function name.
type CallPath struct {
	Module   string `json:"module"`
	Function string `json:"function"`
}

func NewCallPath(module, function string) CallPath {
	return CallPath{Module: module, Function: function}
}

func (p CallPath) String() string {
	return p.Module + "." + p.Function
}

// IsEmpty reports whether either component is missing.
func (p CallPath) IsEmpty() bool {
	return p.Module == "" || p.Function == ""
}

// EqualFold compares paths ignoring case, matching how runtimes differ in
// call name casing between metadata versions.
func (p CallPath) EqualFold(other CallPath) bool {
	return strings.EqualFold(p.Module, other.Module) && strings.EqualFold(p.Function, other.Function)
}

// EventPath identifies an event by pallet and event name.
type EventPath struct {
	Module string `json:"module"`
	Event  string `json:"event"`
}

func NewEventPath(module, event string) EventPath {
	return EventPath{Module: module, Event: event}
}

func (p EventPath) String() string {
	return p.Module + "." + p.Event
}

// Well known call paths.
var (
	BalancesTransfer            = NewCallPath("Balances", "transfer")
	BalancesTransferKeepAlive   = NewCallPath("Balances", "transfer_keep_alive")
	BalancesTransferAllowDeath  = NewCallPath("Balances", "transfer_allow_death")
	BalancesForceTransfer       = NewCallPath("Balances", "force_transfer")
	BalancesTransferAll         = NewCallPath("Balances", "transfer_all")
	EquilibriumTransfer         = NewCallPath("EqBalances", "transfer")
	EthereumTransact            = NewCallPath("Ethereum", "transact")
	ProxyProxy                  = NewCallPath("Proxy", "proxy")
	ProxyProxyAnnounced         = NewCallPath("Proxy", "proxy_announced")
	UtilityBatch                = NewCallPath("Utility", "batch")
	UtilityBatchAll             = NewCallPath("Utility", "batch_all")
	UtilityForceBatch           = NewCallPath("Utility", "force_batch")
	AssetConversionSwapExactIn  = NewCallPath("AssetConversion", "swap_exact_tokens_for_tokens")
	AssetConversionSwapExactOut = NewCallPath("AssetConversion", "swap_tokens_for_exact_tokens")
	RouterSell                  = NewCallPath("Router", "sell")
	RouterBuy                   = NewCallPath("Router", "buy")
	OmnipoolSell                = NewCallPath("Omnipool", "sell")
	OmnipoolBuy                 = NewCallPath("Omnipool", "buy")
)

// Well known event paths.
var (
	ExtrinsicSuccess     = NewEventPath("System", "ExtrinsicSuccess")
	ExtrinsicFailed      = NewEventPath("System", "ExtrinsicFailed")
	TransactionFeePaid   = NewEventPath("TransactionPayment", "TransactionFeePaid")
	AssetTxFeePaid       = NewEventPath("AssetTxPayment", "AssetTxFeePaid")
	BalancesWithdraw     = NewEventPath("Balances", "Withdraw")
	BalancesDeposit      = NewEventPath("Balances", "Deposit")
	BalancesTransferred  = NewEventPath("Balances", "Transfer")
	TreasuryDeposit      = NewEventPath("Treasury", "Deposit")
	TokensTransferred    = NewEventPath("Tokens", "Transfer")
	TokensDeposited      = NewEventPath("Tokens", "Deposited")
	EthereumExecuted     = NewEventPath("Ethereum", "Executed")
	AssetConversionSwap  = NewEventPath("AssetConversion", "SwapExecuted")
	RouterExecuted       = NewEventPath("Router", "Executed")
	OmnipoolSellExecuted = NewEventPath("Omnipool", "SellExecuted")
	OmnipoolBuyExecuted  = NewEventPath("Omnipool", "BuyExecuted")
)
