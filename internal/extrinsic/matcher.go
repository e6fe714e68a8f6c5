package extrinsic

import (
	"go.uber.org/zap"

	"extrinsicScope/internal/assets"
	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// Matcher classifies one family of calls. A nil result with a nil error
// means the extrinsic does not belong to the family.
type Matcher interface {
	Name() string
	Match(in Input, ctx MatchContext) (*model.ExtrinsicProcessingResult, error)
}

// Input is one decoded extrinsic together with every event of its block.
type Input struct {
	Index     uint32
	Extrinsic codec.Extrinsic
	Events    []codec.EventRecord
}

// Scoped returns the events emitted by this extrinsic.
func (in Input) Scoped() []codec.EventRecord {
	return codec.FilterByExtrinsic(in.Events, in.Index)
}

// Signer returns the extrinsic signer, or false for unsigned extrinsics.
func (in Input) Signer() (model.AccountID, bool) {
	if in.Extrinsic.Signer == nil || in.Extrinsic.Signer.IsEmpty() {
		return "", false
	}
	return *in.Extrinsic.Signer, true
}

// MatchContext provides shared dependencies for matchers.
type MatchContext struct {
	Account model.AccountID
	Chain   model.Chain
	Factory codec.Factory
	Assets  *assets.Resolver
	Logger  *zap.Logger
}

// DefaultMatchers returns the catalogue in priority order. The first matcher
// that returns a result wins.
func DefaultMatchers() []Matcher {
	return []Matcher{
		BalancesMatcher{},
		AssetsMatcher{},
		OrmlMatcher{},
		EquilibriumMatcher{},
		AssetHubSwapMatcher{},
		HydraSwapMatcher{},
		FallbackMatcher{},
	}
}

// MatchStatus reports whether extrinsic index succeeded. The last status
// event wins. ok is false when the block has no status event for it.
func MatchStatus(index uint32, events []codec.EventRecord) (success bool, ok bool) {
	for _, record := range events {
		if !record.AppliesTo(index) {
			continue
		}
		switch {
		case record.Is(model.ExtrinsicSuccess):
			success, ok = true, true
		case record.Is(model.ExtrinsicFailed):
			success, ok = false, true
		}
	}
	return success, ok
}

// peerOf returns the counterparty of a transfer from the point of view of
// account.
func peerOf(account, callSender, dest model.AccountID) *model.AccountID {
	if account == callSender {
		return model.PeerRef(dest)
	}
	return model.PeerRef(callSender)
}

func pathIn(path model.CallPath, paths []model.CallPath) bool {
	for _, candidate := range paths {
		if path.EqualFold(candidate) {
			return true
		}
	}
	return false
}

func isOneOf(paths ...model.CallPath) func(codec.Call) bool {
	return func(call codec.Call) bool {
		return pathIn(call.Path, paths)
	}
}

func lastEvent(events []codec.EventRecord, paths ...model.EventPath) (codec.EventRecord, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		for _, path := range paths {
			if events[i].Is(path) {
				return events[i], true
			}
		}
	}
	return codec.EventRecord{}, false
}

func allEvents(events []codec.EventRecord, path model.EventPath) []codec.EventRecord {
	var out []codec.EventRecord
	for _, record := range events {
		if record.Is(path) {
			out = append(out, record)
		}
	}
	return out
}

func firstEvent(events []codec.EventRecord, path model.EventPath) (codec.EventRecord, bool) {
	for _, record := range events {
		if record.Is(path) {
			return record, true
		}
	}
	return codec.EventRecord{}, false
}
