package nested

import (
	"errors"
	"fmt"

	"extrinsicScope/internal/codec"
	"extrinsicScope/internal/model"
)

// ErrNoMatch is returned when no leaf of the call tree satisfies the predicate.
var ErrNoMatch = errors.New("no matching call")

const maxDepth = 16

var (
	delegationPaths = []model.CallPath{model.ProxyProxy, model.ProxyProxyAnnounced}
	batchPaths      = []model.CallPath{model.UtilityBatch, model.UtilityBatchAll, model.UtilityForceBatch}
)

// Result is a matched call tree together with the signer of the extrinsic.
type Result struct {
	Node            Node[codec.Call]
	ExtrinsicSender model.AccountID
}

// CallSender is the effective sender of the first matching call.
func (r Result) CallSender() model.AccountID {
	if owner := CallSender[codec.Call](r.Node); owner != nil {
		return *owner
	}
	return r.ExtrinsicSender
}

// Calls returns every matching call in document order.
func (r Result) Calls() []codec.Call {
	return Calls[codec.Call](r.Node)
}

// FirstCall returns the first matching call.
func (r Result) FirstCall() codec.Call {
	calls := r.Calls()
	if len(calls) == 0 {
		return codec.Call{}
	}
	return calls[0]
}

// Unwrapper walks delegation and batching wrappers.
type Unwrapper struct {
	extrinsicSender model.AccountID
}

func NewUnwrapper(extrinsicSender model.AccountID) Unwrapper {
	return Unwrapper{extrinsicSender: extrinsicSender}
}

// Unwrap tries, in order, a direct match, a delegation wrapper and a batch
// wrapper. It fails with ErrNoMatch when none of them yields a matching leaf.
func (u Unwrapper) Unwrap(call codec.Call, isMatch func(codec.Call) bool) (Result, error) {
	node, err := unwrap(call, isMatch, 0)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: node, ExtrinsicSender: u.extrinsicSender}, nil
}

// UnwrapNotNested descends to the first call that is not itself a wrapper.
func (u Unwrapper) UnwrapNotNested(call codec.Call) (Result, error) {
	return u.Unwrap(call, func(c codec.Call) bool { return !IsWrapper(c.Path) })
}

// IsWrapper reports whether path is a delegation or batching call.
func IsWrapper(path model.CallPath) bool {
	return isOneOf(path, delegationPaths) || isOneOf(path, batchPaths)
}

func unwrap(call codec.Call, isMatch func(codec.Call) bool, depth int) (Node[codec.Call], error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrNoMatch, maxDepth)
	}

	if isMatch(call) {
		return Leaf[codec.Call]{Value: call}, nil
	}

	if node, ok := unwrapDelegation(call, isMatch, depth); ok {
		return node, nil
	}

	if node, ok := unwrapBatch(call, isMatch, depth); ok {
		return node, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNoMatch, call.Path)
}

func unwrapDelegation(call codec.Call, isMatch func(codec.Call) bool, depth int) (Node[codec.Call], bool) {
	if !isOneOf(call.Path, delegationPaths) {
		return nil, false
	}

	owner, err := call.Args.Field("real").AccountID()
	if err != nil {
		return nil, false
	}
	inner, err := codec.CallFromValue(call.Args.Field("call"))
	if err != nil {
		return nil, false
	}

	child, err := unwrap(inner, isMatch, depth+1)
	if err != nil {
		return nil, false
	}
	return Delegated[codec.Call]{Owner: owner, Child: child}, true
}

func unwrapBatch(call codec.Call, isMatch func(codec.Call) bool, depth int) (Node[codec.Call], bool) {
	if !isOneOf(call.Path, batchPaths) {
		return nil, false
	}

	items, err := call.Args.Field("calls").List()
	if err != nil {
		return nil, false
	}

	var children []Node[codec.Call]
	for _, item := range items {
		inner, err := codec.CallFromValue(item)
		if err != nil {
			continue
		}
		child, err := unwrap(inner, isMatch, depth+1)
		if err != nil {
			continue
		}
		children = append(children, child)
	}

	if len(children) == 0 {
		return nil, false
	}
	return Batch[codec.Call]{Children: children}, true
}

func isOneOf(path model.CallPath, paths []model.CallPath) bool {
	for _, candidate := range paths {
		if path.EqualFold(candidate) {
			return true
		}
	}
	return false
}
