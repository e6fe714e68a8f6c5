package nested

import "extrinsicScope/internal/model"

// Node is a call tree describing how a call was wrapped. It is one of
// Leaf, Batch or Delegated.
type Node[T any] interface {
	isNode()
}

// Leaf holds an unwrapped call.
type Leaf[T any] struct {
	Value T
}

// Batch holds the children of a batching wrapper that matched.
type Batch[T any] struct {
	Children []Node[T]
}

// Delegated holds a call executed on behalf of Owner.
type Delegated[T any] struct {
	Owner model.AccountID
	Child Node[T]
}

func (Leaf[T]) isNode()      {}
func (Batch[T]) isNode()     {}
func (Delegated[T]) isNode() {}

// Map transforms every leaf payload, keeping the wrapping structure.
func Map[T, U any](node Node[T], fn func(T) U) Node[U] {
	switch n := node.(type) {
	case Leaf[T]:
		return Leaf[U]{Value: fn(n.Value)}
	case Batch[T]:
		children := make([]Node[U], 0, len(n.Children))
		for _, child := range n.Children {
			children = append(children, Map(child, fn))
		}
		return Batch[U]{Children: children}
	case Delegated[T]:
		return Delegated[U]{Owner: n.Owner, Child: Map(n.Child, fn)}
	default:
		return nil
	}
}

// Calls flattens the leaves in document order.
func Calls[T any](node Node[T]) []T {
	var out []T
	var walk func(Node[T])
	walk = func(node Node[T]) {
		switch n := node.(type) {
		case Leaf[T]:
			out = append(out, n.Value)
		case Batch[T]:
			for _, child := range n.Children {
				walk(child)
			}
		case Delegated[T]:
			walk(n.Child)
		}
	}
	walk(node)
	return out
}

// CallSender returns the delegation owner nearest to the first leaf, or nil
// when the leaf was never delegated.
func CallSender[T any](node Node[T]) *model.AccountID {
	switch n := node.(type) {
	case Delegated[T]:
		if inner := CallSender[T](n.Child); inner != nil {
			return inner
		}
		owner := n.Owner
		return &owner
	case Batch[T]:
		if len(n.Children) == 0 {
			return nil
		}
		return CallSender[T](n.Children[0])
	default:
		return nil
	}
}
