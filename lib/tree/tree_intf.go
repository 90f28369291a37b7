package tree

import "iter"

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "BLACK"
	case Red:
		return "RED"
	default:
	}
	return "UNKNOWN"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "left"
	case Root:
		return "root"
	case Right:
		return "right"
	default:
	}
	return "unknown"
}

// RBNode is the read-only view of a tree node.
// The absent child or parent is returned as nil interface.
type RBNode[K any, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is an ordered key-value container. It is not thread safe,
// callers have to serialize the mutations by themselves.
type RBTree[K any, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	// Compare applies the comparator which the tree is ordered by.
	Compare(k1, k2 K) int64
	// Put inserts or updates the key. The previous value is returned
	// with replaced=true if the key existed.
	Put(key K, val V) (prev V, replaced bool, err error)
	// PutIfAbsent never replaces. It returns the existing value and
	// loaded=true if the key existed.
	PutIfAbsent(key K, val V) (actual V, loaded bool, err error)
	Get(key K) (val V, ok bool, err error)
	ContainsKey(key K) (bool, error)
	// Remove returns the removed value and removed=true, or the zero
	// value and removed=false if the key is absent.
	Remove(key K) (prev V, removed bool, err error)
	RemoveMin() (key K, val V, ok bool)
	Min() (key K, val V, ok bool)
	Max() (key K, val V, ok bool)
	Search(x RBNode[K, V], fn func(RBNode[K, V]) int64) RBNode[K, V]
	// InOrder yields the pairs in ascending comparator order.
	// The sequence is undefined if the tree is mutated meanwhile.
	InOrder() iter.Seq2[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Release()
	String() string
}
