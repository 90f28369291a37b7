package tree

import (
	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/xlog"
)

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

// WithRBTreeDesc reverses the comparator once at construction.
func WithRBTreeDesc[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithRBTreeRemoveBorrowPred removes a node with two children by
// borrowing its pred instead of its succ.
func WithRBTreeRemoveBorrowPred[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isRmBorrowPred = true
	}
}

func WithRBTreeLogger[K any, V any](logger xlog.XLogger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		if logger == nil {
			return
		}
		tree.logger = logger.Named("rbtree")
	}
}

func WithRBTreeStats[K any, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newRBTreeStats(name)
	}
}

// WithRBTreeInvariantCheck validates the whole tree after every
// mutation and panics on violation. O(n) per mutation, debug only.
func WithRBTreeInvariantCheck[K any, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isInvariantChecked = true
	}
}

func newRBTree[K any, V any](
	cmp infra.OrderedKeyComparator[K],
	keyCheck func(K) bool,
	opts ...RBTreeOpt[K, V],
) *rbTree[K, V] {
	tree := &rbTree[K, V]{
		count:    0,
		cmp:      cmp,
		keyCheck: keyCheck,
	}

	for _, o := range opts {
		o(tree)
	}
	if tree.isDesc {
		tree.cmp = infra.Reverse(tree.cmp)
	}
	return tree
}

// NewRBTree orders the keys by their natural order. NaN keys are rejected
// with ErrRBTreeInvalidKey.
func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return newRBTree[K, V](infra.NaturalOrder[K](), infra.IsValidOrderedKey[K], opts...)
}

// NewComparableRBTree orders the keys by their own CompareTo. Nil keys
// are rejected with ErrRBTreeInvalidKey.
func NewComparableRBTree[K infra.Comparable[K], V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return newRBTree[K, V](infra.ComparableOrder[K](), infra.IsValidComparableKey[K], opts...)
}

// NewRBTreeFunc orders the keys by the injected comparator, which is
// trusted to tolerate every key.
func NewRBTreeFunc[K any, V any](cmp infra.OrderedKeyComparator[K], opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	if cmp == nil {
		return nil, ErrRBTreeNilComparator
	}
	return newRBTree[K, V](cmp, nil, opts...), nil
}
