package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

func isBlack[K any, V any](node RBNode[K, V]) bool {
	return isNilLeaf[K, V](node) || node.Color() == Black
}

func isRed[K any, V any](node RBNode[K, V]) bool {
	return !isNilLeaf[K, V](node) && node.Color() == Red
}

func isNilLeaf[K any, V any](node RBNode[K, V]) bool {
	return node == nil
}

func isRoot[K any, V any](node RBNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K any, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// inorder walks the nodes by an explicit stack, fn returns false to stop.
func inorder[K any, V any](tree RBTree[K, V], fn func(node RBNode[K, V]) bool) {
	size := tree.Len()
	aux := tree.Root()
	if size < 0 || isNilLeaf[K, V](aux) {
		return
	}

	stack := make([]RBNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; !isNilLeaf[K, V](aux); aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !fn(aux) {
			return
		}
		stack = stack[:size-1]
		for aux = aux.Right(); !isNilLeaf[K, V](aux); aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate checks that no red node has a red child.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) (err error) {
	inorder[K, V](tree, func(aux RBNode[K, V]) bool {
		if isRed[K, V](aux) && (isRed[K, V](aux.Left()) || isRed[K, V](aux.Right())) {
			err = fmt.Errorf("%w: red node (key %v) has a red child", ErrRBTreeRedViolation, aux.Key())
			return false
		}
		return true
	})
	return err
}

// BFS traversal to load all nodes owning at least one nil leaf.
func bfsLeaves[K any, V any](tree RBTree[K, V]) []RBNode[K, V] {
	size := tree.Len()
	aux := tree.Root()
	if size < 0 || isNilLeaf[K, V](aux) {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, size>>1+1)
	queue := make([]RBNode[K, V], 0, size>>1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ isNilLeaf[K, V](l) || isNilLeaf[K, V](r) {
			leaves = append(leaves, aux)
		}
		if !isNilLeaf[K, V](l) {
			queue = append(queue, l)
		}
		if !isNilLeaf[K, V](r) {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], tree.Root())
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K, V](leaves[i], tree.Root()); depth != blackDepth {
			return fmt.Errorf("%w: black depth of key %v is %d, expected %d",
				ErrRBTreeBlackViolation, leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

// RootViolationValidate checks that the root is black and has no parent.
func RootViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if isNilLeaf[K, V](root) {
		return nil
	}
	if !isRoot[K, V](root) {
		return fmt.Errorf("%w: root (key %v) has a parent", ErrRBTreeRootViolation, root.Key())
	}
	if !isBlack[K, V](root) {
		return fmt.Errorf("%w: root (key %v) is red", ErrRBTreeRootViolation, root.Key())
	}
	return nil
}

// LinkViolationValidate checks that every child points back to its parent.
func LinkViolationValidate[K any, V any](tree RBTree[K, V]) (err error) {
	inorder[K, V](tree, func(aux RBNode[K, V]) bool {
		if l := aux.Left(); !isNilLeaf[K, V](l) && l.Parent() != aux {
			err = fmt.Errorf("%w: left child (key %v) of key %v", ErrRBTreeLinkViolation, l.Key(), aux.Key())
			return false
		}
		if r := aux.Right(); !isNilLeaf[K, V](r) && r.Parent() != aux {
			err = fmt.Errorf("%w: right child (key %v) of key %v", ErrRBTreeLinkViolation, r.Key(), aux.Key())
			return false
		}
		return true
	})
	return err
}

// OrderViolationValidate checks that the inorder keys are strictly
// increasing under the tree's comparator.
func OrderViolationValidate[K any, V any](tree RBTree[K, V]) (err error) {
	var prev RBNode[K, V]
	inorder[K, V](tree, func(aux RBNode[K, V]) bool {
		if prev != nil && tree.Compare(prev.Key(), aux.Key()) >= 0 {
			err = fmt.Errorf("%w: key %v is not less than key %v", ErrRBTreeOrderViolation, prev.Key(), aux.Key())
			return false
		}
		prev = aux
		return true
	})
	return err
}

// SizeViolationValidate checks that the counter equals the reachable nodes.
func SizeViolationValidate[K any, V any](tree RBTree[K, V]) error {
	count := int64(0)
	inorder[K, V](tree, func(RBNode[K, V]) bool {
		count++
		return true
	})
	if count != tree.Len() {
		return fmt.Errorf("%w: %d nodes reachable, len is %d", ErrRBTreeSizeViolation, count, tree.Len())
	}
	return nil
}

// Validate runs all the rule validations and combines the violations.
func Validate[K any, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		RootViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		LinkViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
		SizeViolationValidate[K, V](tree),
	)
}
