package tree

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newSmallTree(t *testing.T) *rbTree[int, int] {
	tree := NewRBTree[int, int]()
	putAll(t, tree, 2, 1, 3)
	rt := tree.(*rbTree[int, int])
	require.Equal(t, 2, rt.root.key)
	require.Equal(t, Red, rt.root.left.color)
	require.Equal(t, Red, rt.root.right.color)
	return rt
}

func TestValidate_Healthy(t *testing.T) {
	require.NoError(t, Validate(NewRBTree[int, int]()))
	require.NoError(t, Validate[int, int](newSmallTree(t)))
}

func TestValidate_Violations(t *testing.T) {
	testcases := []struct {
		name     string
		corrupt  func(tree *rbTree[int, int])
		validate func(tree RBTree[int, int]) error
		expected error
	}{
		{
			name: "red root",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.color = Red
			},
			validate: RootViolationValidate[int, int],
			expected: ErrRBTreeRootViolation,
		},
		{
			name: "red node with red child",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.color = Red
			},
			validate: RedViolationValidate[int, int],
			expected: ErrRBTreeRedViolation,
		},
		{
			name: "unequal black depth",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.left.color = Black
			},
			validate: BlackViolationValidate[int, int],
			expected: ErrRBTreeBlackViolation,
		},
		{
			name: "broken parent link",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.right.parent = tree.root.left
			},
			validate: LinkViolationValidate[int, int],
			expected: ErrRBTreeLinkViolation,
		},
		{
			name: "unordered keys",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.left.key, tree.root.right.key = tree.root.right.key, tree.root.left.key
			},
			validate: OrderViolationValidate[int, int],
			expected: ErrRBTreeOrderViolation,
		},
		{
			name: "duplicated keys",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.right.key = tree.root.key
			},
			validate: OrderViolationValidate[int, int],
			expected: ErrRBTreeOrderViolation,
		},
		{
			name: "size mismatch",
			corrupt: func(tree *rbTree[int, int]) {
				tree.count--
			},
			validate: SizeViolationValidate[int, int],
			expected: ErrRBTreeSizeViolation,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newSmallTree(tt)
			require.NoError(tt, tc.validate(tree))
			tc.corrupt(tree)
			require.ErrorIs(tt, tc.validate(tree), tc.expected)
			require.ErrorIs(tt, Validate[int, int](tree), tc.expected)
		})
	}
}

func TestValidate_CombinesViolations(t *testing.T) {
	tree := newSmallTree(t)
	tree.root.color = Red
	tree.count = 7

	err := Validate[int, int](tree)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	require.ErrorIs(t, err, ErrRBTreeRootViolation)
	require.ErrorIs(t, err, ErrRBTreeRedViolation)
	require.ErrorIs(t, err, ErrRBTreeSizeViolation)
}

func TestRBTree_Rotate(t *testing.T) {
	tree := newTestTree(false)
	for _, k := range lo.Range(15) {
		_, _, err := tree.Put(uint64(k), uint64(k))
		require.NoError(t, err)
	}
	keysOf := func() []uint64 {
		keys, _ := collect[uint64, uint64](tree)
		return keys
	}
	expected := keysOf()

	root := tree.root
	right := root.right
	tree.leftRotate(root)
	require.Same(t, right, tree.root)
	require.Nil(t, tree.root.parent)
	require.Same(t, root, tree.root.left)
	require.Same(t, tree.root, root.parent)
	require.Equal(t, expected, keysOf())
	require.NoError(t, LinkViolationValidate[uint64, uint64](tree))
	require.NoError(t, OrderViolationValidate[uint64, uint64](tree))
	require.NoError(t, SizeViolationValidate[uint64, uint64](tree))

	tree.rightRotate(tree.root)
	require.Same(t, root, tree.root)
	require.Same(t, right, root.right)
	require.Equal(t, expected, keysOf())
	require.NoError(t, Validate[uint64, uint64](tree))

	// Rotate a non-root node, the parent slot is taken over.
	x := tree.root.left
	l := x.left
	tree.rightRotate(x)
	require.Same(t, l, tree.root.left)
	require.Same(t, tree.root, l.parent)
	require.Same(t, x, l.right)
	require.Equal(t, expected, keysOf())
	require.NoError(t, LinkViolationValidate[uint64, uint64](tree))
	tree.leftRotate(l)
	require.Same(t, x, tree.root.left)
	require.NoError(t, Validate[uint64, uint64](tree))
}

func TestRBTree_RotateWithoutChild(t *testing.T) {
	tree := newTestTree(false)
	for _, k := range []uint64{2, 1} {
		_, _, err := tree.Put(k, k)
		require.NoError(t, err)
	}
	root := tree.root
	tree.leftRotate(root)
	require.Same(t, root, tree.root)
	require.Nil(t, root.right)

	leaf := root.left
	tree.rightRotate(leaf)
	tree.leftRotate(leaf)
	require.Same(t, leaf, root.left)
	require.Same(t, root, leaf.parent)

	tree.leftRotate(nil)
	tree.rightRotate(nil)
	require.NoError(t, Validate[uint64, uint64](tree))
}
