package tree

import (
	randv2 "math/rand/v2"
	"sort"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xrbtree/lib/id"
	"github.com/benz9527/xrbtree/lib/infra"
)

type checkData struct {
	color RBColor
	key   uint64
}

func newTestTree(rmBorrowPred bool) *rbTree[uint64, uint64] {
	opts := make([]RBTreeOpt[uint64, uint64], 0, 1)
	if rmBorrowPred {
		opts = append(opts, WithRBTreeRemoveBorrowPred[uint64, uint64]())
	}
	return newRBTree[uint64, uint64](infra.NaturalOrder[uint64](), infra.IsValidOrderedKey[uint64], opts...)
}

func requireColors(t *testing.T, tree RBTree[uint64, uint64], expected []checkData) {
	count := int64(0)
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color, "key %d", key)
		require.Equal(t, expected[idx].key, key)
		count++
		return true
	})
	require.Equal(t, int64(len(expected)), count)
	require.Equal(t, int64(len(expected)), tree.Len())
	require.NoError(t, Validate(tree))
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)

	tree := NewRBTree[uint64, uint64]()
	require.True(t, tree.Root() == nil)
	require.Nil(t, nilNode2.Left())
	require.Nil(t, nilNode2.Right())
	require.Nil(t, nilNode2.Parent())
	require.True(t, nilNode2.isBlack())
	require.False(t, nilNode2.isRed())
}

func TestRbtreeLeftAndRightRotate_Pred(t *testing.T) {
	tree := newTestTree(true)

	_, _, err := tree.Put(52, 1)
	require.NoError(t, err)
	requireColors(t, tree, []checkData{
		{Black, 52},
	})

	_, _, err = tree.Put(47, 1)
	require.NoError(t, err)
	requireColors(t, tree, []checkData{
		{Red, 47}, {Black, 52},
	})

	_, _, err = tree.Put(3, 1)
	require.NoError(t, err)
	requireColors(t, tree, []checkData{
		{Red, 3}, {Black, 47}, {Red, 52},
	})

	_, _, err = tree.Put(35, 1)
	require.NoError(t, err)
	requireColors(t, tree, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	_, _, err = tree.Put(24, 1)
	require.NoError(t, err)
	requireColors(t, tree, []checkData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// remove

	_, ok, err := tree.Remove(24)
	require.NoError(t, err)
	require.True(t, ok)
	requireColors(t, tree, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	_, ok, err = tree.Remove(47)
	require.NoError(t, err)
	require.True(t, ok)
	requireColors(t, tree, []checkData{
		{Black, 3},
		{Black, 35},
		{Black, 52},
	})

	_, ok, err = tree.Remove(52)
	require.NoError(t, err)
	require.True(t, ok)
	requireColors(t, tree, []checkData{
		{Red, 3}, {Black, 35},
	})

	_, ok, err = tree.Remove(3)
	require.NoError(t, err)
	require.True(t, ok)
	requireColors(t, tree, []checkData{
		{Black, 35},
	})

	_, ok, err = tree.Remove(35)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
}

func TestRbtreeLeftAndRightRotate_Succ(t *testing.T) {
	tree := newTestTree(false)
	for _, k := range []uint64{52, 47, 3, 35, 24} {
		_, _, err := tree.Put(k, k)
		require.NoError(t, err)
	}

	// 24 has two children, the succ 35 is copied into it.
	prev, ok, err := tree.Remove(24)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(24), prev)
	requireColors(t, tree, []checkData{
		{Red, 3},
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})
	val, ok, err := tree.Get(35)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(35), val)
}

func TestRbtree_RemoveMin(t *testing.T) {
	tree := newTestTree(false)

	for _, k := range []uint64{52, 47, 3, 35, 24} {
		_, _, err := tree.Put(k, 1)
		require.NoError(t, err)
	}
	requireColors(t, tree, []checkData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// remove min

	key, _, ok := tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(3), key)
	requireColors(t, tree, []checkData{
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	key, _, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(24), key)
	requireColors(t, tree, []checkData{
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})

	key, _, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(35), key)
	requireColors(t, tree, []checkData{
		{Black, 47}, {Red, 52},
	})

	key, _, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(47), key)
	requireColors(t, tree, []checkData{
		{Black, 52},
	})

	key, _, ok = tree.RemoveMin()
	require.True(t, ok)
	require.Equal(t, uint64(52), key)
	require.Equal(t, int64(0), tree.Len())

	_, _, ok = tree.RemoveMin()
	require.False(t, ok)
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, rmBorrowPred bool) {
	total := uint64(1000)
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	tree := newTestTree(rmBorrowPred)

	for i := uint64(0); i < insertTotal; i++ {
		_, _, err := tree.Put(i, 1)
		require.NoError(t, err)
		require.NoError(t, Validate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		_, _, err := tree.Put(i, 1)
		require.NoError(t, err)
		require.NoError(t, Validate[uint64, uint64](tree))
	}

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == insertTotal+92 {
			x := tree.Search(tree.Root(), func(node RBNode[uint64, uint64]) int64 {
				return tree.Compare(i, node.Key())
			})
			require.Equal(t, i, x.Key())
		}
		_, ok, err := tree.Remove(i)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, Validate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	type testcase struct {
		name         string
		rmBorrowPred bool
	}
	testcases := []testcase{
		{
			name: "rm by succ",
		},
		{
			name:         "rm by pred",
			rmBorrowPred: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.rmBorrowPred)
		})
	}
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber_Release(t *testing.T) {
	insertTotal := uint64(100_000)

	tree := newTestTree(false)

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		_, _, err := tree.Put(i, 1)
		require.NoError(t, err)
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	root := tree.root
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Nil(t, root.left)
	require.Nil(t, root.right)
	require.Nil(t, root.parent)
}

func TestRbtreeRandomInsertAndRemove_ReverseSequentialNumber(t *testing.T) {
	total := int64(10000)
	insertTotal := int64(float64(total) * 0.8)
	removeTotal := int64(float64(total) * 0.2)

	tree := NewRBTree[int64, uint64](WithRBTreeDesc[int64, uint64]())

	rand := int64(randv2.Uint32() % 1_000)
	for i := insertTotal - 1; i >= 0; i-- {
		_, _, err := tree.Put(i, 1)
		require.NoError(t, err)
		if i%1000 == rand {
			require.NoError(t, Validate(tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})

	for i := removeTotal + insertTotal - 1; i >= insertTotal; i-- {
		_, _, err := tree.Put(i, 1)
		require.NoError(t, err)
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, removeTotal+insertTotal-1-idx, key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		_, ok, err := tree.Remove(i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, Validate(tree))
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, insertTotal-1-idx, key)
		return true
	})

	maxKey, _, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, insertTotal-1, maxKey)
}

func rbtreeRandomInsertAndRemoveRandomNumberRunCore(t *testing.T, total uint64, rmBorrowPred bool, violationCheck bool) {
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	idGen, err := id.MonotonicRandomStepID(100)
	require.NoError(t, err)
	insertElements := make([]uint64, 0, insertTotal)
	removeElements := make([]uint64, 0, removeTotal)

	for uint64(len(insertElements)) < insertTotal || uint64(len(removeElements)) < removeTotal {
		num := idGen.Number()
		if num&0x1 == 0 && uint64(len(insertElements)) < insertTotal {
			insertElements = append(insertElements, num)
		} else if uint64(len(removeElements)) < removeTotal {
			removeElements = append(removeElements, num)
		} else {
			insertElements = append(insertElements, num)
		}
	}

	insertElements = lo.Shuffle(insertElements)
	removeElements = lo.Shuffle(removeElements)

	tree := newTestTree(rmBorrowPred)

	for i := uint64(0); i < insertTotal; i++ {
		_, _, err := tree.Put(insertElements[i], i)
		require.NoError(t, err)
		if violationCheck {
			require.NoError(t, Validate[uint64, uint64](tree))
		}
	}
	for i := uint64(0); i < insertTotal; i++ {
		val, ok, err := tree.Get(insertElements[i])
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, i, val)
	}
	sort.Slice(insertElements, func(i, j int) bool {
		return insertElements[i] < insertElements[j]
	})
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})

	for i := uint64(0); i < removeTotal; i++ {
		_, _, err := tree.Put(removeElements[i], 1)
		require.NoError(t, err)
		if violationCheck {
			require.NoError(t, Validate[uint64, uint64](tree))
		}
	}
	require.NoError(t, Validate[uint64, uint64](tree))

	for i := uint64(0); i < removeTotal; i++ {
		before := tree.Len()
		_, ok, err := tree.Remove(removeElements[i])
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, before-1, tree.Len())
		contains, err := tree.ContainsKey(removeElements[i])
		require.NoError(t, err)
		require.False(t, contains)
		if violationCheck {
			require.NoError(t, Validate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_RandomNumber(t *testing.T) {
	type testcase struct {
		name           string
		rmBorrowPred   bool
		total          uint64
		violationCheck bool
	}
	testcases := []testcase{
		{
			name:  "rm by succ 100000",
			total: 100000,
		},
		{
			name:         "rm by pred 100000",
			rmBorrowPred: true,
			total:        100000,
		},
		{
			name:           "violation check rm by succ 5000",
			total:          5000,
			violationCheck: true,
		},
		{
			name:           "violation check rm by pred 5000",
			rmBorrowPred:   true,
			total:          5000,
			violationCheck: true,
		},
	}
	t.Parallel()
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRandomNumberRunCore(tt, tc.total, tc.rmBorrowPred, tc.violationCheck)
		})
	}
}

func TestRbtreeRandomInterleavedOperations(t *testing.T) {
	tree := NewRBTree[int, int](WithRBTreeInvariantCheck[int, int]())
	shadow := make(map[int]int, 512)
	for i := 0; i < 20_000; i++ {
		key := randv2.IntN(512)
		if randv2.IntN(3) == 0 {
			prev, ok, err := tree.Remove(key)
			require.NoError(t, err)
			exp, exists := shadow[key]
			require.Equal(t, exists, ok)
			if exists {
				require.Equal(t, exp, prev)
			}
			delete(shadow, key)
		} else {
			prev, replaced, err := tree.Put(key, i)
			require.NoError(t, err)
			exp, exists := shadow[key]
			require.Equal(t, exists, replaced)
			if exists {
				require.Equal(t, exp, prev)
			}
			shadow[key] = i
		}
		require.Equal(t, int64(len(shadow)), tree.Len())
	}

	keys := lo.Keys(shadow)
	sort.Ints(keys)
	idx := 0
	for k, v := range tree.InOrder() {
		require.Equal(t, keys[idx], k)
		require.Equal(t, shadow[k], v)
		idx++
	}
	require.Equal(t, len(keys), idx)
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tree.Put(rngArr[i], testByBytes); err != nil {
			panic(err)
		}
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := NewRBTree[int, []byte]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tree.Put(i, testByBytes)
	}
}
