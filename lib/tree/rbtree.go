package tree

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/xlog"
)

var (
	ErrRBTreeInvalidKey     = errors.New("[rbtree] invalid key")
	ErrRBTreeNilComparator  = errors.New("[rbtree] nil comparator")
	ErrRBTreeRedViolation   = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation = errors.New("[rbtree] black violation")
	ErrRBTreeRootViolation  = errors.New("[rbtree] root violation")
	ErrRBTreeLinkViolation  = errors.New("[rbtree] link violation")
	ErrRBTreeOrderViolation = errors.New("[rbtree] order violation")
	ErrRBTreeSizeViolation  = errors.New("[rbtree] size violation")
)

type rbNode[K any, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V]) String() string {
	return fmt.Sprintf("{key=%v, value=%v, color=%s}", node.key, node.val, node.color)
}

// The absent child is a black leaf.
func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K, V]) uncle() *rbNode[K, V] {
	return node.parent.sibling()
}

func (node *rbNode[K, V]) grandpa() *rbNode[K, V] {
	return node.parent.parent
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order
func (node *rbNode[K, V]) pred() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[K, V]) succ() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

type insertCase uint8

const (
	insertUncleRed insertCase = iota
	insertInnerChild
	insertOuterChild
)

func (c insertCase) String() string {
	switch c {
	case insertUncleRed:
		return "uncle-red"
	case insertInnerChild:
		return "inner-child"
	case insertOuterChild:
		return "outer-child"
	default:
	}
	return "unknown"
}

type removeCase uint8

const (
	removeSiblingRed removeCase = iota
	removeNephewsBlack
	removeNearNephewRed
	removeFarNephewRed
)

func (c removeCase) String() string {
	switch c {
	case removeSiblingRed:
		return "sibling-red"
	case removeNephewsBlack:
		return "nephews-black"
	case removeNearNephewRed:
		return "near-nephew-red"
	case removeFarNephewRed:
		return "far-nephew-red"
	default:
	}
	return "unknown"
}

type rbTree[K any, V any] struct {
	root               *rbNode[K, V]
	count              int64
	cmp                infra.OrderedKeyComparator[K]
	keyCheck           func(K) bool
	logger             xlog.XLogger
	stats              *rbTreeStats
	isDesc             bool
	isRmBorrowPred     bool
	isInvariantChecked bool
}

func (tree *rbTree[K, V]) Compare(k1, k2 K) int64 {
	return tree.cmp(k1, k2)
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K, V]) checkKey(key K) error {
	if tree.keyCheck != nil && !tree.keyCheck(key) {
		return ErrRBTreeInvalidKey
	}
	return nil
}

func (tree *rbTree[K, V]) find(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if /* equal */ res == 0 {
			return aux
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return nil
}

func (tree *rbTree[K, V]) traceInsert(c insertCase, x *rbNode[K, V]) {
	tree.stats.IncreaseInsertFixupCount(c)
	if tree.logger != nil && tree.logger.DebugEnabled() {
		tree.logger.Debug("[rbtree] insert rebalance",
			zap.String("case", c.String()),
			zap.Any("key", x.key),
		)
	}
}

func (tree *rbTree[K, V]) traceRemove(c removeCase, x *rbNode[K, V]) {
	tree.stats.IncreaseRemoveFixupCount(c)
	if tree.logger != nil && tree.logger.DebugEnabled() {
		tree.logger.Debug("[rbtree] remove rebalance",
			zap.String("case", c.String()),
			zap.Any("key", x.key),
		)
	}
}

// Invariant violation is a programming bug, never a recoverable error.
func (tree *rbTree[K, V]) assertInvariants(op string) {
	if !tree.isInvariantChecked {
		return
	}
	if err := Validate[K, V](tree); err != nil {
		if tree.logger != nil {
			tree.logger.Error(err, "[rbtree] invariant violation", zap.String("op", op))
		}
		panic( /* debug assertion */ fmt.Errorf("[rbtree] invariant violation after %s: %w", op, err))
	}
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The root is black.
// p3. All NIL nodes are considered black.
// p4. A red node does not have a red child. (red-violation)
// p5. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p5.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		return
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotationCount(Left)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		return
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotationCount(Right)
}

func (tree *rbTree[K, V]) Put(key K, val V) (prev V, replaced bool, err error) {
	return tree.insert(key, val, true)
}

func (tree *rbTree[K, V]) PutIfAbsent(key K, val V) (actual V, loaded bool, err error) {
	return tree.insert(key, val, false)
}

// i1: Empty rbtree, insert directly, but root node is painted to black.
// i2: The key exists, replace the value in place (if enabled) without
// any structural change.
// i3: Attach a new red leaf and rebalance.
func (tree *rbTree[K, V]) insert(key K, val V, replace bool) (prev V, replaced bool, err error) {
	if err = tree.checkKey(key); err != nil {
		return prev, false, err
	}

	if /* i1 */ tree.root == nil {
		tree.root = &rbNode[K, V]{
			key:   key,
			val:   val,
			color: Black,
		}
		atomic.AddInt64(&tree.count, 1)
		tree.stats.RecordNodeCount(1)
		tree.assertInvariants("put")
		return prev, false, nil
	}

	var (
		x, y *rbNode[K, V] = tree.root, nil
		res  int64
	)
	for x != nil {
		y = x
		res = tree.cmp(key, x.key)
		if /* i2 */ res == 0 {
			prev = x.val
			if replace {
				x.val = val
			}
			return prev, true, nil
		} else if res < 0 {
			x = x.left
		} else {
			x = x.right
		}
	}

	/* i3 */
	z := &rbNode[K, V]{
		key:    key,
		val:    val,
		color:  Red,
		parent: y,
	}
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.insertRebalance(z)
	atomic.AddInt64(&tree.count, 1)
	tree.stats.RecordNodeCount(1)
	tree.assertInvariants("put")
	return prev, false, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

The loop runs while X is not the root and its parent P is red. A red P is
never the root, so the grandpa G exists.

uncle-red: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Continue to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

inner-child: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
It is still red-violation. Here must enter outer-child to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

outer-child: Current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

At last, the root is painted black unconditionally.
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for !x.isRoot() && x.parent.isRed() {
		p, g, u := x.parent, x.grandpa(), x.uncle()
		if /* uncle-red */ u.isRed() {
			tree.traceInsert(insertUncleRed, x)
			p.color = Black
			u.color = Black
			g.color = Red
			x = g
			continue
		}

		pDir := p.Direction()
		if /* inner-child */ x.Direction() != pDir {
			tree.traceInsert(insertInnerChild, x)
			switch pDir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert violate (inner-child)")
			}
			x = p
			p = x.parent
		}

		/* outer-child */
		tree.traceInsert(insertOuterChild, x)
		p.color = Black
		g.color = Red
		switch pDir {
		case Left:
			tree.rightRotate(g)
		case Right:
			tree.leftRotate(g)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert violate (outer-child)")
		}
		break
	}
	tree.root.color = Black
}

func (tree *rbTree[K, V]) Get(key K) (val V, ok bool, err error) {
	if err = tree.checkKey(key); err != nil {
		return val, false, err
	}
	if x := tree.find(key); x != nil {
		return x.val, true, nil
	}
	return val, false, nil
}

func (tree *rbTree[K, V]) ContainsKey(key K) (bool, error) {
	_, ok, err := tree.Get(key)
	return ok, err
}

func (tree *rbTree[K, V]) Remove(key K) (prev V, removed bool, err error) {
	if err = tree.checkKey(key); err != nil {
		return prev, false, err
	}
	z := tree.find(key)
	if z == nil {
		return prev, false, nil
	}
	prev = z.val
	tree.removeNode(z)
	tree.assertInvariants("remove")
	return prev, true, nil
}

func (tree *rbTree[K, V]) RemoveMin() (key K, val V, ok bool) {
	_min := tree.root.minimum()
	if _min == nil {
		return key, val, false
	}
	key, val = _min.key, _min.val
	tree.removeNode(_min)
	tree.assertInvariants("remove-min")
	return key, val, true
}

/*
r1: Current node X has left and right node.
Find node X's succ (or pred) to replace it to be removed.
Copy the key and value only, then remove the succ instead.
The succ has no left child and the pred has no right child.

	  |                    |
	  X                    S
	 / \                  / \
	L  ..   copy(X, S)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                X  ..

r2: Current node X has exactly one child, splice the child into X's
position. The child must be a red node (See conclusion), repaint it
into black. Otherwise, rebalance from it.

r3: Current node X is the root without children, the tree becomes empty.

r4: Current node X is a leaf. If it is black, rebalance by taking X as a
phantom node first (black-violation), then unlink it.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	y := z
	if /* r1 */ y.left != nil && y.right != nil {
		if tree.isRmBorrowPred {
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		z.key, z.val = y.key, y.val
	}

	var replace *rbNode[K, V]
	if y.left != nil {
		replace = y.left
	} else {
		replace = y.right
	}

	if /* r2 */ replace != nil {
		switch dir := y.Direction(); dir {
		case Root:
			tree.root = replace
		case Left:
			y.parent.left = replace
		case Right:
			y.parent.right = replace
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (r2)")
		}
		replace.parent = y.parent
		y.parent, y.left, y.right = nil, nil, nil

		if y.isBlack() {
			if replace.isRed() {
				replace.color = Black
			} else {
				tree.removeRebalance(replace)
			}
		}
	} else if /* r3 */ y.isRoot() {
		tree.root = nil
	} else /* r4 */ {
		if y.isBlack() {
			tree.removeRebalance(y)
		}
		// Unlink node
		if y.parent != nil {
			if y == y.parent.left {
				y.parent.left = nil
			} else if y == y.parent.right {
				y.parent.right = nil
			}
			y.parent = nil
		}
	}

	atomic.AddInt64(&tree.count, -1)
	tree.stats.RecordNodeCount(-1)
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries a double black deficit. The loop runs while X is not the root
and X is black.
Sc (near) is the same direction to X and it X's sibling's child node.
Sd (far) is the opposite direction to X and it X's sibling's child node.

sibling-red: Current node X's sibling S is red, so the parent P, nephew
node Sc and Sd must be black. (Otherwise, red-violation)
Repaint S into black, P into red, rotate P to X's direction.
Re-evaluate with the new sibling (black).

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

nephews-black: Current node X's sibling S, nephew node Sc and Sd are
black. Repaint S into red to satisfy p5 locally, then continue to handle
P. (A red P stops the loop and is painted black at last.)

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

near-nephew-red: Current node X's sibling S is black, nephew node Sc is
red and Sd is black. Repaint Sc into black and S into red, rotate S away
from X's direction. Enter far-nephew-red to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

far-nephew-red: Current node X's sibling S is black, nephew node Sd is
red. S takes P's color, P and Sd are painted black, rotate P to X's
direction. The deficit is absorbed, stop.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]

At last, X is painted black unconditionally.
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for !x.isRoot() && x.isBlack() {
		p, sibling := x.parent, x.sibling()
		dir := x.Direction()
		if /* sibling-red */ sibling.isRed() {
			tree.traceRemove(removeSiblingRed, x)
			sibling.color = Black
			p.color = Red
			switch dir {
			case Left:
				tree.leftRotate(p)
			case Right:
				tree.rightRotate(p)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (sibling-red)")
			}
			sibling = x.sibling()
		}

		if sibling == nil {
			// The black-height on the sibling side is zero, nothing to
			// borrow from. Push the deficit up.
			x = p
			continue
		}

		var sc, sd *rbNode[K, V]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (nephews)")
		}

		if /* nephews-black */ sc.isBlack() && sd.isBlack() {
			tree.traceRemove(removeNephewsBlack, x)
			sibling.color = Red
			x = p
			continue
		}

		if /* near-nephew-red */ sd.isBlack() {
			tree.traceRemove(removeNearNephewRed, x)
			sc.color = Black
			sibling.color = Red
			switch dir {
			case Left:
				tree.rightRotate(sibling)
			case Right:
				tree.leftRotate(sibling)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove violate (near-nephew-red)")
			}
			sibling = x.sibling()
			if dir == Left {
				sd = sibling.right
			} else {
				sd = sibling.left
			}
		}

		/* far-nephew-red */
		tree.traceRemove(removeFarNephewRed, x)
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		switch dir {
		case Left:
			tree.leftRotate(p)
		case Right:
			tree.rightRotate(p)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove violate (far-nephew-red)")
		}
		x = tree.root
	}
	x.color = Black
}

func (tree *rbTree[K, V]) Min() (key K, val V, ok bool) {
	if x := tree.root.minimum(); x != nil {
		return x.key, x.val, true
	}
	return key, val, false
}

func (tree *rbTree[K, V]) Max() (key K, val V, ok bool) {
	if x := tree.root.maximum(); x != nil {
		return x.key, x.val, true
	}
	return key, val, false
}

func (tree *rbTree[K, V]) Search(x RBNode[K, V], fn func(RBNode[K, V]) int64) RBNode[K, V] {
	if x == nil {
		return nil
	}

	for aux := x; aux != nil; {
		res := fn(aux)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.Right()
		} else {
			aux = aux.Left()
		}
	}
	return nil
}

func (tree *rbTree[K, V]) InOrder() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for aux := tree.root.minimum(); aux != nil; aux = aux.succ() {
			if !yield(aux.key, aux.val) {
				return
			}
		}
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Release severs every node link, so nothing retains the removed nodes.
func (tree *rbTree[K, V]) Release() {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	tree.root = nil
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		r := aux.right
		aux.left, aux.right, aux.parent = nil, nil, nil
		atomic.AddInt64(&tree.count, -1)
		tree.stats.RecordNodeCount(-1)
		stack = stack[:size-1]
		for aux = r; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K, V]) String() string {
	builder := strings.Builder{}
	for aux := tree.root.minimum(); aux != nil; aux = aux.succ() {
		if builder.Len() > 0 {
			_, _ = builder.WriteString(" ")
		}
		_, _ = builder.WriteString(aux.String())
	}
	return builder.String()
}
