package tree

import (
	"errors"

	"github.com/benz9527/xwavl/lib/infra"
)

var (
	ErrWAVLDuplicateKey     = errors.New("[wavl] key already exists")
	ErrWAVLKeyNotFound      = errors.New("[wavl] key not found")
	ErrWAVLSelectOutOfRange = errors.New("[wavl] select index out of range")
)

var _ WAVLNode[int, struct{}] = wavlNodeView[int, struct{}]{}

type wavlNodeView[K infra.OrderedKey, V any] struct {
	tree *wavlTree[K, V]
	idx  nodeIdx
}

func (view wavlNodeView[K, V]) IsReal() bool {
	return view.idx != virtualIdx
}

func (view wavlNodeView[K, V]) Key() (key K) {
	if !view.IsReal() {
		return
	}
	return view.tree.node(view.idx).key
}

func (view wavlNodeView[K, V]) Val() (val V) {
	if !view.IsReal() {
		return
	}
	return view.tree.node(view.idx).val
}

func (view wavlNodeView[K, V]) SubtreeSize() int64 {
	return view.tree.size(view.idx)
}

func (view wavlNodeView[K, V]) Rank() int {
	return view.tree.rank(view.idx)
}

func (view wavlNodeView[K, V]) Height() int {
	return view.tree.height(view.idx)
}

func (view wavlNodeView[K, V]) Left() WAVLNode[K, V] {
	if !view.IsReal() {
		return nil
	}
	return view.tree.view(view.tree.node(view.idx).left)
}

func (view wavlNodeView[K, V]) Right() WAVLNode[K, V] {
	if !view.IsReal() {
		return nil
	}
	return view.tree.view(view.tree.node(view.idx).right)
}

func (view wavlNodeView[K, V]) Parent() WAVLNode[K, V] {
	if !view.IsReal() {
		return nil
	}
	p := view.tree.node(view.idx).parent
	if p == virtualIdx {
		return nil
	}
	return view.tree.view(p)
}

// References:
// https://sidsen.azurewebsites.net/papers/rb-trees-talg.pdf
// WAVL (weak AVL) rank rules:
// r1. Every real node x has rank(parent(x)) - rank(x) in {1, 2}.
// r2. The virtual node (absent child) has rank -1.
// r3. Every leaf has rank 0, so a leaf is a 1,1 node. A 2,2 leaf may
// appear only while a deletion is being rebalanced.
// (Conclusion) Without deletions the tree is an AVL tree. Height is
// bounded by 2log2(n) and insert/delete do amortized O(1) rotations.
type wavlTree[K infra.OrderedKey, V any] struct {
	arena   *nodeArena[K, V]
	cmp     infra.OrderedKeyComparator[K]
	stats   *wavlStats
	root    nodeIdx
	minIdx  nodeIdx
	maxIdx  nodeIdx
	isDesc  bool
	statsOn string
}

func (tree *wavlTree[K, V]) node(idx nodeIdx) *wavlNode[K, V] {
	return tree.arena.at(idx)
}

func (tree *wavlTree[K, V]) view(idx nodeIdx) WAVLNode[K, V] {
	return wavlNodeView[K, V]{tree: tree, idx: idx}
}

func (tree *wavlTree[K, V]) rank(idx nodeIdx) int {
	if idx == virtualIdx {
		return virtualRank
	}
	return tree.node(idx).rank
}

func (tree *wavlTree[K, V]) height(idx nodeIdx) int {
	if idx == virtualIdx {
		return virtualHeight
	}
	return tree.node(idx).height
}

func (tree *wavlTree[K, V]) size(idx nodeIdx) int64 {
	if idx == virtualIdx {
		return virtualSize
	}
	return tree.node(idx).size
}

func (tree *wavlTree[K, V]) rankDiff(parent, child nodeIdx) int {
	return tree.rank(parent) - tree.rank(child)
}

func (tree *wavlTree[K, V]) isLeaf(idx nodeIdx) bool {
	n := tree.node(idx)
	return n.left == virtualIdx && n.right == virtualIdx
}

func (tree *wavlTree[K, V]) promote(idx nodeIdx) {
	tree.node(idx).rank++
}

func (tree *wavlTree[K, V]) demote(idx nodeIdx) {
	tree.node(idx).rank--
}

func (tree *wavlTree[K, V]) direction(idx nodeIdx) Direction {
	if idx == virtualIdx {
		// impossible run to here
		panic( /* debug assertion */ "[wavl] virtual node without direction")
	}
	p := tree.node(idx).parent
	if p == virtualIdx {
		return Root
	}
	if tree.node(p).left == idx {
		return Left
	}
	return Right
}

// sibling of the child slot x under p. x may be virtual as long as p
// is not a leaf.
func (tree *wavlTree[K, V]) sibling(p, x nodeIdx) nodeIdx {
	pn := tree.node(p)
	if pn.left == x {
		return pn.right
	}
	return pn.left
}

func (tree *wavlTree[K, V]) minimum(idx nodeIdx) nodeIdx {
	for idx != virtualIdx && tree.node(idx).left != virtualIdx {
		idx = tree.node(idx).left
	}
	return idx
}

func (tree *wavlTree[K, V]) maximum(idx nodeIdx) nodeIdx {
	for idx != virtualIdx && tree.node(idx).right != virtualIdx {
		idx = tree.node(idx).right
	}
	return idx
}

func (tree *wavlTree[K, V]) refreshMinMax() {
	tree.minIdx = tree.minimum(tree.root)
	tree.maxIdx = tree.maximum(tree.root)
}

// replaceChild puts c into the slot of old under p. A virtual p means
// old was the root.
func (tree *wavlTree[K, V]) replaceChild(p, old, c nodeIdx) {
	if p == virtualIdx {
		tree.root = c
	} else if pn := tree.node(p); pn.left == old {
		pn.left = c
	} else if pn.right == old {
		pn.right = c
	} else {
		// impossible run to here
		panic( /* debug assertion */ "[wavl] replace a child not linked to its parent")
	}
	if c != virtualIdx {
		tree.node(c).parent = p
	}
}

/*
rotateRight(X) brings the left child X above its parent Z.
Ranks, heights and sizes are left to the caller.

	    |                 |
	    Z                 X
	   / \   rotate(X)   / \
	  X   C  ========>  A   Z
	 / \                   / \
	A   B                 B   C
*/
func (tree *wavlTree[K, V]) rotateRight(x nodeIdx) {
	if tree.direction(x) != Left {
		// impossible run to here
		panic( /* debug assertion */ "[wavl] right rotate node x is not a left child")
	}

	xn := tree.node(x)
	z := xn.parent
	zn := tree.node(z)
	b := xn.right

	zn.left = b
	if b != virtualIdx {
		tree.node(b).parent = z
	}
	tree.replaceChild(zn.parent, z, x)
	xn.right = z
	zn.parent = x
	tree.stats.IncreaseRotationCount()
}

/*
rotateLeft(X) brings the right child X above its parent Z.

	  |                     |
	  Z                     X
	 / \     rotate(X)     / \
	A   X    ========>    Z   C
	   / \               / \
	  B   C             A   B
*/
func (tree *wavlTree[K, V]) rotateLeft(x nodeIdx) {
	if tree.direction(x) != Right {
		// impossible run to here
		panic( /* debug assertion */ "[wavl] left rotate node x is not a right child")
	}

	xn := tree.node(x)
	z := xn.parent
	zn := tree.node(z)
	b := xn.left

	zn.right = b
	if b != virtualIdx {
		tree.node(b).parent = z
	}
	tree.replaceChild(zn.parent, z, x)
	xn.left = z
	zn.parent = x
	tree.stats.IncreaseRotationCount()
}

func (tree *wavlTree[K, V]) rotateUp(x nodeIdx) {
	switch dir := tree.direction(x); dir {
	case Left:
		tree.rotateRight(x)
	case Right:
		tree.rotateLeft(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[wavl] rotate the root up")
	}
}

func (tree *wavlTree[K, V]) updateNodeSizeAndHeight(idx nodeIdx) {
	if idx == virtualIdx {
		return
	}
	n := tree.node(idx)
	n.height = 1 + max(tree.height(n.left), tree.height(n.right))
	n.size = 1 + tree.size(n.left) + tree.size(n.right)
}

// updateSizeAndHeightFromNode recomputes the aggregates on the path from
// idx up to the root. The subtrees hanging off the path must be correct.
func (tree *wavlTree[K, V]) updateSizeAndHeightFromNode(idx nodeIdx) {
	for ; idx != virtualIdx; idx = tree.node(idx).parent {
		tree.updateNodeSizeAndHeight(idx)
	}
}

func (tree *wavlTree[K, V]) keyCompare(k1, k2 K) int64 {
	return tree.cmp(k1, k2)
}

// treePosition returns the node holding key, or the last real node on
// the search path, which is the parent a new key would be attached to.
func (tree *wavlTree[K, V]) treePosition(start nodeIdx, key K) nodeIdx {
	if start == virtualIdx {
		// impossible run to here
		panic( /* debug assertion */ "[wavl] tree position from the virtual node")
	}

	y := start
	for x := start; x != virtualIdx; {
		y = x
		n := tree.node(x)
		res := tree.keyCompare(key, n.key)
		if /* equal */ res == 0 {
			return x
		} else /* less */ if res < 0 {
			x = n.left
		} else /* greater */ {
			x = n.right
		}
	}
	return y
}

func (tree *wavlTree[K, V]) search(key K) nodeIdx {
	if tree.root == virtualIdx {
		return virtualIdx
	}
	x := tree.treePosition(tree.root, key)
	if tree.keyCompare(key, tree.node(x).key) != 0 {
		return virtualIdx
	}
	return x
}

func (tree *wavlTree[K, V]) Empty() bool {
	return tree.root == virtualIdx
}

func (tree *wavlTree[K, V]) Len() int64 {
	return tree.size(tree.root)
}

func (tree *wavlTree[K, V]) Root() WAVLNode[K, V] {
	if tree.root == virtualIdx {
		return nil
	}
	return tree.view(tree.root)
}

func (tree *wavlTree[K, V]) Search(key K) (val V, ok bool) {
	x := tree.search(key)
	if x == virtualIdx {
		return val, false
	}
	return tree.node(x).val, true
}

func (tree *wavlTree[K, V]) Min() (val V, ok bool) {
	if tree.minIdx == virtualIdx {
		return val, false
	}
	return tree.node(tree.minIdx).val, true
}

func (tree *wavlTree[K, V]) Max() (val V, ok bool) {
	if tree.maxIdx == virtualIdx {
		return val, false
	}
	return tree.node(tree.maxIdx).val, true
}

// Select descends once by the cached subtree sizes.
func (tree *wavlTree[K, V]) Select(i int64) (val V, err error) {
	if i < 1 || i > tree.Len() {
		return val, ErrWAVLSelectOutOfRange
	}

	for x := tree.root; x != virtualIdx; {
		n := tree.node(x)
		l := tree.size(n.left)
		if i == l+1 {
			return n.val, nil
		} else if i <= l {
			x = n.left
		} else {
			i -= l + 1
			x = n.right
		}
	}
	// impossible run to here
	panic( /* debug assertion */ "[wavl] select descends to the virtual node")
}

func (tree *wavlTree[K, V]) Keys() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(idx int64, key K, val V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (tree *wavlTree[K, V]) Vals() []V {
	vals := make([]V, 0, tree.Len())
	tree.Foreach(func(idx int64, key K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

// Inorder traversal to implement the DFS.
func (tree *wavlTree[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	aux := tree.root
	if aux == virtualIdx {
		return
	}

	stack := make([]nodeIdx, 0, tree.node(aux).height+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != virtualIdx; aux = tree.node(aux).left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		n := tree.node(stack[size-1])
		if !action(idx, n.key, n.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = n.right; aux != virtualIdx; aux = tree.node(aux).left {
			stack = append(stack, aux)
		}
	}
}

func (tree *wavlTree[K, V]) Release() {
	tree.stats.RecordRelease(tree.Len())
	tree.arena.reset()
	tree.root = virtualIdx
	tree.minIdx = virtualIdx
	tree.maxIdx = virtualIdx
}

func (tree *wavlTree[K, V]) Insert(key K, val V) (int, error) {
	if tree.root == virtualIdx {
		x := tree.arena.alloc(key, val)
		tree.root = x
		tree.minIdx, tree.maxIdx = x, x
		tree.stats.RecordInsert(0)
		return 0, nil
	}

	y := tree.treePosition(tree.root, key)
	res := tree.keyCompare(key, tree.node(y).key)
	if /* equal */ res == 0 {
		return 0, ErrWAVLDuplicateKey
	}

	// alloc may move the arena, take node pointers after it.
	x := tree.arena.alloc(key, val)
	tree.node(x).parent = y
	if /* less */ res < 0 {
		tree.node(y).left = x
	} else /* greater */ {
		tree.node(y).right = x
	}
	tree.updateSizeAndHeightFromNode(y)

	steps := tree.insertRebalance(x)
	tree.refreshMinMax()
	tree.stats.RecordInsert(steps)
	return steps, nil
}

func (tree *wavlTree[K, V]) Remove(key K) (int, error) {
	z := tree.search(key)
	if z == virtualIdx {
		return 0, ErrWAVLKeyNotFound
	}

	steps := tree.removeNode(z)
	tree.refreshMinMax()
	tree.stats.RecordRemove(steps)
	return steps, nil
}

type WAVLTreeOpt[K infra.OrderedKey, V any] func(*wavlTree[K, V])

// WithWAVLTreeDesc reverses the key order. Min, Max, Select, Keys and
// Foreach then follow the descending order.
func WithWAVLTreeDesc[K infra.OrderedKey, V any]() WAVLTreeOpt[K, V] {
	return func(tree *wavlTree[K, V]) {
		tree.isDesc = true
	}
}

// WithWAVLTreeCapacity pre-allocates the node arena.
func WithWAVLTreeCapacity[K infra.OrderedKey, V any](capacity int) WAVLTreeOpt[K, V] {
	return func(tree *wavlTree[K, V]) {
		tree.arena = newNodeArena[K, V](capacity)
	}
}

// WithWAVLTreeStats records the tree operations by the global otel
// meter provider, under the meter "xwavl/tree/<name>".
func WithWAVLTreeStats[K infra.OrderedKey, V any](name string) WAVLTreeOpt[K, V] {
	return func(tree *wavlTree[K, V]) {
		if len(name) == 0 {
			name = "default"
		}
		tree.statsOn = name
	}
}

func NewWAVLTree[K infra.OrderedKey, V any](opts ...WAVLTreeOpt[K, V]) WAVLTree[K, V] {
	tree := &wavlTree[K, V]{
		root:   virtualIdx,
		minIdx: virtualIdx,
		maxIdx: virtualIdx,
	}

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}

	if tree.arena == nil {
		tree.arena = newNodeArena[K, V](0)
	}
	if tree.isDesc {
		tree.cmp = infra.DescKeyComparator[K]
	} else {
		tree.cmp = infra.AscKeyComparator[K]
	}
	if len(tree.statsOn) > 0 {
		tree.stats = newWAVLStats(tree.statsOn)
	}
	return tree
}
