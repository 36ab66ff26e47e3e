package tree

import "github.com/benz9527/xwavl/lib/infra"

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (dir Direction) String() string {
	switch dir {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Direction(unknown)"
}

// WAVLNode is a read-only view of a tree slot, used for structural
// inspection only. A view is invalidated by the next Insert, Remove
// or Release of its tree.
// A real node returns a virtual view (IsReal() == false) for an absent
// child. A virtual view has rank -1, height -1, size 0 and nil children.
type WAVLNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	IsReal() bool
	SubtreeSize() int64
	Rank() int
	Height() int
	Left() WAVLNode[K, V]
	Right() WAVLNode[K, V]
	Parent() WAVLNode[K, V]
}

// WAVLTree is an ordered map with distinct keys, balanced by ranks.
// It is not safe for concurrent use.
type WAVLTree[K infra.OrderedKey, V any] interface {
	Empty() bool
	Len() int64
	Root() WAVLNode[K, V]
	Search(key K) (V, bool)
	// Insert returns the number of rebalancing steps, or ErrWAVLDuplicateKey
	// with the tree left unchanged.
	Insert(key K, val V) (int, error)
	// Remove returns the number of rebalancing steps, or ErrWAVLKeyNotFound
	// with the tree left unchanged.
	Remove(key K) (int, error)
	Min() (V, bool)
	Max() (V, bool)
	// Select returns the value of the i-th key (1-indexed) in tree order.
	Select(i int64) (V, error)
	Keys() []K
	Vals() []V
	Foreach(action func(idx int64, key K, val V) bool)
	Release()
}
