package tree

import "github.com/benz9527/xwavl/lib/infra"

// nodeIdx addresses a slot of the node arena.
// Slot 0 is the virtual node standing for every absent child and the
// root's absent parent. It is never written, its rank, height and size
// are the constants below.
type nodeIdx uint32

const (
	virtualIdx    nodeIdx = 0
	virtualRank           = -1
	virtualHeight         = -1
	virtualSize           = 0
)

type wavlNode[K infra.OrderedKey, V any] struct {
	key    K
	val    V
	parent nodeIdx
	left   nodeIdx
	right  nodeIdx
	rank   int
	height int
	size   int64
}

// nodeArena stores the nodes of one tree contiguously and links them by
// index, so parent back-references do not form pointer cycles.
// Released slots are chained through left and reused first.
type nodeArena[K infra.OrderedKey, V any] struct {
	nodes []wavlNode[K, V]
	free  nodeIdx
	used  int64
}

func newNodeArena[K infra.OrderedKey, V any](capacity int) *nodeArena[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &nodeArena[K, V]{
		nodes: make([]wavlNode[K, V], 1, capacity+1),
		free:  virtualIdx,
	}
}

// alloc returns a rank 0 leaf. It may grow the backing slice, so node
// pointers taken before the call must not be used after it.
func (arena *nodeArena[K, V]) alloc(key K, val V) nodeIdx {
	var idx nodeIdx
	if arena.free != virtualIdx {
		idx = arena.free
		arena.free = arena.nodes[idx].left
	} else {
		if uint64(len(arena.nodes)) > uint64(^nodeIdx(0)) {
			panic( /* debug assertion */ "[wavl] node arena exhausted")
		}
		idx = nodeIdx(len(arena.nodes))
		arena.nodes = append(arena.nodes, wavlNode[K, V]{})
	}
	arena.nodes[idx] = wavlNode[K, V]{
		key:    key,
		val:    val,
		parent: virtualIdx,
		left:   virtualIdx,
		right:  virtualIdx,
		rank:   0,
		height: 0,
		size:   1,
	}
	arena.used++
	return idx
}

func (arena *nodeArena[K, V]) release(idx nodeIdx) {
	if idx == virtualIdx {
		panic( /* debug assertion */ "[wavl] release the virtual node")
	}
	arena.nodes[idx] = wavlNode[K, V]{left: arena.free}
	arena.free = idx
	arena.used--
}

func (arena *nodeArena[K, V]) at(idx nodeIdx) *wavlNode[K, V] {
	if idx == virtualIdx {
		panic( /* debug assertion */ "[wavl] access the virtual node slot")
	}
	return &arena.nodes[idx]
}

func (arena *nodeArena[K, V]) reset() {
	clear(arena.nodes)
	arena.nodes = arena.nodes[:1]
	arena.free = virtualIdx
	arena.used = 0
}
