// Package singh implements the concurrent internally-balanced BST in
// the style of Singh: every node carries a user key directly, pending
// structural changes are described by CAS'd operation descriptors that
// any thread can help complete, and a single background maintainer
// goroutine performs AVL-style rotations cooperatively with mutators.
//
// The tree is seeded with one reserved sentinel key, inf, supplied by
// the caller; all real keys live in its left subtree. Ported from
// original_source/src/SinghBBST/{Node.h,Operation.h,SeekRecord.h,SinghBBST.h}.
package singh

import (
	"sync/atomic"

	"github.com/NekrozQliphort/concurrentset/orderedset"
)

// ordered is a package-local shorthand for the key constraint shared
// by every exported and unexported generic type in this package.
type ordered = orderedset.Ordered

// node is an internal BST node: every node holds a real (or sentinel)
// key, not just leaves.
type node[K ordered] struct {
	key         K
	left, right atomic.Pointer[node[K]]
	op          atomic.Pointer[opSlot[K]]
	deleted     atomic.Bool
	removed     atomic.Bool

	// lh, rh, and localHeight are owned exclusively by the maintainer
	// goroutine: it is the only writer, and the only reader other than
	// itself is the maintainer's own recursive descent into children it
	// already owns. Mutators never consult them, matching the spec's
	// "advisory, never consulted for correctness" note.
	lh, rh, localHeight int
}

// makeNode allocates a node with no pending operation and the given
// children.
func makeNode[K ordered](key K, left, right *node[K]) *node[K] {
	n := &node[K]{key: key}
	n.left.Store(left)
	n.right.Store(right)
	n.op.Store(&opSlot[K]{kind: opNone})
	return n
}
