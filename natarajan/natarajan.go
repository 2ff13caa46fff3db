// Package natarajan implements the lock-free external-leaf BST in the
// style of Natarajan and Mittal: all user keys live at leaves, internal
// nodes are routing-only, and deletion is performed in two cooperative
// phases (flag then cleanup) so that any thread observing an
// in-progress deletion can help finish it instead of blocking.
//
// The tree is seeded with three reserved keys inf0 < inf1 < inf2,
// supplied by the caller, arranged as a fixed left-spine scaffold
// (root -> S(inf1) -> {inf0, inf1}, root's right child inf2) so every
// real operation always has at least two levels of ancestors above any
// leaf it touches. Ported from
// original_source/src/NatarajanBST/{Node.h,SeekRecord.h,NatarajanBST.h}.
package natarajan

import (
	"github.com/NekrozQliphort/concurrentset/csetlog"
	"github.com/NekrozQliphort/concurrentset/orderedset"
)

// Tree is a lock-free ordered set of K, implemented as an external
// (leaf-keyed) binary search tree.
type Tree[K orderedset.Ordered] struct {
	root *node[K]
}

// New returns an empty Tree seeded with the three reserved sentinel
// keys. New panics unless inf0 < inf1 < inf2; callers must never
// insert or remove a key greater than or equal to inf0.
func New[K orderedset.Ordered](inf0, inf1, inf2 K) *Tree[K] {
	if !(inf0 < inf1 && inf1 < inf2) {
		panic("natarajan: sentinels must satisfy inf0 < inf1 < inf2")
	}

	s := newLeaf(inf1)
	s.left.Store(newEdge(newLeaf(inf0), false, false))
	s.right.Store(newEdge(newLeaf(inf1), false, false))

	root := newLeaf(inf2)
	root.left.Store(newEdge(s, false, false))
	root.right.Store(newEdge(newLeaf(inf2), false, false))

	return &Tree[K]{root: root}
}

// Contains reports whether key is currently in the tree.
func (t *Tree[K]) Contains(key K) bool {
	s := t.seek(key)
	return s.leaf.key == key
}

// Insert adds key to the tree, returning false if it was already
// present. A found leaf is spliced into a new 2-node subtree: a fresh
// internal routing node whose key is the larger of the new and old
// leaf keys, with the two leaves as its children in key order.
func (t *Tree[K]) Insert(key K) bool {
	newLeafNode := newLeaf(key)

	for {
		s := t.seek(key)
		if s.leaf.key == key {
			return false
		}

		parent, leaf := s.parent, s.leaf
		childAddr := childSlot(parent, key)

		oldEdge := childAddr.Load()
		if oldEdge.node != leaf || oldEdge.flag || oldEdge.tag {
			if oldEdge.node == leaf {
				t.cleanup(key, s)
			}
			continue
		}
		l, r := newLeafNode, oldEdge.node
		if l.key > r.key {
			l, r = r, l
		}

		newInternal := &node[K]{key: r.key}
		newInternal.left.Store(newEdge(l, false, false))
		newInternal.right.Store(newEdge(r, false, false))

		if childAddr.CompareAndSwap(oldEdge, newEdge(newInternal, false, false)) {
			return true
		}

		if cur := childAddr.Load(); cur.node == leaf && (cur.flag || cur.tag) {
			t.cleanup(key, s)
		}
	}
}

// Remove deletes key from the tree, returning false if it was absent.
// Deletion proceeds in two phases: injection flags the parent-side
// edge pointing at the target leaf, then cleanup splices the flagged
// leaf's sibling up in its place. Any thread that observes a flagged
// edge helps finish the cleanup before retrying its own operation.
func (t *Tree[K]) Remove(key K) bool {
	const (
		modeInjection = iota
		modeCleanup
	)

	mode := modeInjection
	var leaf *node[K]

	for {
		s := t.seek(key)
		childAddr := childSlot(s.parent, key)

		if mode == modeInjection {
			leaf = s.leaf
			if leaf.key != key {
				return false
			}

			cur := childAddr.Load()
			if cur.node == leaf && !cur.flag && !cur.tag {
				if childAddr.CompareAndSwap(cur, newEdge(leaf, true, false)) {
					mode = modeCleanup
					if t.cleanup(key, s) {
						return true
					}
					continue
				}
				cur = childAddr.Load()
			}
			if cur.node == leaf && (cur.flag || cur.tag) {
				t.cleanup(key, s)
			}
		} else {
			if s.leaf != leaf || t.cleanup(key, s) {
				return true
			}
		}
	}
}

// cleanup splices the flagged sub-chain recorded in s out of the
// tree: it tags the sibling of the flagged leaf's edge (pressing it
// into service as the replacement), then attempts to CAS successor's
// slot on ancestor from successor to an edge pointing at the sibling
// with the sibling's flag kept and the tag cleared. Returns whether
// this helper's CAS was the one that completed the splice.
func (t *Tree[K]) cleanup(key K, s seekRecord[K]) bool {
	ancestor, successor, parent := s.ancestor, s.successor, s.parent

	successorAddr := childSlot(ancestor, key)
	childAddr := &parent.right
	siblingAddr := &parent.left
	if key < parent.key {
		childAddr, siblingAddr = siblingAddr, childAddr
	}

	if !childAddr.Load().flag {
		siblingAddr = childAddr
	}

	var siblingData *edge[K]
	for {
		old := siblingAddr.Load()
		if old.tag {
			siblingData = old
			break
		}
		tagged := newEdge(old.node, old.flag, true)
		if siblingAddr.CompareAndSwap(old, tagged) {
			siblingData = tagged
			break
		}
	}

	expected := successorAddr.Load()
	if expected.node != successor || expected.flag || expected.tag {
		return false
	}
	ok := successorAddr.CompareAndSwap(expected, newEdge(siblingData.node, siblingData.flag, false))
	if ok && csetlog.DebugEnabled() {
		csetlog.Default().Debugw("natarajan: cleanup spliced out subtree", "key", key)
	}
	return ok
}
