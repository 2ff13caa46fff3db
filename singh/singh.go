package singh

import (
	"sync"
	"sync/atomic"

	"github.com/NekrozQliphort/concurrentset/csetlog"
)

// Tree is a lock-free-on-the-mutator-path ordered set of K: inserts
// and removes never block on each other, while a single background
// goroutine performs AVL rebalancing cooperatively, helped along by
// any mutator that happens to observe a rotation in progress.
type Tree[K ordered] struct {
	root *node[K]

	finished atomic.Bool
	wg       sync.WaitGroup
}

// New returns an empty Tree seeded with one reserved sentinel key,
// inf; callers must never insert or remove inf itself. The returned
// Tree owns a background maintainer goroutine that runs until Close.
func New[K ordered](inf K) *Tree[K] {
	t := &Tree[K]{root: makeNode[K](inf, nil, nil)}

	t.wg.Add(1)
	go t.maintain()

	csetlog.Default().Debugw("singh: tree started", "sentinel", inf)
	return t
}

// Close stops the background maintainer goroutine and waits for it to
// exit. Close is idempotent and never returns a non-nil error; the
// return value exists so Tree satisfies io.Closer.
func (t *Tree[K]) Close() error {
	t.finished.Store(true)
	t.wg.Wait()
	csetlog.Default().Debugw("singh: tree stopped")
	return nil
}

// Contains reports whether key is currently in the tree. Contains does
// not help in-progress operations; it only has to agree with the
// state a concurrent mutator is linearized at, which an unhelped
// traversal still does (DESIGN.md's resolution of the deleted/
// INSERT race: a node found both deleted and mid-update-insert for the
// same key is reported present iff that update's new node carries
// key).
func (t *Tree[K]) Contains(key K) bool {
	nd := t.root.left.Load()
	for nd != nil {
		switch {
		case key < nd.key:
			nd = nd.left.Load()
		case key > nd.key:
			nd = nd.right.Load()
		default:
			if !nd.deleted.Load() {
				return true
			}
			op := nd.op.Load()
			if op.kind == opInsert {
				iop := op.op.(*insertOp[K])
				if iop.isUpdate && iop.newNode.key == key {
					return true
				}
			}
			return false
		}
	}
	return false
}

// Insert adds key to the tree, returning false if it was already
// present (and not marked deleted). A node found marked deleted is
// resurrected in place via an update insertOp rather than splicing in
// a second node for the same key.
func (t *Tree[K]) Insert(key K) bool {
	var newLeaf *node[K]

	for {
		s := t.seek(key)

		if s.result == seekFound {
			if !s.node.deleted.Load() {
				return false
			}

			iop := &insertOp[K]{isUpdate: true, newNode: s.node}
			if casOpSlot[K](&s.node.op, s.nodeOp, flagOp[K](iop, opInsert)) {
				t.helpInsert(iop, s.node)
				return true
			}
			continue
		}

		if newLeaf == nil {
			newLeaf = makeNode[K](key, nil, nil)
		}

		isLeft := s.result == seekNotFoundLeft
		var old *node[K]
		if isLeft {
			old = s.node.left.Load()
		} else {
			old = s.node.right.Load()
		}

		iop := &insertOp[K]{isLeft: isLeft, expectedNode: old, newNode: newLeaf}
		if casOpSlot[K](&s.node.op, s.nodeOp, flagOp[K](iop, opInsert)) {
			t.helpInsert(iop, s.node)
			return true
		}
	}
}

// Remove marks key's node as logically deleted, returning false if the
// key was absent. Physical removal from the tree happens later,
// opportunistically, when a subsequent seek passes over the node while
// it has at most one child; a rotation copies the deleted bit into the
// node's replacement rather than removing it.
func (t *Tree[K]) Remove(key K) bool {
	for {
		s := t.seek(key)
		if s.result != seekFound {
			return false
		}

		if s.node.deleted.Load() {
			if s.nodeOp.kind != opInsert {
				return false
			}
			continue
		}

		if s.nodeOp.kind != opNone {
			continue
		}

		if s.node.deleted.CompareAndSwap(false, true) {
			return true
		}
	}
}
