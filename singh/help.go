package singh

import "sync/atomic"

// casOpSlot swaps addr from old to new, by envelope identity: old must
// be the exact *opSlot[K] a caller most recently Load()ed, never a
// freshly-built lookalike, since CompareAndSwap compares pointers.
func casOpSlot[K ordered](addr *atomic.Pointer[opSlot[K]], old, desired *opSlot[K]) bool {
	return addr.CompareAndSwap(old, desired)
}

// helpInsert completes (or helps a competing thread complete) an
// insertion: an update resurrects a marked node by clearing deleted,
// otherwise the new leaf is spliced into the recorded child slot.
// Either way the op-slot is then cleared back to NONE.
func (t *Tree[K]) helpInsert(op *insertOp[K], dest *node[K]) {
	if op.isUpdate {
		dest.deleted.CompareAndSwap(true, false)
	} else {
		child := &dest.right
		if op.isLeft {
			child = &dest.left
		}
		child.CompareAndSwap(op.expectedNode, op.newNode)
	}

	cur := dest.op.Load()
	if cur.kind == opInsert && cur.op == op {
		casOpSlot[K](&dest.op, cur, flagOp[K](nil, opNone))
	}
}

// helpMarked physically unlinks a logically-deleted leaf nd out of
// parent by replacing parent with an insertOp splicing in nd's
// surviving child. The original falls back to node->right when the
// left child is nil but never stores the result of that load; that is
// fixed here.
func (t *Tree[K]) helpMarked(parentOp *opSlot[K], parent, nd *node[K]) {
	child := nd.left.Load()
	if child == nil {
		child = nd.right.Load()
	}

	nd.removed.Store(true)

	iop := &insertOp[K]{
		isLeft:       parent.left.Load() == nd,
		isUpdate:     false,
		expectedNode: nd,
		newNode:      child,
	}

	if casOpSlot[K](&parent.op, parentOp, flagOp[K](iop, opInsert)) {
		t.helpInsert(iop, parent)
	}
}

// help dispatches on whichever of (parent, node) carries a pending
// operation, preferring an in-progress insert at node itself, then a
// rotation at parent, then a mark at node. Either of parent/node may
// be nil, matching callers that only have one side available.
func (t *Tree[K]) help(parent *node[K], parentOp *opSlot[K], nd *node[K], nodeOp *opSlot[K]) {
	switch {
	case nodeOp != nil && nodeOp.kind == opInsert:
		t.helpInsert(nodeOp.op.(*insertOp[K]), nd)
	case parentOp != nil && parentOp.kind == opRotate:
		t.helpRotate(parentOp.op.(*rotateOp[K]))
	case nodeOp != nil && nodeOp.kind == opMark:
		t.helpMarked(parentOp, parent, nd)
	}
}
