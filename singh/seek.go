package singh

// seekResult is one of three outcomes of a seek: the key was found
// exactly, or the traversal ran off the left or right edge of the
// last node visited (recorded so insert knows which child slot to
// target).
type seekResult int

const (
	seekNotFoundLeft seekResult = iota
	seekNotFoundRight
	seekFound
)

// seekRecord captures the (parent, node) pair a seek ends on, plus
// the op-slot snapshots captured at each, so a caller that needs to
// CAS against exactly what it observed (or hand a stale snapshot to a
// helper) doesn't need to re-read them.
type seekRecord[K ordered] struct {
	result          seekResult
	parent, node    *node[K]
	parentOp, nodeOp *opSlot[K]
}

// seek walks from root toward key. A pending insert or rotation on
// root, or any pending op on the node the descent ends at, is passed
// to help and the seek restarts from the top (mirroring the original's
// goto-retry structure), until the final node carries no op. Ops
// pending on the nodes passed over in between are not helped; apart
// from the MARK claim below, the descent reads straight through them.
func (t *Tree[K]) seek(key K) seekRecord[K] {
	for {
		var res seekRecord[K]
		res.result = seekNotFoundLeft
		res.node = t.root
		res.nodeOp = res.node.op.Load()

		if res.nodeOp.kind == opInsert {
			t.helpInsert(res.nodeOp.op.(*insertOp[K]), res.node)
			continue
		} else if res.nodeOp.kind == opRotate {
			t.help(res.node, res.nodeOp, nil, nil)
			continue
		}

		nxt := res.node.left.Load()
		for nxt != nil && res.result != seekFound {
			res.parent = res.node
			res.parentOp = res.nodeOp
			res.node = nxt
			res.nodeOp = res.node.op.Load()
			nodeKey := res.node.key

			// The original source declares MARK as an op-kind that help()
			// dispatches on, but no path in it ever CASes a node's slot to
			// MARK: physical unlinking of a logically-deleted node is left
			// to whichever seek happens to pass over it. This claims that
			// job opportunistically, the same way the rest of the package
			// CASes a snapshot it just observed.
			//
			// helpMarked only knows how to splice a single surviving child
			// into the parent's slot, so it must never run against a node
			// that still has two children: that would silently drop
			// whichever child helpMarked didn't pick, along with its whole
			// subtree. A deleted two-child node stays logically absent
			// (Contains already honors the deleted bit) and physically in
			// place until rotations have reduced it to one child or none.
			if res.node.deleted.Load() && !res.node.removed.Load() && res.nodeOp.kind == opNone &&
				(res.node.left.Load() == nil || res.node.right.Load() == nil) {
				if casOpSlot[K](&res.node.op, res.nodeOp, flagOp[K](nil, opMark)) {
					t.helpMarked(res.parentOp, res.parent, res.node)
				}
			}

			switch {
			case key < nodeKey:
				res.result = seekNotFoundLeft
				nxt = res.node.left.Load()
			case key > nodeKey:
				res.result = seekNotFoundRight
				nxt = res.node.right.Load()
			default:
				res.result = seekFound
			}
		}

		if res.nodeOp.kind != opNone {
			t.help(res.parent, res.parentOp, res.node, res.nodeOp)
			continue
		}
		return res
	}
}
