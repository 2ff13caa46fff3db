package singh

// balanceState names which rotation (if any) restores nd's AVL
// balance, as seen by the maintainer goroutine. The forced variants
// are what rightRotate/leftRotate return instead of rotating in the
// LR/RL case: they name the rotation that must first be applied at
// the pivot, the first half of the double rotation.
type balanceState int

const (
	noRotation balanceState = iota
	needsRightRotation // left-heavy: promote nd.left via rightRotate
	needsLeftRotation  // right-heavy: promote nd.right via leftRotate
	forceRightRotation
	forceLeftRotation
)

// checkBalance compares nd's recorded child heights against the usual
// AVL threshold of 2, or 1 when forced (the second half of a double
// rotation is allowed to fire on a one-level imbalance).
func checkBalance[K ordered](nd *node[K], forced bool) balanceState {
	threshold := 2
	if forced {
		threshold = 1
	}

	switch {
	case nd.lh-nd.rh >= threshold:
		return needsRightRotation
	case nd.rh-nd.lh >= threshold:
		return needsLeftRotation
	default:
		return noRotation
	}
}

// rightRotate attempts to publish a rotateOp promoting subtreeRoot's
// left-heavy left child, pivot, up into subtreeRoot's place:
// pivot.right becomes subtreeRoot's new left child, and subtreeRoot
// becomes pivot's new right child. grandparent is the node whose own
// child pointer (on the side named by isLeftChild) currently targets
// subtreeRoot and must be retargeted at pivot. If pivot is itself
// right-heavy this is really the first half of an LR double rotation,
// signaled by returning forceLeftRotation instead of publishing
// anything.
func (t *Tree[K]) rightRotate(grandparent, subtreeRoot *node[K], isLeftChild, forced bool) balanceState {
	if subtreeRoot.removed.Load() {
		return noRotation
	}

	pivot := subtreeRoot.left.Load()
	if pivot == nil {
		return noRotation
	}

	if !forced && pivot.rh-pivot.lh >= 1 {
		return forceLeftRotation
	}

	rop := &rotateOp[K]{
		grandparent:    grandparent,
		subtreeRoot:    subtreeRoot,
		pivot:          pivot,
		isLeftRotation: false,
		isLeftChild:    isLeftChild,
	}
	rop.grandchild.Store(sentinelGrandchild[K]())

	subtreeOp := subtreeRoot.op.Load()
	if subtreeOp.kind != opNone {
		return noRotation
	}
	if casOpSlot[K](&subtreeRoot.op, subtreeOp, flagOp[K](rop, opRotate)) {
		t.helpRotate(rop)
	}
	return noRotation
}

// leftRotate is rightRotate's mirror image: it promotes subtreeRoot's
// right-heavy right child, pivot, up into subtreeRoot's place, with
// pivot.left taking subtreeRoot's old right-child slot.
func (t *Tree[K]) leftRotate(grandparent, subtreeRoot *node[K], isLeftChild, forced bool) balanceState {
	if subtreeRoot.removed.Load() {
		return noRotation
	}

	pivot := subtreeRoot.right.Load()
	if pivot == nil {
		return noRotation
	}

	if !forced && pivot.lh-pivot.rh >= 1 {
		return forceRightRotation
	}

	rop := &rotateOp[K]{
		grandparent:    grandparent,
		subtreeRoot:    subtreeRoot,
		pivot:          pivot,
		isLeftRotation: true,
		isLeftChild:    isLeftChild,
	}
	rop.grandchild.Store(sentinelGrandchild[K]())

	subtreeOp := subtreeRoot.op.Load()
	if subtreeOp.kind != opNone {
		return noRotation
	}
	if casOpSlot[K](&subtreeRoot.op, subtreeOp, flagOp[K](rop, opRotate)) {
		t.helpRotate(rop)
	}
	return noRotation
}

// sentinelGrandchild is a unique, never-otherwise-reachable node used
// only as rotateOp.grandchild's initial CAS target, so the first
// helper to observe it can tell "nobody has grabbed the swinging
// subtree yet" apart from "it really is nil".
func sentinelGrandchild[K ordered]() *node[K] {
	return &node[K]{}
}

// helpRotate advances a published rotateOp through its four states
// regardless of which goroutine calls it; every state transition is a
// CAS, so two goroutines racing to help the same rotation converge on
// one winner per step without blocking each other.
//
// op.pivot is the node swinging up into op.subtreeRoot's place
// (subtreeRoot.left for a right rotation, subtreeRoot.right for a
// left rotation). The subtree hanging off pivot's inner side
// (pivot.right for a right rotation, pivot.left for a left rotation)
// swings over to become the child of a fresh copy of subtreeRoot on
// the side pivot used to occupy, and that copy takes the inner-side
// slot of pivot that the swinging subtree vacated.
//
// GRABBED_FIRST gates pivot's own op-slot to ROTATE before anything
// touches pivot.left/pivot.right: without that gate, a concurrent
// Insert whose seek lands on pivot would see pivot.op still NONE, win
// its own op-slot CAS, and race its pointer CAS directly against this
// rotation's splice of pivot.left/pivot.right, which could silently
// drop whichever subtree lost that race.
func (t *Tree[K]) helpRotate(op *rotateOp[K]) {
	subtreeRoot, pivot := op.subtreeRoot, op.pivot

	for {
		switch op.loadState() {
		case rotateUndecided:
			op.casState(rotateUndecided, rotateGrabbedFirst)

		case rotateGrabbedFirst:
			cur := pivot.op.Load()
			if cur.kind == opNone {
				if !casOpSlot[K](&pivot.op, cur, flagOp[K](op, opRotate)) {
					continue
				}
			} else if cur.kind != opRotate || cur.op != op {
				// Any other pending op on pivot: retry until it clears.
				continue
			}
			var swinging *node[K]
			if op.isLeftRotation {
				swinging = pivot.left.Load()
			} else {
				swinging = pivot.right.Load()
			}
			// Only the sentinel has a never-set op-slot; publish once from it.
			if g := op.grandchild.Load(); g != nil && g.op.Load() == nil {
				op.grandchild.CompareAndSwap(g, swinging)
			}
			op.casState(rotateGrabbedFirst, rotateGrabbedSecond)

		case rotateGrabbedSecond:
			swinging := op.grandchild.Load()
			replacement := makeNode(subtreeRoot.key, subtreeRoot.left.Load(), subtreeRoot.right.Load())
			replacement.deleted.Store(subtreeRoot.deleted.Load())
			if op.isLeftRotation {
				replacement.right.Store(swinging)
			} else {
				replacement.left.Store(swinging)
			}
			replacement.op.Store(flagOp[K](nil, opNone))

			if op.isLeftRotation {
				pivot.left.CompareAndSwap(swinging, replacement)
			} else {
				pivot.right.CompareAndSwap(swinging, replacement)
			}
			op.casState(rotateGrabbedSecond, rotateRotated)

		case rotateRotated:
			subtreeRoot.removed.Store(true)
			if op.grandparent != nil {
				if op.isLeftChild {
					op.grandparent.left.CompareAndSwap(subtreeRoot, pivot)
				} else {
					op.grandparent.right.CompareAndSwap(subtreeRoot, pivot)
				}
			}

			cur := pivot.op.Load()
			if cur.kind == opRotate && cur.op == op {
				casOpSlot[K](&pivot.op, cur, flagOp[K](nil, opNone))
			}
			op.casState(rotateRotated, rotateDone)

		case rotateDone:
			return
		}
	}
}

// maintainHelper recomputes nd's subtree heights bottom-up and, when
// they drift out of AVL balance, publishes a rotation: forced is true
// only for the second half of an LR/RL double rotation, where a
// one-level imbalance must still be corrected to finish straightening
// the subtree.
func (t *Tree[K]) maintainHelper(nd, parent *node[K], isLeftChild, forced bool) int {
	if nd == nil {
		return 0
	}

	left := nd.left.Load()
	right := nd.right.Load()

	nd.lh = t.maintainHelper(left, nd, true, false)
	nd.rh = t.maintainHelper(right, nd, false, false)
	nd.localHeight = max(nd.lh, nd.rh) + 1

	switch checkBalance[K](nd, forced) {
	case needsRightRotation:
		// A plain right rotation fixes a left-heavy nd, unless nd's own
		// left child is itself right-heavy (the LR case), in which case
		// rightRotate refuses and reports forceLeftRotation: straighten
		// the child with a left rotation first, then retry at nd.
		if t.rightRotate(parent, nd, isLeftChild, forced) == forceLeftRotation {
			if pivot := nd.left.Load(); pivot != nil {
				t.leftRotate(nd, pivot, true, true)
			}
			t.rightRotate(parent, nd, isLeftChild, true)
		}
		nd.localHeight--
	case needsLeftRotation:
		if t.leftRotate(parent, nd, isLeftChild, forced) == forceRightRotation {
			if pivot := nd.right.Load(); pivot != nil {
				t.rightRotate(nd, pivot, false, true)
			}
			t.leftRotate(parent, nd, isLeftChild, true)
		}
		nd.localHeight--
	}

	return nd.localHeight
}

// maintain is the background goroutine's body: it repeatedly walks
// the tree from root recomputing heights and firing rotations until
// Close tells it to stop.
func (t *Tree[K]) maintain() {
	defer t.wg.Done()
	for !t.finished.Load() {
		t.maintainHelper(t.root.left.Load(), t.root, true, false)
	}
}
