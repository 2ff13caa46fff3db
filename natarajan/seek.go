package natarajan

import "github.com/NekrozQliphort/concurrentset/orderedset"

// seekRecord captures the four ancestors a traversal needs to perform
// either a splice-in (insertion) or an unlink (deletion): leaf is
// where the traversal ends, parent is its immediate parent, successor
// is the deepest node below which parent's subtree was entered via an
// untagged edge, and ancestor is successor's parent.
type seekRecord[K orderedset.Ordered] struct {
	ancestor, successor, parent, leaf *node[K]
}

// seek walks from the fixed three-sentinel scaffold toward key,
// continuously re-pinning (ancestor, successor) to the deepest point
// not yet poisoned by another thread's in-flight deletion: whenever
// the incoming edge on the current parent is untagged, (parent, leaf)
// is promoted into (ancestor, successor). Ties route right.
func (t *Tree[K]) seek(key K) seekRecord[K] {
	var s seekRecord[K]

	s.ancestor = t.root
	s.successor = t.root.left.Load().node
	s.parent = s.successor
	s.leaf = s.successor.left.Load().node

	parentField := s.parent.left.Load()
	currentField := s.leaf.left.Load()

	for current := currentField.node; current != nil; current = currentField.node {
		if !parentField.tag {
			s.ancestor = s.parent
			s.successor = s.leaf
		}
		s.parent = s.leaf
		s.leaf = current
		parentField = currentField

		if key < current.key {
			currentField = current.left.Load()
		} else {
			currentField = current.right.Load()
		}
	}

	return s
}
