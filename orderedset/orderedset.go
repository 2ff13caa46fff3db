// Package orderedset defines the contract shared by every concurrent
// ordered-set implementation in this module: a totally ordered key type
// and the three-operation interface (Contains, Insert, Remove) that
// cglset, cglbst, fglbst, natarajan, and singh all satisfy.
package orderedset

import "cmp"

// Ordered is the key constraint used by every container in this
// module. It is a thin re-export of cmp.Ordered so call sites read in
// terms of this package rather than reaching into cmp directly.
type Ordered = cmp.Ordered

// Set is the uniform contract exposed by every container: a caller
// submits a key and the container reports whether the set contained it
// (Contains), whether insertion changed the set (Insert), or whether
// removal changed the set (Remove).
type Set[K Ordered] interface {
	Contains(key K) bool
	Insert(key K) bool
	Remove(key K) bool
}
