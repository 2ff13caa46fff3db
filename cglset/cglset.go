// Package cglset implements the coarsest baseline in this comparative
// study: a sorted slice of keys protected by a single readers-writer
// lock. Contains takes the lock for reading; Insert and Remove take it
// for writing. There is nothing clever here by design — it exists so
// the lock-free and fine-grained cores have something trivially
// linearizable to be measured against.
package cglset

import (
	"sort"
	"sync"

	"github.com/NekrozQliphort/concurrentset/orderedset"
)

// Set is a sorted-slice ordered set behind one sync.RWMutex.
type Set[K orderedset.Ordered] struct {
	mu   sync.RWMutex
	keys []K
}

// New returns an empty Set.
func New[K orderedset.Ordered]() *Set[K] {
	return &Set[K]{}
}

// Contains reports whether key is currently in the set.
func (s *Set[K]) Contains(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.search(key)
	return i < len(s.keys) && s.keys[i] == key
}

// Insert adds key to the set, returning false if it was already
// present.
func (s *Set[K]) Insert(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.search(key)
	if i < len(s.keys) && s.keys[i] == key {
		return false
	}
	s.keys = append(s.keys, key)
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = key
	return true
}

// Remove deletes key from the set, returning false if it was absent.
func (s *Set[K]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.search(key)
	if i >= len(s.keys) || s.keys[i] != key {
		return false
	}
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	return true
}

// search returns the insertion point for key within s.keys. Callers
// must hold mu.
func (s *Set[K]) search(key K) int {
	return sort.Search(len(s.keys), func(i int) bool {
		return !(s.keys[i] < key)
	})
}
