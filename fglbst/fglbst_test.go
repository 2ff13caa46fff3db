package fglbst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const sentinel0, sentinel1 = 1 << 30, (1 << 30) + 1

func newTestTree() *Tree[int] {
	return New[int](sentinel0, sentinel1)
}

func TestSanitySweep(t *testing.T) {
	tr := newTestTree()
	for k := 0; k < 100; k++ {
		assert.False(t, tr.Contains(k))
		assert.True(t, tr.Insert(k))
		assert.True(t, tr.Contains(k))
	}
	assert.False(t, tr.Insert(0))
}

func TestStructuralDeleteTwoChildNode(t *testing.T) {
	tr := newTestTree()
	order := []int{4, 2, 1, 3, 6, 5, 7}
	for _, k := range order {
		require.True(t, tr.Insert(k))
	}
	require.True(t, tr.Remove(4))
	assert.False(t, tr.Contains(4))

	survivors := []int{6, 2, 1, 3, 7, 5}
	slices.Sort(survivors)
	for _, k := range survivors {
		assert.True(t, tr.Contains(k))
	}
}

func TestInsertInsertRace(t *testing.T) {
	tr := newTestTree()
	const threads = 10
	const perThread = 1000

	var g errgroup.Group
	for th := 0; th < threads; th++ {
		th := th
		g.Go(func() error {
			for k := th * perThread; k < (th+1)*perThread; k++ {
				tr.Insert(k)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for k := 0; k < threads*perThread; k++ {
		assert.True(t, tr.Contains(k), "missing key %d", k)
	}
}

func TestDeleteDeleteRaceStriped(t *testing.T) {
	const threads = 50
	const perThread = 400
	const total = threads * perThread
	const stripe = 64

	tr := newTestTree()
	for k := 0; k < total; k++ {
		tr.Insert(k)
	}

	var g errgroup.Group
	for th := 0; th < threads; th++ {
		th := th
		g.Go(func() error {
			for k := 0; k < perThread; k++ {
				tr.Remove(th + stripe*k)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for n := 0; n < total; n++ {
		wantDeleted := n%stripe < threads
		if wantDeleted {
			assert.False(t, tr.Contains(n), "key %d should have been deleted", n)
		} else {
			assert.True(t, tr.Contains(n), "key %d should have survived", n)
		}
	}
}
