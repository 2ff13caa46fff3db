package natarajan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const inf0, inf1, inf2 = 1 << 30, (1 << 30) + 1, (1 << 30) + 2

func newTestTree() *Tree[int] {
	return New[int](inf0, inf1, inf2)
}

func TestNewPanicsOnBadSentinels(t *testing.T) {
	assert.Panics(t, func() { New[int](2, 1, 3) })
	assert.Panics(t, func() { New[int](1, 2, 2) })
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
	assert.False(t, tr.Remove(4))
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

func TestMixedRace(t *testing.T) {
	tr := newTestTree()
	const deleteRange = 2000
	const insertRange = 2000
	const threads = 20

	for k := 0; k < deleteRange; k++ {
		tr.Insert(k)
	}

	var g errgroup.Group
	for th := 0; th < threads; th++ {
		th := th
		g.Go(func() error {
			for k := th; k < deleteRange; k += threads {
				tr.Remove(k)
			}
			for k := deleteRange + th; k < deleteRange+insertRange; k += threads {
				tr.Insert(k)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for k := 0; k < deleteRange; k++ {
		assert.False(t, tr.Contains(k))
	}
	for k := deleteRange; k < deleteRange+insertRange; k++ {
		assert.True(t, tr.Contains(k))
	}
}

// TestLinearizabilitySpotCheck is seed scenario 6: one goroutine
// inserts [0, 100) in order while another removes [0, 100) in order,
// recording whether each key was absent at remove time. The final
// state must agree with that trace for every key.
func TestLinearizabilitySpotCheck(t *testing.T) {
	const n = 100
	tr := newTestTree()
	wasAbsentAtRemoveTime := make([]bool, n)

	var g errgroup.Group
	g.Go(func() error {
		for k := 0; k < n; k++ {
			tr.Insert(k)
		}
		return nil
	})
	g.Go(func() error {
		for k := 0; k < n; k++ {
			wasAbsentAtRemoveTime[k] = !tr.Remove(k)
		}
		return nil
	})
	require.NoError(t, g.Wait())

	for k := 0; k < n; k++ {
		assert.Equal(t, wasAbsentAtRemoveTime[k], tr.Contains(k),
			"key %d: contains disagrees with recorded remove-time trace", k)
	}
}
