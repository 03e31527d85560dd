package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwbrown002/xgboost/pkg/errors"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 1000
	seen := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, n := range seen {
		require.Equal(t, int32(1), n, "item %d", i)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestForEachRunsAllIndices(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	err := ForEach(5, func(i int) error {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestForEachReturnsError(t *testing.T) {
	boom := errors.New("fold 2 failed")
	err := ForEach(4, func(i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestForEachZeroItems(t *testing.T) {
	assert.NoError(t, ForEach(0, func(int) error { return errors.New("unreachable") }))
}
