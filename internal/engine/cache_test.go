package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrCompile(t *testing.T) {
	c := NewCache()
	calls := 0
	compile := func() (*Compiled, error) {
		calls++
		return &Compiled{Name: "components/card.html"}, nil
	}

	first, err := c.GetOrCompile("components/card.html", compile)
	require.NoError(t, err)
	second, err := c.GetOrCompile("components/card.html", compile)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCache_CompileErrorNotCached(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")

	_, err := c.GetOrCompile("k", func() (*Compiled, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	// The next attempt compiles again and can succeed.
	e, err := c.GetOrCompile("k", func() (*Compiled, error) { return &Compiled{Name: "k"}, nil })
	require.NoError(t, err)
	assert.Equal(t, "k", e.Name)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache()
	_, err := c.GetOrCompile("a", func() (*Compiled, error) { return &Compiled{Name: "a"}, nil })
	require.NoError(t, err)
	_, err = c.GetOrCompile("b", func() (*Compiled, error) { return &Compiled{Name: "b"}, nil })
	require.NoError(t, err)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentPopulation(t *testing.T) {
	c := NewCache()
	var compiles atomic.Int32

	const workers = 16
	results := make([]*Compiled, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := c.GetOrCompile("k", func() (*Compiled, error) {
				compiles.Add(1)
				return &Compiled{Name: "k"}, nil
			})
			assert.NoError(t, err)
			results[i] = e
		}(i)
	}
	wg.Wait()

	// Racing misses may compile more than once, but every caller must end up
	// holding the same stored entry.
	assert.GreaterOrEqual(t, compiles.Load(), int32(1))
	assert.Equal(t, 1, c.Len())
	stored, ok := c.Get("k")
	require.True(t, ok)
	for i, e := range results {
		assert.Same(t, stored, e, "worker %d", i)
	}
}
