package catalog

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrCompute(t *testing.T) {
	c := NewCache()
	calls := 0

	v, err := c.GetOrCompute(ISBNKey("123"), time.Minute, func() (any, error) {
		calls++
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.GetOrCompute(ISBNKey("123"), time.Minute, func() (any, error) {
		calls++
		return "other", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v, "second call served from cache")
	assert.Equal(t, 1, calls)
}

func TestCache_KeyIndependence(t *testing.T) {
	c := NewCache()

	v1, err := c.GetOrCompute(SearchKey("ab", 1, 10), time.Minute, func() (any, error) {
		return "ab-1-10", nil
	})
	require.NoError(t, err)

	// Naive concatenation would collide: "ab"+1+10 == "a"+11+10 == "ab110".
	v2, err := c.GetOrCompute(SearchKey("a", 11, 10), time.Minute, func() (any, error) {
		return "a-11-10", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "ab-1-10", v1)
	assert.Equal(t, "a-11-10", v2)
	assert.Equal(t, 2, c.Len())
}

func TestCache_KindIndependence(t *testing.T) {
	c := NewCache()

	_, err := c.GetOrCompute(ISBNKey("x"), time.Minute, func() (any, error) { return 1, nil })
	require.NoError(t, err)
	v, err := c.GetOrCompute(DetailKey("x"), time.Minute, func() (any, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache()
	calls := 0
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	_, err := c.GetOrCompute(ISBNKey("123"), 10*time.Millisecond, compute)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	v, err := c.GetOrCompute(ISBNKey("123"), time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "expired entry recomputed")
}

func TestCache_ErrorNotCached(t *testing.T) {
	c := NewCache()
	calls := 0

	_, err := c.GetOrCompute(ISBNKey("123"), time.Minute, func() (any, error) {
		calls++
		return nil, errors.New("upstream down")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute(ISBNKey("123"), time.Minute, func() (any, error) {
		calls++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 2, calls)
}

func TestCache_SingleFlight(t *testing.T) {
	c := NewCache()
	var computes atomic.Int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrCompute(SearchKey("dune", 1, 10), time.Minute, func() (any, error) {
				computes.Add(1)
				time.Sleep(10 * time.Millisecond)
				return "result", nil
			})
			assert.NoError(t, err)
			assert.Equal(t, "result", v)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load(), "concurrent callers share one compute")
}
