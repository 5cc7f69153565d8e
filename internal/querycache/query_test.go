package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryConcurrentCallersShareOneFetch(t *testing.T) {
	c := NewClient()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"a", "b"}, nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([][]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Go(func() {
			results[i], errs[i] = Query(context.Background(), c, "products", fetch)
		})
	}

	require.Eventually(t, func() bool {
		snap, ok := Peek[[]string](c, "products")
		return ok && snap.Fetching && snap.Waiters == n
	}, time.Second, time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, []string{"a", "b"}, results[i])
	}

	// fresh entries are served without fetching
	v, err := Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidateTriggersRefetch(t *testing.T) {
	c := NewClient()

	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	v, err := Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	c.Invalidate("products")
	snap, ok := Peek[int](c, "products")
	require.True(t, ok)
	assert.True(t, snap.Stale)
	assert.Equal(t, 1, snap.Value)

	v, err = Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	snap, _ = Peek[int](c, "products")
	assert.False(t, snap.Stale)
	assert.False(t, snap.FetchedAt.IsZero())

	// unknown keys are ignored
	c.Invalidate("other")
	_, ok = Peek[int](c, "other")
	assert.False(t, ok)
}

func TestInvalidateDuringFetchStoresStale(t *testing.T) {
	c := NewClient()

	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		n := int(calls.Add(1))
		if n == 1 {
			started <- struct{}{}
			<-release
		}
		return n, nil
	}

	done := make(chan int)
	go func() {
		v, _ := Query(context.Background(), c, "products", fetch)
		done <- v
	}()

	<-started
	c.Invalidate("products")
	close(release)

	assert.Equal(t, 1, <-done)

	snap, ok := Peek[int](c, "products")
	require.True(t, ok)
	assert.True(t, snap.Stale)

	v, err := Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestQueryAfterInvalidateDoesNotJoinOlderFetch(t *testing.T) {
	c := NewClient()

	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		n := int(calls.Add(1))
		if n == 1 {
			started <- struct{}{}
			<-release
		}
		return n, nil
	}

	first := make(chan int)
	go func() {
		v, _ := Query(context.Background(), c, "products", fetch)
		first <- v
	}()

	<-started
	c.Invalidate("products")

	v, err := Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	close(release)
	assert.Equal(t, 1, <-first)
	assert.Equal(t, int32(2), calls.Load())

	// The older result must not replace the newer one.
	snap, ok := Peek[int](c, "products")
	require.True(t, ok)
	assert.Equal(t, 2, snap.Value)
	assert.False(t, snap.Stale)
	assert.False(t, snap.Fetching)

	v, err = Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFailedFetchIsNotCached(t *testing.T) {
	c := NewClient()

	errUnavailable := errors.New("unavailable")
	var calls atomic.Int32
	fetch := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errUnavailable
		}
		return "ok", nil
	}

	_, err := Query(context.Background(), c, "products", fetch)
	require.ErrorIs(t, err, errUnavailable)

	_, ok := Peek[string](c, "products")
	assert.False(t, ok)

	v, err := Query(context.Background(), c, "products", fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPanickingFetchIsReportedAsError(t *testing.T) {
	c := NewClient()

	_, err := Query(context.Background(), c, "products", func(context.Context) (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWaiterContextCancel(t *testing.T) {
	c := NewClient()

	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		<-release
		// the fetch is detached from the caller's context
		return "done", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Query(ctx, c, "products", fetch)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		snap, _ := Peek[string](c, "products")
		return snap.Fetching
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		snap, ok := Peek[string](c, "products")
		return ok && !snap.Fetching && snap.Value == "done"
	}, time.Second, time.Millisecond)
}

func TestQueryTypeMismatch(t *testing.T) {
	c := NewClient()

	_, err := Query(context.Background(), c, "products", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = Query(context.Background(), c, "products", func(context.Context) (string, error) { return "", nil })
	assert.Error(t, err)
}
