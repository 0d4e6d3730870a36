package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AstroPull/internal/domain/models"
	"AstroPull/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLookup(t *testing.T, src *fakePrices, m *fakeMetrics) *PriceLookup {
	t.Helper()
	c := cache.NewMemoryCache(cache.WithMemoryMaxSize(16), cache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = c.Close() })
	return NewPriceLookup(src, c, time.Hour, m, nil)
}

func TestPriceLookupCachesPerDay(t *testing.T) {
	src := &fakePrices{usd: 57401.1}
	m := newFakeMetrics()
	p := newLookup(t, src, m)
	ctx := context.Background()

	q, err := p.USD(ctx, "Bitcoin", 1634040000)
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", q.ID)
	assert.Equal(t, "2021-10-12", q.Date)
	assert.Equal(t, 57401.1, q.USD)
	assert.False(t, q.Cached)

	// same UTC day, different second
	q, err = p.USD(ctx, "bitcoin", 1634040000+3600)
	require.NoError(t, err)
	assert.True(t, q.Cached)
	assert.Equal(t, 57401.1, q.USD)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 1, m.lookup("hit"))
	assert.Equal(t, 1, m.lookup("miss"))
}

func TestPriceLookupCollapsesConcurrentCalls(t *testing.T) {
	src := &fakePrices{usd: 1.5, gate: make(chan struct{})}
	p := newLookup(t, src, newFakeMetrics())

	const n = 8
	var wg sync.WaitGroup
	results := make([]float64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := p.USD(context.Background(), "ethereum", 1634040000)
			if assert.NoError(t, err) {
				results[i] = q.USD
			}
		}(i)
	}

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, 1, src.callCount())
	for _, v := range results {
		assert.Equal(t, 1.5, v)
	}
}

func TestPriceLookupDoesNotCacheFailures(t *testing.T) {
	src := &fakePrices{err: models.ErrPriceUnavailable}
	m := newFakeMetrics()
	p := newLookup(t, src, m)
	ctx := context.Background()

	_, err := p.USD(ctx, "bitcoin", 1634040000)
	assert.True(t, errors.Is(err, models.ErrPriceUnavailable))

	src.mu.Lock()
	src.err, src.usd = nil, 2
	src.mu.Unlock()
	q, err := p.USD(ctx, "bitcoin", 1634040000)
	require.NoError(t, err)
	assert.Equal(t, 2.0, q.USD)
	assert.Equal(t, 2, src.callCount())
	assert.Equal(t, 1, m.lookup("error"))
}

func TestPriceLookupRejectsBadInput(t *testing.T) {
	p := newLookup(t, &fakePrices{usd: 1}, newFakeMetrics())
	_, err := p.USD(context.Background(), " ", 1634040000)
	assert.Error(t, err)
	_, err = p.USD(context.Background(), "bitcoin", 0)
	assert.Error(t, err)
}
