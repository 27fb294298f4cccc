package drama

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets the tests cross TTL deadlines without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := NewCache()
	c.now = clock.Now
	return c, clock
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache()
	c.Set("k", "value", time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestCacheExpiry(t *testing.T) {
	c, clock := newTestCache()
	c.Set("k", "value", time.Second)

	_, ok := c.Get("k")
	require.True(t, ok, "entry should be served before expiry")

	clock.Advance(1100 * time.Millisecond)
	_, ok = c.Get("k")
	require.False(t, ok, "entry must be unavailable immediately after TTL elapses")
	require.Equal(t, 0, c.Len(), "expired entry should be evicted on lookup")
}

func TestCacheOverwrite(t *testing.T) {
	c, clock := newTestCache()
	c.Set("k", "old", time.Second)
	c.Set("k", "new", time.Minute)

	clock.Advance(30 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok, "overwrite should refresh the deadline")
	require.Equal(t, "new", v)
}

func TestCacheNonPositiveTTLClamped(t *testing.T) {
	c, clock := newTestCache()
	c.Set("k", "v", 0)

	_, ok := c.Get("k")
	require.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestCacheKeyOrderIndependence(t *testing.T) {
	a := CacheKey("/allepisode", map[string]string{"lang": "en", "code": "7"})
	b := CacheKey("/allepisode", map[string]string{"code": "7", "lang": "en"})
	require.Equal(t, a, b)
}

func TestCacheKeyDistinguishes(t *testing.T) {
	require.NotEqual(t,
		CacheKey("/detail", map[string]string{"bookId": "1"}),
		CacheKey("/detail", map[string]string{"bookId": "2"}))
	require.NotEqual(t,
		CacheKey("/detail", map[string]string{"bookId": "1"}),
		CacheKey("/allepisode", map[string]string{"bookId": "1"}))
}

func TestCacheKeySkipsEmptyValues(t *testing.T) {
	require.Equal(t,
		CacheKey("/search", map[string]string{"query": "love"}),
		CacheKey("/search", map[string]string{"query": "love", "lang": ""}))
	require.Equal(t, "/latest", CacheKey("/latest", nil))
}

func TestCacheConcurrentAccess(t *testing.T) {
	c, _ := newTestCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 100; j++ {
				c.Set(key, n, time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
}
