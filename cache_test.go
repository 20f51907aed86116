package contentcache_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	contentcache "github.com/djdv/go-contentcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore remembers every notification
// and fails the operations it is told to.
type recordingStore struct {
	deleted    []string
	emitted    map[string][]byte
	failDelete error
	failEmit   error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{emitted: make(map[string][]byte)}
}

func (s *recordingStore) DeleteContent(key string) error {
	s.deleted = append(s.deleted, key)
	return s.failDelete
}

func (s *recordingStore) EmitContent(key string, content []byte) error {
	s.emitted[key] = content
	return s.failEmit
}

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// at returns the reference time offset from epoch.
func at(offset time.Duration) time.Time { return epoch.Add(offset) }

func TestCache(t *testing.T) {
	t.Run("invalid capacity", invalidCapacity)
	t.Run("invalid ttl", invalidTTL)
	t.Run("zero capacity", zeroCapacity)
	t.Run("round trip", roundTrip)
	t.Run("miss", missIsNoop)
	t.Run("first fetch", firstFetchTransition)
	t.Run("repeat fetch", repeatFetch)
	t.Run("update pending", updatePending)
	t.Run("update retrieved", updateRetrieved)
	t.Run("renew stale", renewStale)
	t.Run("fresh hit keeps clock", freshHitKeepsClock)
	t.Run("content is copied", contentIsCopied)
	t.Run("load", load)
	t.Run("stats", stats)
}

func invalidCapacity(t *testing.T) {
	t.Parallel()
	cache, err := contentcache.New(-1)
	assert.Nil(t, cache)
	require.ErrorIs(t, err, contentcache.ErrInvalidCapacity)
}

func invalidTTL(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 2)
	err := cache.Put("a", []byte("a"), -time.Second, epoch)
	require.ErrorIs(t, err, contentcache.ErrInvalidTTL)
	checkCounts(t, cache, 0, 0, "after rejected ttl")
}

func zeroCapacity(t *testing.T) {
	t.Parallel()
	store := newRecordingStore()
	cache := newCache(t, 0, contentcache.WithStore(store))
	require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
	checkCounts(t, cache, 0, 0, "pass-through cache")
	mustMiss(t, cache, "a", at(time.Second))
	assert.Empty(t, store.deleted, "nothing to evict")
	assert.EqualValues(t, 1, cache.Stats().Rejected)
}

func roundTrip(t *testing.T) {
	t.Parallel()
	var (
		store   = newRecordingStore()
		cache   = newCache(t, 2, contentcache.WithStore(store))
		content = []byte("hello, world")
	)
	require.NoError(t, cache.Put("a.txt", content, 100*time.Second, epoch))
	got := mustGet(t, cache, "a.txt", at(time.Second))
	assert.Equal(t, content, got)
	assert.Equal(t, content, store.emitted["a.txt"])
}

func missIsNoop(t *testing.T) {
	t.Parallel()
	store := newRecordingStore()
	cache := newCache(t, 2, contentcache.WithStore(store))
	require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
	var (
		pending   = slices.Collect(cache.PendingKeys())
		retrieved = slices.Collect(cache.RetrievedKeys())
	)
	mustMiss(t, cache, "missing", epoch)
	checkCounts(t, cache, 1, 0, "after miss")
	assert.Equal(t, pending, slices.Collect(cache.PendingKeys()))
	assert.Equal(t, retrieved, slices.Collect(cache.RetrievedKeys()))
	assert.Empty(t, store.emitted)
}

func firstFetchTransition(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 4)
	require.NoError(t, cache.Put("a.txt", []byte("B"), 100*time.Second, epoch))
	checkCounts(t, cache, 1, 0, "after put")
	mustGet(t, cache, "a.txt", at(time.Second))
	checkCounts(t, cache, 0, 1, "after first get")
	entry, ok := cache.Peek("a.txt")
	require.True(t, ok)
	assert.True(t, entry.Fetched)
}

func repeatFetch(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 4)
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Put(key, []byte(key), time.Minute, epoch))
	}
	mustGet(t, cache, "a", at(1*time.Second))
	mustGet(t, cache, "b", at(2*time.Second))
	mustGet(t, cache, "a", at(3*time.Second))
	checkCounts(t, cache, 1, 2, "after repeated gets")
	assert.Equal(t, []string{"a", "b"}, slices.Collect(cache.RetrievedKeys()),
		"retrieved list must be in access order")
	assert.EqualValues(t, 2, cache.Stats().Promotions)
}

func updatePending(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 4)
	require.NoError(t, cache.Put("a", []byte("old"), time.Minute, epoch))
	require.NoError(t, cache.Put("b", []byte("b"), time.Minute, epoch))
	require.NoError(t, cache.Put("a", []byte("new"), time.Hour, at(time.Second)))
	checkCounts(t, cache, 2, 0, "after update")
	assert.Equal(t, []string{"a", "b"}, slices.Collect(cache.PendingKeys()))
	entry, ok := cache.Peek("a")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), entry.Content)
	assert.Equal(t, time.Hour, entry.TTL)
	assert.Equal(t, at(time.Second), entry.InsertedAt)
	assert.Equal(t, 3, entry.Size())
}

func updateRetrieved(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 4)
	require.NoError(t, cache.Put("a", []byte("old"), time.Minute, epoch))
	mustGet(t, cache, "a", at(time.Second))
	checkCounts(t, cache, 0, 1, "after get")
	require.NoError(t, cache.Put("a", []byte("new"), time.Minute, at(2*time.Second)))
	checkCounts(t, cache, 1, 0, "re-put must demote")
	entry, ok := cache.Peek("a")
	require.True(t, ok)
	assert.False(t, entry.Fetched)
	mustGet(t, cache, "a", at(3*time.Second))
	checkCounts(t, cache, 0, 1, "after fetching the demoted entry")
	assert.EqualValues(t, 1, cache.Stats().Demotions)
}

func renewStale(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 2)
	require.NoError(t, cache.Put("a", []byte("a"), time.Second, epoch))
	later := at(10 * time.Second)
	mustGet(t, cache, "a", later)
	entry, ok := cache.Peek("a")
	require.True(t, ok)
	assert.Equal(t, later, entry.InsertedAt, "stale hit must restart the clock")
	assert.Equal(t, time.Second, entry.TTL, "ttl must not change on get")
	assert.False(t, contentcache.IsStale(later, entry))
}

func freshHitKeepsClock(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 2)
	require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
	mustGet(t, cache, "a", at(time.Second))
	entry, ok := cache.Peek("a")
	require.True(t, ok)
	assert.Equal(t, epoch, entry.InsertedAt)
}

func contentIsCopied(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 2)
	content := []byte("abc")
	require.NoError(t, cache.Put("a", content, time.Minute, epoch))
	content[0] = 'X'
	got := mustGet(t, cache, "a", epoch)
	assert.Equal(t, []byte("abc"), got)
	got[1] = 'Y'
	assert.Equal(t, []byte("abc"), mustGet(t, cache, "a", epoch))
}

func load(t *testing.T) {
	t.Parallel()
	var (
		cache   = newCache(t, 2)
		fetches int
		fetch   = func() ([]byte, error) {
			fetches++
			return []byte("loaded"), nil
		}
	)
	for range 2 {
		got, err := cache.Load("a", time.Minute, epoch, fetch)
		require.NoError(t, err)
		assert.Equal(t, []byte("loaded"), got)
	}
	assert.Equal(t, 1, fetches)
	checkCounts(t, cache, 0, 1, "after load and hit")

	errFetch := errors.New("unreachable origin")
	_, err := cache.Load("b", time.Minute, epoch, func() ([]byte, error) {
		return nil, errFetch
	})
	require.ErrorIs(t, err, errFetch)
	_, ok := cache.Peek("b")
	assert.False(t, ok, "failed fetch must not be cached")
}

func stats(t *testing.T) {
	t.Parallel()
	cache := newCache(t, 1)
	require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
	require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
	mustGet(t, cache, "a", epoch)
	mustMiss(t, cache, "b", epoch)
	require.NoError(t, cache.Put("b", []byte("b"), time.Minute, epoch))
	got := cache.Stats()
	assert.EqualValues(t, 1, got.Hits)
	assert.EqualValues(t, 1, got.Misses)
	assert.EqualValues(t, 2, got.Stores)
	assert.EqualValues(t, 1, got.Updates)
	assert.EqualValues(t, 1, got.Evictions[contentcache.TierRetrieved])
	assert.EqualValues(t, 1, got.TotalEvictions())
}

func TestStoreFailures(t *testing.T) {
	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		store := newRecordingStore()
		store.failDelete = errors.New("permission denied")
		cache := newCache(t, 1, contentcache.WithStore(store))
		require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
		err := cache.Put("b", []byte("b"), time.Minute, epoch)
		require.ErrorIs(t, err, contentcache.ErrContentStore)
		require.ErrorIs(t, err, store.failDelete)
		assert.Equal(t, []string{"a"}, store.deleted)
		assert.Equal(t, []string{"b"}, slices.Collect(cache.Keys()),
			"eviction must proceed despite the store")
	})
	t.Run("emit", func(t *testing.T) {
		t.Parallel()
		store := newRecordingStore()
		store.failEmit = errors.New("disk full")
		cache := newCache(t, 1, contentcache.WithStore(store))
		require.NoError(t, cache.Put("a", []byte("a"), time.Minute, epoch))
		got, ok, err := cache.Get("a", epoch)
		require.True(t, ok)
		require.ErrorIs(t, err, contentcache.ErrContentStore)
		assert.Equal(t, []byte("a"), got)
		checkCounts(t, cache, 0, 1, "hit must be recorded despite the store")
	})
}

// TestInvariants drives random workloads and checks
// the structural invariants after every call.
func TestInvariants(t *testing.T) {
	for _, capacity := range []int{0, 1, 2, 5, 16} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			t.Parallel()
			const (
				operations = 2000
				keySpace   = 24
			)
			var (
				rng   = rand.New(rand.NewPCG(uint64(capacity), 1))
				cache = newCache(t, capacity)
				now   = epoch
			)
			for i := range operations {
				now = now.Add(time.Duration(rng.IntN(3000)) * time.Millisecond)
				key := fmt.Sprintf("key-%d", rng.IntN(keySpace))
				if rng.IntN(2) == 0 {
					ttl := time.Duration(rng.IntN(5)) * time.Second
					require.NoError(t, cache.Put(key, []byte(key), ttl, now))
				} else {
					_, _, err := cache.Get(key, now)
					require.NoError(t, err)
				}
				checkInvariants(t, cache, fmt.Sprintf("operation %d", i))
			}
		})
	}
}

func checkInvariants(tb testing.TB, cache *contentcache.Cache, msg string) {
	tb.Helper()
	var (
		pending   = slices.Collect(cache.PendingKeys())
		retrieved = slices.Collect(cache.RetrievedKeys())
	)
	require.LessOrEqual(tb, cache.Len(), cache.Capacity(), "capacity %s", msg)
	require.Len(tb, pending, cache.PendingLen(), "pending count %s", msg)
	require.Len(tb, retrieved, cache.RetrievedLen(), "retrieved count %s", msg)
	seen := make(map[string]bool, len(pending)+len(retrieved))
	for _, key := range pending {
		require.False(tb, seen[key], "duplicate %q %s", key, msg)
		seen[key] = true
		entry, _ := cache.Peek(key)
		require.False(tb, entry.Fetched, "fetched entry %q in pending %s", key, msg)
	}
	for _, key := range retrieved {
		require.False(tb, seen[key], "key %q in both lists %s", key, msg)
		seen[key] = true
		entry, _ := cache.Peek(key)
		require.True(tb, entry.Fetched, "unfetched entry %q in retrieved %s", key, msg)
	}
}

func newCache(tb testing.TB, capacity int, options ...contentcache.Option) *contentcache.Cache {
	tb.Helper()
	cache, err := contentcache.New(capacity, options...)
	require.NoError(tb, err)
	return cache
}

func mustGet(tb testing.TB, cache *contentcache.Cache, key string, now time.Time) []byte {
	tb.Helper()
	content, ok, err := cache.Get(key, now)
	require.NoError(tb, err)
	require.True(tb, ok, "expected value from Get for key %q", key)
	return content
}

func mustMiss(tb testing.TB, cache *contentcache.Cache, key string, now time.Time) {
	tb.Helper()
	content, ok, err := cache.Get(key, now)
	require.NoError(tb, err)
	require.False(tb, ok, "expected miss for key %q but got: %q", key, content)
}

func checkCounts(tb testing.TB, cache *contentcache.Cache, pending, retrieved int, action string) {
	tb.Helper()
	assert.Equal(tb, pending, cache.PendingLen(), "pending count %s", action)
	assert.Equal(tb, retrieved, cache.RetrievedLen(), "retrieved count %s", action)
}
