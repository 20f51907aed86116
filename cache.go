package contentcache

import (
	"iter"
	"log/slog"
	"time"

	"github.com/djdv/go-contentcache/internal/list"
)

type (
	handle    = list.Handle
	entryList = list.List[string, entry]
	// Cache holds named content in two lists:
	// pending (never retrieved) and retrieved (fetched at least once).
	// Concurrent access must be guarded by the caller.
	// Constructed by [New].
	Cache struct {
		pending, retrieved *entryList
		store              Store
		metrics            Metrics
		log                *slog.Logger
		capacity           int
		stats              Stats
	}
)

const noHandle = list.None

// New creates a [Cache] that holds at most capacity entries.
// A capacity of 0 is valid but stores nothing.
func New(capacity int, options ...Option) (*Cache, error) {
	if capacity < 0 {
		return nil, capacityError(capacity)
	}
	const sentinels = 4 // Head and tail for both lists.
	arena := list.NewArena[string, entry](capacity + sentinels)
	c := &Cache{
		pending:   list.New(arena),
		retrieved: list.New(arena),
		capacity:  capacity,
		store:     NopStore(),
		metrics:   NopMetrics(),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// Put stores a copy of content under key.
//
// If key is already cached, its content and ttl are replaced,
// its clock restarts at now, and it moves to the head of the
// pending list (even if it had been retrieved).
//
// Otherwise, if the cache is full, an entry is evicted first.
// If the cache still has no room (capacity 0), the content
// is dropped.
//
// A returned error wrapping [ErrContentStore] is a warning;
// the content was still stored.
func (c *Cache) Put(key string, content []byte, ttl time.Duration, now time.Time) error {
	if ttl < 0 {
		return ttlError(key, ttl)
	}
	if h, from, found := c.find(key); found {
		c.update(h, from, content, ttl, now)
		return nil
	}
	var err error
	if c.atCapacity() {
		_, _, err = c.Evict(now)
	}
	if c.atCapacity() {
		c.stats.Rejected++
		c.metrics.Rejected()
		c.log.Debug("dropped content",
			slog.String("key", key),
			slog.Int("capacity", c.capacity),
		)
		return err
	}
	c.pending.InsertAtHead(key, entry{
		content:    cloneBytes(content),
		insertedAt: now,
		ttl:        ttl,
	})
	c.stats.Stores++
	c.metrics.Stored(false)
	c.reportEntries()
	if debugging {
		assert(c.Len() <= c.capacity,
			"capacity exceeded after put")
	}
	return err
}

func (c *Cache) update(h handle, from *entryList, content []byte, ttl time.Duration, now time.Time) {
	e := from.Value(h)
	demoted := e.fetched
	e.content = cloneBytes(content)
	e.ttl = ttl
	e.insertedAt = now
	e.fetched = false
	c.pending.MoveToHead(h, from)
	c.stats.Updates++
	c.metrics.Stored(true)
	if demoted {
		c.stats.Demotions++
		c.metrics.Demoted()
		c.log.Debug("demoted",
			slog.String("key", from.Key(h)),
		)
	}
	c.reportEntries()
}

// Get returns a copy of the content stored under key,
// and moves the entry to the head of the retrieved list.
// The first Get of an entry moves it out of the pending list.
// If the entry is stale at now, its clock restarts at now.
//
// Hits are emitted to the [Store]. A returned error wrapping
// [ErrContentStore] is a warning; the content is still returned.
//
// A miss returns false and changes nothing.
func (c *Cache) Get(key string, now time.Time) ([]byte, bool, error) {
	h, from, found := c.find(key)
	if !found {
		c.stats.Misses++
		c.metrics.Miss()
		return nil, false, nil
	}
	c.retrieved.MoveToHead(h, from)
	e := c.retrieved.Value(h)
	if !e.fetched {
		e.fetched = true
		c.stats.Promotions++
		c.metrics.Promoted()
		c.reportEntries()
	}
	if e.stale(now) {
		e.insertedAt = now
		c.stats.Renewals++
		c.metrics.Renewed()
	}
	c.stats.Hits++
	c.metrics.Hit()
	content := cloneBytes(e.content)
	if err := c.store.EmitContent(key, content); err != nil {
		return content, true, c.storeFailed("emit", key, err)
	}
	return content, true, nil
}

// Load returns the content for key if it is cached.
// Otherwise, it calls fetch and stores the result with ttl.
// If fetch returns an error, nothing is stored.
func (c *Cache) Load(key string, ttl time.Duration, now time.Time, fetch func() ([]byte, error)) ([]byte, error) {
	if content, hit, err := c.Get(key, now); hit {
		return content, err
	}
	content, err := fetch()
	if err != nil {
		return content, err
	}
	return content, c.Put(key, content, ttl, now)
}

// Peek returns a snapshot of the entry for key
// without changing its position or state.
func (c *Cache) Peek(key string) (Entry, bool) {
	h, from, found := c.find(key)
	if !found {
		return Entry{}, false
	}
	return from.Value(h).snapshot(key), true
}

func (c *Cache) find(key string) (handle, *entryList, bool) {
	if h, ok := c.pending.Find(key); ok {
		return h, c.pending, true
	}
	if h, ok := c.retrieved.Find(key); ok {
		return h, c.retrieved, true
	}
	return noHandle, nil, false
}

func (c *Cache) atCapacity() bool {
	return c.Len() >= c.capacity
}

func (c *Cache) storeFailed(op, key string, err error) error {
	c.metrics.StoreFailed(op)
	c.log.Warn("content store failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.Any("error", err),
	)
	return storeError(op, key, err)
}

func (c *Cache) reportEntries() {
	c.metrics.Entries(c.pending.Len(), c.retrieved.Len())
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int { return c.capacity }

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.pending.Len() + c.retrieved.Len()
}

// PendingLen returns the number of entries never retrieved.
func (c *Cache) PendingLen() int { return c.pending.Len() }

// RetrievedLen returns the number of entries retrieved at least once.
func (c *Cache) RetrievedLen() int { return c.retrieved.Len() }

// Stats returns a snapshot of the operation counters.
func (c *Cache) Stats() Stats { return c.stats }

// Keys returns an iterator over all cached keys:
// the pending list followed by the retrieved list,
// each from most to least recent.
func (c *Cache) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range c.pending.Keys() {
			if !yield(key) {
				return
			}
		}
		for key := range c.retrieved.Keys() {
			if !yield(key) {
				return
			}
		}
	}
}

// PendingKeys returns an iterator over keys never retrieved,
// from most to least recently stored.
func (c *Cache) PendingKeys() iter.Seq[string] { return c.pending.Keys() }

// RetrievedKeys returns an iterator over retrieved keys,
// from most to least recently accessed.
func (c *Cache) RetrievedKeys() iter.Seq[string] { return c.retrieved.Keys() }
