package contentcache

import "time"

type (
	// Entry is a snapshot of a cached item's state.
	// Returned by [Cache.Peek].
	Entry struct {
		// Key names the content, unique within the cache.
		Key string
		// Content is a copy of the cached bytes.
		Content []byte
		// InsertedAt is when the content was stored,
		// or when a stale entry was last renewed by a retrieval.
		InsertedAt time.Time
		// TTL is the time-to-live.
		// Zero marks the entry as always stale.
		TTL time.Duration
		// Fetched is true once the entry has been retrieved.
		Fetched bool
	}
	entry struct {
		content    []byte
		insertedAt time.Time
		ttl        time.Duration
		fetched    bool
	}
)

// Size returns the byte length of the content.
func (e Entry) Size() int { return len(e.Content) }

// Elapsed returns the age of the entry at now.
func (e Entry) Elapsed(now time.Time) time.Duration {
	return now.Sub(e.InsertedAt)
}

// IsStale reports whether e has outlived its TTL at now.
// An entry with a zero TTL is always stale.
func IsStale(now time.Time, e Entry) bool {
	return isStale(now.Sub(e.InsertedAt), e.TTL)
}

func isStale(elapsed, ttl time.Duration) bool {
	return ttl == 0 || elapsed > ttl
}

func (e *entry) elapsed(now time.Time) time.Duration {
	return now.Sub(e.insertedAt)
}

func (e *entry) stale(now time.Time) bool {
	return isStale(e.elapsed(now), e.ttl)
}

func (e *entry) snapshot(key string) Entry {
	return Entry{
		Key:        key,
		Content:    cloneBytes(e.content),
		InsertedAt: e.insertedAt,
		TTL:        e.ttl,
		Fetched:    e.fetched,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
