package contentcache

import (
	"log/slog"
	"time"
)

// Tier identifies which rule of the eviction policy chose a victim.
type Tier uint8

const (
	// TierNone means the cache was empty and nothing was chosen.
	TierNone Tier = iota
	// TierStale selects the stale entry with the greatest elapsed age.
	TierStale
	// TierPending selects the least recently stored entry
	// that was never retrieved.
	TierPending
	// TierRetrieved selects the least recently retrieved entry.
	TierRetrieved
	tierCount
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierStale:
		return "stale"
	case TierPending:
		return "pending"
	case TierRetrieved:
		return "retrieved"
	default:
		return "invalid"
	}
}

// SelectVictim returns the key that [Cache.Evict] would remove at now,
// and the tier that selected it.
// It does not modify the cache.
func (c *Cache) SelectVictim(now time.Time) (string, Tier) {
	h, from, tier := c.selectVictim(now)
	if tier == TierNone {
		return "", TierNone
	}
	return from.Key(h), tier
}

func (c *Cache) selectVictim(now time.Time) (handle, *entryList, Tier) {
	if h, from, ok := c.oldestStale(now); ok {
		return h, from, TierStale
	}
	if h, ok := c.pending.Tail(); ok {
		return h, c.pending, TierPending
	}
	if h, ok := c.retrieved.Tail(); ok {
		return h, c.retrieved, TierRetrieved
	}
	return noHandle, nil, TierNone
}

// oldestStale scans both lists fully.
// Only a strictly greater age replaces the current candidate,
// so ties go to whichever was encountered first.
func (c *Cache) oldestStale(now time.Time) (handle, *entryList, bool) {
	var (
		victim = noHandle
		from   *entryList
		oldest time.Duration
		found  bool
	)
	for _, l := range [...]*entryList{c.pending, c.retrieved} {
		for h, e := range l.All() {
			elapsed := e.elapsed(now)
			if !isStale(elapsed, e.ttl) {
				continue
			}
			if !found || elapsed > oldest {
				victim, from, oldest, found = h, l, elapsed, true
			}
		}
	}
	return victim, from, found
}

// Evict removes the entry chosen by [Cache.SelectVictim]
// and asks the [Store] to delete its content.
// The entry is removed even if the store fails;
// in that case the returned error wraps [ErrContentStore].
// Evicting from an empty cache returns [TierNone] and does nothing.
func (c *Cache) Evict(now time.Time) (string, Tier, error) {
	h, from, tier := c.selectVictim(now)
	if tier == TierNone {
		return "", TierNone, nil
	}
	key := from.Key(h)
	err := c.store.DeleteContent(key)
	if err != nil {
		err = c.storeFailed("delete", key, err)
	}
	from.Remove(h)
	c.stats.Evictions[tier]++
	c.metrics.Evicted(tier)
	c.reportEntries()
	c.log.Debug("evicted",
		slog.String("key", key),
		slog.String("tier", tier.String()),
	)
	return key, tier, err
}
