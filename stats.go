package contentcache

// Stats counts the operations a [Cache] has performed.
// Returned by [Cache.Stats].
type Stats struct {
	Hits, Misses,
	Stores, Updates, Rejected,
	Promotions, Demotions, Renewals uint64

	// Evictions is indexed by [Tier].
	// Evictions[TierNone] is always 0.
	Evictions [tierCount]uint64
}

// TotalEvictions sums evictions across all tiers.
func (s Stats) TotalEvictions() (total uint64) {
	for _, n := range s.Evictions {
		total += n
	}
	return total
}
