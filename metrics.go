package contentcache

// Metrics receives instrumentation events from a [Cache].
// Implementations are called synchronously on the cache's goroutine.
type Metrics interface {
	// Hit is called when Get finds its key.
	Hit()
	// Miss is called when Get does not find its key.
	Miss()
	// Stored is called after content is stored.
	// update is true if the key was already cached.
	Stored(update bool)
	// Rejected is called when a new key could not be stored
	// because the cache has no capacity.
	Rejected()
	// Promoted is called when an entry is retrieved for the first time.
	Promoted()
	// Demoted is called when a retrieved entry is stored again.
	Demoted()
	// Renewed is called when a hit restarts the clock of a stale entry.
	Renewed()
	// Evicted is called after an entry is removed.
	Evicted(tier Tier)
	// StoreFailed is called when the [Store] returns an error for op.
	StoreFailed(op string)
	// Entries reports the list sizes after every mutation.
	Entries(pending, retrieved int)
}

type nopMetrics struct{}

func (nopMetrics) Hit()               {}
func (nopMetrics) Miss()              {}
func (nopMetrics) Stored(bool)        {}
func (nopMetrics) Rejected()          {}
func (nopMetrics) Promoted()          {}
func (nopMetrics) Demoted()           {}
func (nopMetrics) Renewed()           {}
func (nopMetrics) Evicted(Tier)       {}
func (nopMetrics) StoreFailed(string) {}
func (nopMetrics) Entries(int, int)   {}

// NopMetrics returns a [Metrics] implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
