package contentcache

import "log/slog"

// Option configures a [Cache] during [New].
type Option func(*Cache)

// WithStore sets the collaborator notified of evictions and hits.
// Defaults to [NopStore].
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithLogger sets the logger used for eviction and store diagnostics.
// Defaults to discarding all records.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		c.log = log
	}
}

// WithMetrics sets the instrumentation sink.
// Defaults to [NopMetrics].
func WithMetrics(metrics Metrics) Option {
	return func(c *Cache) {
		c.metrics = metrics
	}
}
