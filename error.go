package contentcache

import (
	"fmt"
	"time"
)

type constError string

const (
	// ErrInvalidCapacity may be returned from [New].
	ErrInvalidCapacity = constError("invalid capacity")
	// ErrInvalidTTL is returned by [Cache.Put] when given a negative time-to-live.
	ErrInvalidTTL = constError("invalid time-to-live")
	// ErrContentStore wraps failures reported by the [Store].
	// The cache's own state was updated before such an error is returned.
	ErrContentStore = constError("content store failure")
)

func (errStr constError) Error() string { return string(errStr) }

func capacityError(capacity int) error {
	return fmt.Errorf(
		"%w: must be >=0 but %d was requested",
		ErrInvalidCapacity, capacity)
}

func ttlError(key string, ttl time.Duration) error {
	return fmt.Errorf(
		"%w: %q must be >=0 but was %s",
		ErrInvalidTTL, key, ttl)
}

func storeError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrContentStore, op, key, err)
}
