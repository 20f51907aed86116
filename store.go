package contentcache

// Store receives the cache's notifications about content
// held outside of it.
// Implementations must not retain the content slice passed to EmitContent.
type Store interface {
	// DeleteContent drops any persisted bytes for key.
	// Called while evicting key.
	DeleteContent(key string) error
	// EmitContent delivers retrieved content to its destination.
	// Called at the end of every hit.
	EmitContent(key string, content []byte) error
}

type nopStore struct{}

func (nopStore) DeleteContent(string) error       { return nil }
func (nopStore) EmitContent(string, []byte) error { return nil }

// NopStore returns a [Store] that ignores every notification.
func NopStore() Store { return nopStore{} }
