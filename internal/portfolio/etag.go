package portfolio

import "sync"

// etagEntry holds a cached response for an API path.
type etagEntry struct {
	etag string
	body []byte
}

// etagCache stores ETag → response body mappings for conditional GET
// requests. When GitHub answers 304 Not Modified, the cached body is
// reused instead of consuming rate limit quota. There is no eviction —
// the cache lives for the Client's lifetime and is bounded by the
// number of distinct paths queried.
type etagCache struct {
	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]etagEntry)}
}

// get returns the cached ETag for a path, or "" if not cached.
func (cache *etagCache) get(path string) string {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[path].etag
}

// body returns the cached response body for a path, or nil if not cached.
func (cache *etagCache) body(path string) []byte {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[path].body
}

// put stores an ETag and response body for a path.
func (cache *etagCache) put(path, etag string, body []byte) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[path] = etagEntry{etag: etag, body: body}
}
