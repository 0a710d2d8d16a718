package collection

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// checksumLength is how many characters of the encoded checksum are kept.
// The checksum is a corruption detector, not a cryptographic integrity
// guarantee — a collision merely costs an unnecessary re-fetch.
const checksumLength = 8

// CacheEntry is the unit stored in memory and persisted to disk. An entry is
// either absent or fully populated; consumers never see a partial write.
type CacheEntry struct {
	Data *CollectionIndex `json:"data"`

	// Timestamp is epoch milliseconds of the last successful fetch or
	// 304 revalidation. It is never set without a network round trip.
	Timestamp int64 `json:"timestamp"`

	// ETag and LastModified are the validators from the last 200 response,
	// replayed as If-None-Match / If-Modified-Since on the next fetch.
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"lastModified,omitempty"`

	// Version is the payload's own semantic version field.
	Version string `json:"version"`

	// Checksum is computed over the payload's identity fields at write time
	// and re-verified when the entry is read back from disk.
	Checksum string `json:"checksum"`
}

// newCacheEntry builds a fully populated entry for a freshly fetched index.
func newCacheEntry(idx *CollectionIndex, fetchedAt time.Time, etag, lastModified string) *CacheEntry {
	return &CacheEntry{
		Data:         idx,
		Timestamp:    fetchedAt.UnixMilli(),
		ETag:         etag,
		LastModified: lastModified,
		Version:      idx.Version,
		Checksum:     computeChecksum(idx),
	}
}

// computeChecksum derives the short checksum from the fields that identify a
// particular index build: its version, generation timestamp, and element
// count. Any edit to those fields on disk invalidates the entry.
func computeChecksum(idx *CollectionIndex) string {
	seed, _ := json.Marshal(struct {
		Version       string `json:"version"`
		Generated     string `json:"generated"`
		TotalElements int    `json:"total_elements"`
	}{idx.Version, idx.Generated, idx.TotalElements})

	sum := base64.StdEncoding.EncodeToString(seed)
	if len(sum) > checksumLength {
		sum = sum[:checksumLength]
	}
	return sum
}

// Age returns how long ago the entry was fetched or revalidated.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// IsExpired reports whether the entry is past its TTL.
func (e *CacheEntry) IsExpired(now time.Time, ttl time.Duration) bool {
	return e.Age(now) > ttl
}

// ShouldRefresh reports whether the entry is old enough to warrant a
// background refresh. This fires before expiry (at refreshThreshold of the
// TTL) so a hot cache rarely serves stale data at all.
func (e *CacheEntry) ShouldRefresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) > time.Duration(float64(ttl)*refreshThreshold)
}
