package collection

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// cacheFileName is the persisted entry's filename under the cache dir.
const cacheFileName = "collection-index.json"

// diskCache persists the cache entry between processes. Persistence is an
// optimization, not a correctness requirement: every failure mode degrades to
// "no cache on disk" and is logged, never surfaced to callers. The in-memory
// entry stays authoritative for the running process.
type diskCache struct {
	path   string
	logger zerolog.Logger
}

func newDiskCache(dir string, logger zerolog.Logger) *diskCache {
	return &diskCache{path: filepath.Join(dir, cacheFileName), logger: logger}
}

// load reads the persisted entry back. Returns nil for a missing, corrupt,
// incomplete, or tampered file — all of those are a cache miss.
func (d *diskCache) load() *CacheEntry {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn().Err(err).Str("path", d.path).Msg("reading cache file")
		}
		return nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		d.logger.Warn().Err(err).Str("path", d.path).Msg("cache file is corrupt, ignoring")
		return nil
	}

	if entry.Data == nil || entry.Timestamp == 0 || entry.Version == "" {
		d.logger.Warn().Str("path", d.path).Msg("cache file is incomplete, ignoring")
		return nil
	}

	if computeChecksum(entry.Data) != entry.Checksum {
		d.logger.Warn().Str("path", d.path).Msg("cache file checksum mismatch, ignoring")
		return nil
	}

	return &entry
}

// save writes the entry as pretty-printed JSON, creating the cache dir if
// needed. Write failures are swallowed after logging.
func (d *diskCache) save(entry *CacheEntry) {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		d.logger.Warn().Err(err).Msg("creating cache directory")
		return
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		d.logger.Warn().Err(err).Msg("serializing cache entry")
		return
	}

	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		d.logger.Warn().Err(err).Str("path", d.path).Msg("writing cache file")
	}
}

// remove deletes the cache file. An already-absent file is not an error.
func (d *diskCache) remove() error {
	err := os.Remove(d.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
