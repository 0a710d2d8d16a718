package collection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrIndexUnavailable is wrapped by Get when no fetch succeeded and no cached
// data of any age exists.
var ErrIndexUnavailable = errors.New("Collection index not available")

// IndexManager is the top-level cache orchestrator. It decides whether to
// serve fresh, stale, or freshly fetched data, and owns the single in-memory
// CacheEntry plus its disk persistence.
//
// All state transitions happen under one mutex. The refreshing flag is set
// under the same lock acquisition that observed it clear, so two concurrent
// Get calls can never spawn duplicate background refreshes.
type IndexManager struct {
	cfg     Config
	fetcher *fetcher
	disk    *diskCache
	breaker *circuitBreaker
	now     func() time.Time
	logger  zerolog.Logger

	mu          sync.Mutex
	entry       *CacheEntry
	diskChecked bool
	refreshing  bool
	refreshDone chan struct{}
}

// NewIndexManager builds the orchestrator. A nil client or now function falls
// back to http.DefaultClient semantics and time.Now, matching production use;
// tests inject both for determinism.
func NewIndexManager(cfg Config, client *http.Client, now func() time.Time, logger zerolog.Logger) *IndexManager {
	if now == nil {
		now = time.Now
	}
	cfg = cfg.applyEnvOverrides(logger)

	return &IndexManager{
		cfg:     cfg,
		fetcher: newFetcher(cfg, client, logger),
		disk:    newDiskCache(cfg.CacheDir, logger),
		breaker: newCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown, now),
		now:     now,
		logger:  logger,
	}
}

// Get returns the collection index, blocking only when it has to.
//
//   - Valid cached entry: returned immediately. Past the refresh threshold a
//     background refresh is scheduled.
//   - Expired cached entry: returned anyway (stale-while-revalidate) and a
//     background refresh is scheduled.
//   - No cache at all: a synchronous fetch populates the cache. If that fails
//     and still nothing is cached, ErrIndexUnavailable is returned — the only
//     case where Get errors.
func (m *IndexManager) Get(ctx context.Context) (*CollectionIndex, error) {
	m.mu.Lock()
	m.loadFromDiskLocked()

	if entry := m.entry; entry != nil {
		now := m.now()
		switch {
		case !entry.IsExpired(now, m.cfg.TTL):
			if entry.ShouldRefresh(now, m.cfg.TTL) {
				m.startBackgroundRefreshLocked()
			}
		default:
			m.logger.Debug().Dur("age", entry.Age(now)).Msg("serving stale collection index")
			m.startBackgroundRefreshLocked()
		}
		idx := entry.Data
		m.mu.Unlock()
		return idx, nil
	}
	m.mu.Unlock()

	// Cold start: no memory or disk cache. Fetch synchronously.
	idx, err := m.refresh(ctx)
	if err == nil {
		return idx, nil
	}

	// A concurrent refresh may have populated the cache in the meantime —
	// any cached data beats an error.
	m.mu.Lock()
	entry := m.entry
	m.mu.Unlock()
	if entry != nil {
		return entry.Data, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrIndexUnavailable, err)
}

// Refresh bypasses the stale-serving logic and fetches synchronously. On
// failure it falls back to whatever is cached; with no cache at all the fetch
// error propagates. It does not touch the background-refresh flag — a forced
// refresh may run alongside a background one, and the last write wins.
func (m *IndexManager) Refresh(ctx context.Context) (*CollectionIndex, error) {
	idx, err := m.refresh(ctx)
	if err == nil {
		return idx, nil
	}

	m.mu.Lock()
	m.loadFromDiskLocked()
	entry := m.entry
	m.mu.Unlock()
	if entry != nil {
		m.logger.Warn().Err(err).Msg("forced refresh failed, returning cached index")
		return entry.Data, nil
	}

	return nil, err
}

// WaitForRefresh blocks until the most recently started background refresh
// finishes. No-op when none is running. Best-effort by design: a refresh
// started after the channel is read is not observed.
func (m *IndexManager) WaitForRefresh() {
	m.mu.Lock()
	done := m.refreshDone
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// CacheStats is a read-only snapshot of cache state for introspection.
type CacheStats struct {
	IsValid         bool          `json:"is_valid"`
	Age             time.Duration `json:"age"`
	HasCache        bool          `json:"has_cache"`
	Version         string        `json:"version,omitempty"`
	TotalElements   int           `json:"total_elements,omitempty"`
	IsRefreshing    bool          `json:"is_refreshing"`
	BreakerFailures int           `json:"circuit_breaker_failures"`
	BreakerOpen     bool          `json:"circuit_breaker_open"`
}

// Stats reports the current cache state without side effects.
func (m *IndexManager) Stats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := CacheStats{
		IsRefreshing:    m.refreshing,
		BreakerFailures: m.breaker.failureCount(),
		BreakerOpen:     m.breaker.isOpen(),
	}
	if m.entry != nil {
		now := m.now()
		stats.HasCache = true
		stats.IsValid = !m.entry.IsExpired(now, m.cfg.TTL)
		stats.Age = m.entry.Age(now)
		stats.Version = m.entry.Version
		stats.TotalElements = m.entry.Data.TotalElements
	}
	return stats
}

// ClearCache drops the in-memory entry, deletes the disk file, and resets the
// circuit breaker failure count. An already-absent disk file is fine.
func (m *IndexManager) ClearCache() error {
	m.mu.Lock()
	m.entry = nil
	m.diskChecked = true
	m.mu.Unlock()

	m.breaker.reset()

	if err := m.disk.remove(); err != nil {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}

// loadFromDiskLocked lazily hydrates the memory cache from disk, once per
// process. Caller holds m.mu.
func (m *IndexManager) loadFromDiskLocked() {
	if m.diskChecked {
		return
	}
	m.diskChecked = true
	if entry := m.disk.load(); entry != nil {
		m.logger.Debug().Str("version", entry.Version).Msg("loaded collection index from disk")
		m.entry = entry
	}
}

// startBackgroundRefreshLocked spawns the fire-and-forget refresh goroutine.
// Caller holds m.mu — the refreshing flag is checked and set in the same
// critical section, which is what prevents duplicate refreshes. Skipped
// entirely while the circuit breaker is open; callers are already being
// served from cache, so breaker suppression is silent.
func (m *IndexManager) startBackgroundRefreshLocked() {
	if m.refreshing {
		return
	}
	if m.breaker.isOpen() {
		m.logger.Debug().Int("failures", m.breaker.failureCount()).
			Msg("circuit breaker open, skipping background refresh")
		return
	}

	m.refreshing = true
	done := make(chan struct{})
	m.refreshDone = done

	go func() {
		defer func() {
			m.mu.Lock()
			m.refreshing = false
			m.mu.Unlock()
			close(done)
		}()

		if _, err := m.refresh(context.Background()); err != nil {
			m.breaker.recordFailure()
			m.logger.Warn().Err(err).Msg("background collection index refresh failed")
			return
		}
		m.breaker.reset()
	}()
}

// refresh performs one fetch (with retries) and folds the result into the
// cache. A 304 bumps the existing entry's timestamp in place — the only field
// mutated, inside a single critical section — while a 200 swaps in a whole
// new entry. Both outcomes are persisted to disk.
func (m *IndexManager) refresh(ctx context.Context) (*CollectionIndex, error) {
	m.mu.Lock()
	var etag, lastModified string
	if m.entry != nil {
		etag = m.entry.ETag
		lastModified = m.entry.LastModified
	}
	m.mu.Unlock()

	result, err := m.fetcher.fetch(ctx, etag, lastModified)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if result.notModified {
		if m.entry == nil {
			// Only reachable if the cache was cleared mid-fetch.
			return nil, errors.New("not modified response with no cached index")
		}
		m.entry.Timestamp = m.now().UnixMilli()
		m.disk.save(m.entry)
		m.logger.Debug().Msg("collection index not modified, timestamp refreshed")
		return m.entry.Data, nil
	}

	entry := newCacheEntry(result.index, m.now(), result.etag, result.lastModified)
	m.entry = entry
	m.disk.save(entry)
	m.logger.Info().Str("version", entry.Version).
		Int("elements", entry.Data.TotalElements).Msg("collection index updated")
	return entry.Data, nil
}
