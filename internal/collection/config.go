package collection

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultIndexURL is where the collection publishes its index.
const DefaultIndexURL = "https://raw.githubusercontent.com/curatormcp/collection/main/public/collection-index.json"

// fetchTimeoutEnv overrides the fetch timeout with a value in milliseconds.
const fetchTimeoutEnv = "COLLECTION_FETCH_TIMEOUT"

// refreshThreshold is the fraction of the TTL after which a still-valid
// entry triggers a background refresh. Independent from expiry: an entry can
// be "should refresh" without being "expired".
const refreshThreshold = 0.8

// Config holds the tunables for the index cache. Constructed once at process
// start and passed in explicitly — there is no global configuration state.
type Config struct {
	IndexURL string

	// CacheDir is where the persisted entry lives
	// (<CacheDir>/collection-index.json).
	CacheDir string

	TTL          time.Duration
	FetchTimeout time.Duration

	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultConfig returns the production configuration for the index cache.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		IndexURL:         DefaultIndexURL,
		CacheDir:         filepath.Join(home, ".curator", "cache"),
		TTL:              time.Hour,
		FetchTimeout:     5 * time.Second,
		MaxRetries:       3,
		BaseRetryDelay:   time.Second,
		MaxRetryDelay:    30 * time.Second,
		BreakerThreshold: 5,
		BreakerCooldown:  5 * time.Minute,
	}
}

// applyEnvOverrides folds environment overrides into the config. Invalid or
// non-positive values are ignored with a warning — a bad env var must not
// take the cache down.
func (c Config) applyEnvOverrides(logger zerolog.Logger) Config {
	raw := os.Getenv(fetchTimeoutEnv)
	if raw == "" {
		return c
	}

	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		logger.Warn().Str("value", raw).
			Msgf("ignoring invalid %s, using %s", fetchTimeoutEnv, c.FetchTimeout)
		return c
	}

	c.FetchTimeout = time.Duration(ms) * time.Millisecond
	return c
}
