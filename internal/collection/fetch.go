package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const userAgent = "curator/1.0"

// fetchResult is the outcome of one successful fetch. Either index is set
// (200) or notModified is true (304) — never both.
type fetchResult struct {
	index        *CollectionIndex
	etag         string
	lastModified string
	notModified  bool
}

// fetcher performs the conditional HTTP fetch with bounded retries.
type fetcher struct {
	url        string
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger

	// randFloat and sleep are injectable for deterministic tests.
	randFloat func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

func newFetcher(cfg Config, client *http.Client, logger zerolog.Logger) *fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &fetcher{
		url:        cfg.IndexURL,
		client:     client,
		timeout:    cfg.FetchTimeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseRetryDelay,
		maxDelay:   cfg.MaxRetryDelay,
		logger:     logger,
		randFloat:  rand.Float64,
		sleep:      sleepContext,
	}
}

// fetch tries the request up to maxRetries+1 times, sleeping a jittered
// backoff delay before every retry. On exhausting all attempts it returns the
// last error seen.
func (f *fetcher) fetch(ctx context.Context, etag, lastModified string) (*fetchResult, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.retryDelay(attempt)
			f.logger.Debug().Int("attempt", attempt).Dur("delay", delay).
				Msg("retrying collection index fetch")
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := f.fetchOnce(ctx, etag, lastModified)
		if err == nil {
			return result, nil
		}
		lastErr = err
		f.logger.Debug().Err(err).Int("attempt", attempt+1).Msg("collection index fetch failed")
	}

	return nil, lastErr
}

// fetchOnce performs a single conditional GET against the index URL.
func (f *fetcher) fetchOnce(ctx context.Context, etag, lastModified string) (*fetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// A deadline on the per-request context is a timeout; anything else
		// (including cancellation of the parent ctx) stays a network error.
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("fetch timeout after %dms", f.timeout.Milliseconds())
		}
		return nil, fmt.Errorf("fetching collection index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		return &fetchResult{notModified: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("collection index fetch failed: HTTP %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	idx, err := ParseIndex(body)
	if err != nil {
		return nil, err
	}

	return &fetchResult{
		index:        idx,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// retryDelay computes the backoff before retry number attempt (1-indexed):
// base doubled per attempt, capped at maxDelay, then jittered by ±25% so
// concurrent clients don't retry in lockstep. Never negative.
func (f *fetcher) retryDelay(attempt int) time.Duration {
	base := float64(f.baseDelay) * math.Pow(2, float64(attempt-1))
	if max := float64(f.maxDelay); base > max {
		base = max
	}

	jittered := base + base*0.25*(f.randFloat()-0.5)
	if jittered < 0 {
		jittered = 0
	}
	return time.Duration(jittered)
}

// sleepContext sleeps for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
