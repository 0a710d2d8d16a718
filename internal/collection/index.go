// Package collection maintains a local cache of the community collection
// index — the catalog of elements published in the curatormcp/collection
// repository.
//
// The cache is stale-while-revalidate: callers always get the best data
// available right now, and an expired (or nearly expired) entry triggers a
// background refresh instead of blocking the caller. Refreshes are fetched
// with conditional requests (ETag / If-Modified-Since), retried with jittered
// exponential backoff, and guarded by a circuit breaker so a remote outage
// doesn't turn into a retry storm. The entry is persisted to disk with a
// checksum so a restarted process can start warm.
package collection

import (
	"encoding/json"
	"fmt"
)

// CollectionIndex is the payload served by the collection repository at
// public/collection-index.json.
type CollectionIndex struct {
	Version       string                  `json:"version"`
	Generated     string                  `json:"generated"`
	TotalElements int                     `json:"total_elements"`
	Index         map[string][]IndexEntry `json:"index"`
	Metadata      IndexMetadata           `json:"metadata"`
}

// IndexEntry describes one element published in the collection.
type IndexEntry struct {
	Path        string   `json:"path"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SHA         string   `json:"sha,omitempty"`
	Created     string   `json:"created,omitempty"`
}

// IndexMetadata carries build statistics from the index builder.
type IndexMetadata struct {
	BuildTimeMS    int    `json:"build_time_ms,omitempty"`
	FileCount      int    `json:"file_count,omitempty"`
	SkippedFiles   int    `json:"skipped_files,omitempty"`
	BuilderVersion string `json:"builder_version,omitempty"`
}

// ParseIndex decodes and structurally validates an index document. Every
// required top-level field must be present and correctly typed before the
// result is accepted into the cache — a truncated or mangled upstream file
// must never replace good cached data.
func ParseIndex(data []byte) (*CollectionIndex, error) {
	var raw struct {
		Version       *string                 `json:"version"`
		Generated     *string                 `json:"generated"`
		TotalElements *int                    `json:"total_elements"`
		Index         map[string][]IndexEntry `json:"index"`
		Metadata      *IndexMetadata          `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing collection index: %w", err)
	}

	switch {
	case raw.Version == nil:
		return nil, fmt.Errorf("invalid collection index: missing version")
	case raw.Generated == nil:
		return nil, fmt.Errorf("invalid collection index: missing generated timestamp")
	case raw.TotalElements == nil:
		return nil, fmt.Errorf("invalid collection index: missing total_elements")
	case raw.Index == nil:
		return nil, fmt.Errorf("invalid collection index: missing index")
	case raw.Metadata == nil:
		return nil, fmt.Errorf("invalid collection index: missing metadata")
	}

	return &CollectionIndex{
		Version:       *raw.Version,
		Generated:     *raw.Generated,
		TotalElements: *raw.TotalElements,
		Index:         raw.Index,
		Metadata:      *raw.Metadata,
	}, nil
}
