package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached response.
type Key struct {
	// Path is the URL path (e.g., "/meps/en/124936")
	Path string

	// QueryParams are the query parameters, if any
	QueryParams url.Values
}

// KeyForURL builds a cache key from a parsed request URL.
func KeyForURL(u *url.URL) Key {
	return Key{
		Path:        u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: mep:path:query1=val1:query2=val2
//
// Example:
//
//	mep:meps/en/124936:lang=en
func (k Key) String() string {
	parts := []string{"mep"}

	// Add path (normalized)
	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	// Add query params (sorted for determinism)
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
