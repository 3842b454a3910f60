// Package cache provides response caching for the Parliament website with a
// Redis backend.
//
// The cache manager implements polite HTTP caching with the following features:
//
// - Honors Cache-Control max-age and Expires headers
// - ETag support for conditional requests (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Automatic TTL management based on response freshness
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager
//	manager := cache.NewManager(redisClient)
//
//	// Create cache key
//	key := cache.Key{
//		Path: "/meps/en/124936",
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the website
//	}
//
// # HTTP Response Caching
//
//	// Convert HTTP response to cache entry
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//
//	// Store in cache
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Conditional Requests
//
//	// Check if we should make a conditional request
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// Make request - server returns 304 if not modified
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - mep_cache_hits_total{layer="redis"} - Cache hits
//   - mep_cache_misses_total - Cache misses
//   - mep_cache_size_bytes{layer="redis"} - Cache size
//   - mep_304_responses_total - Conditional request successes
//   - mep_cache_errors_total{operation} - Cache operation errors
//
// # Politeness
//
// Caching profile pages keeps repeat runs from hammering the Parliament
// website: a run that re-fetches the same sample revalidates cached entries
// with conditional requests instead of full downloads.
package cache
