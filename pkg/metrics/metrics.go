// Package metrics provides the centralized Prometheus metrics registry for
// the MEP client. All metrics are defined in their respective packages
// (client, cache, ratelimit, fetch) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the MEP client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Politeness Metrics (pkg/ratelimit):
//   - mep_politeness_wait_seconds (Histogram): Time spent waiting for the politeness interval
//   - mep_rate_limit_blocks_total (Counter): Requests blocked by an active Retry-After window
//   - mep_retry_after_seconds (Gauge): Remaining seconds of the active Retry-After block window
//
// Cache Metrics (pkg/cache):
//   - mep_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - mep_cache_misses_total (Counter): Cache misses
//   - mep_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - mep_304_responses_total (Counter): 304 Not Modified responses
//   - mep_conditional_requests_total (Counter): Conditional requests sent with validators
//   - mep_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - mep_requests_total{path, status} (Counter): Total requests by path and HTTP status
//   - mep_request_duration_seconds{path} (Histogram): Request duration by path
//   - mep_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - mep_retries_total{error_class} (Counter): Retry attempts by error class
//   - mep_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - mep_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Fetch Metrics (pkg/fetch):
//   - mep_fetch_runs_total{status} (Counter): Fetch runs by outcome (success, failed)
//   - mep_records_fetched_total (Counter): MEP records fetched successfully
//   - mep_record_failures_total (Counter): MEP records skipped due to per-record failures
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(mep_cache_hits_total[5m])) /
//   (sum(rate(mep_cache_hits_total[5m])) + sum(rate(mep_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(mep_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(mep_request_duration_seconds_bucket[5m]))
//
//   # Record Skip Rate
//   rate(mep_record_failures_total[5m]) / rate(mep_records_fetched_total[5m])
