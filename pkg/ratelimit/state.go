// Package ratelimit implements crawl politeness for the Parliament website.
// It enforces a minimum interval between outgoing requests and honors
// Retry-After responses, sharing state across processes via Redis so that
// several fetchers behind one IP stay polite together.
package ratelimit

import (
	"time"
)

// Redis keys for shared politeness state.
const (
	RedisKeyLastRequest  = "mep:politeness:last_request"
	RedisKeyBlockedUntil = "mep:politeness:blocked_until"
)

// Politeness defaults.
const (
	// DefaultMinInterval is the minimum spacing between requests to the
	// Parliament website. One request per second is well below anything
	// the site would consider abusive.
	DefaultMinInterval = 1 * time.Second

	// DefaultRetryAfter is the block duration applied when a 429 response
	// carries no usable Retry-After header.
	DefaultRetryAfter = 60 * time.Second
)

// State represents the current crawl politeness state.
// This state is shared across all client instances via Redis.
type State struct {
	// LastRequest is when the most recent request was sent.
	LastRequest time.Time `json:"last_request"`

	// BlockedUntil is the end of a Retry-After block window.
	// Zero when no block is active.
	BlockedUntil time.Time `json:"blocked_until"`
}

// IsBlocked returns true while a Retry-After block window is active.
func (s *State) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// TimeUntilUnblocked returns the remaining duration of the block window.
// Returns 0 if no block is active.
func (s *State) TimeUntilUnblocked() time.Duration {
	d := time.Until(s.BlockedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// WaitFor returns how long a caller must wait before the next request is
// allowed under the given minimum interval. Returns 0 when the interval has
// already elapsed.
func (s *State) WaitFor(minInterval time.Duration) time.Duration {
	if s.LastRequest.IsZero() {
		return 0
	}
	wait := time.Until(s.LastRequest.Add(minInterval))
	if wait < 0 {
		return 0
	}
	return wait
}
