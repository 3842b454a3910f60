package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for politeness tracking.
var (
	mepPolitenessWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mep_politeness_wait_seconds",
		Help:    "Time spent waiting for the politeness interval before requests",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
	})

	mepRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mep_rate_limit_blocks_total",
		Help: "Total number of requests blocked by an active Retry-After window",
	})

	mepRetryAfterSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mep_retry_after_seconds",
		Help: "Remaining seconds of the active Retry-After block window",
	})
)

// Tracker gates outgoing requests to keep the crawl polite.
// With a Redis client the state is shared across processes; without one the
// tracker falls back to in-process state.
type Tracker struct {
	redis       *redis.Client
	minInterval time.Duration
	logger      zerolog.Logger

	mu    sync.Mutex
	local State
}

// NewTracker creates a new politeness tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:       redisClient,
		minInterval: DefaultMinInterval,
		logger:      logger,
	}
}

// SetMinInterval overrides the minimum request spacing.
func (t *Tracker) SetMinInterval(d time.Duration) {
	if d > 0 {
		t.minInterval = d
	}
}

// GetState retrieves the current politeness state.
// Returns a zero (unrestricted) state when no data exists.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	if t.redis == nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		state := t.local
		return &state, nil
	}

	lastMillis, err := t.redis.Get(ctx, RedisKeyLastRequest).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last request: %w", err)
	}

	blockedMillis, err := t.redis.Get(ctx, RedisKeyBlockedUntil).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get blocked until: %w", err)
	}

	state := &State{}
	if lastMillis > 0 {
		state.LastRequest = time.UnixMilli(lastMillis)
	}
	if blockedMillis > 0 {
		state.BlockedUntil = time.UnixMilli(blockedMillis)
	}

	return state, nil
}

// ShouldAllowRequest checks whether a request may proceed.
// Returns false while a Retry-After block window is active. Otherwise it
// sleeps out the remaining politeness interval, records the request, and
// returns true.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get politeness state: %w", err)
	}

	// Blocked: the site told us to back off
	if state.IsBlocked() {
		remaining := state.TimeUntilUnblocked()

		t.logger.Error().
			Dur("remaining", remaining).
			Msg("Retry-After window active - blocking request")

		mepRateLimitBlocksTotal.Inc()
		mepRetryAfterSeconds.Set(remaining.Seconds())
		return false, nil
	}
	mepRetryAfterSeconds.Set(0)

	// Space requests out to the minimum interval
	if wait := state.WaitFor(t.minInterval); wait > 0 {
		t.logger.Debug().
			Dur("wait", wait).
			Msg("Waiting for politeness interval")

		mepPolitenessWaitSeconds.Observe(wait.Seconds())

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(wait):
		}
	}

	if err := t.recordRequest(ctx); err != nil {
		return false, err
	}

	return true, nil
}

// recordRequest stamps the shared state with the current time.
func (t *Tracker) recordRequest(ctx context.Context) error {
	now := time.Now()

	if t.redis == nil {
		t.mu.Lock()
		t.local.LastRequest = now
		t.mu.Unlock()
		return nil
	}

	if err := t.redis.Set(ctx, RedisKeyLastRequest, now.UnixMilli(), 0).Err(); err != nil {
		return fmt.Errorf("store last request: %w", err)
	}
	return nil
}

// UpdateFromResponse inspects a response for rate limit signals.
// A 429 status opens a block window sized by the Retry-After header
// (DefaultRetryAfter when absent or unparseable).
func (t *Tracker) UpdateFromResponse(ctx context.Context, resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	blockedUntil := time.Now().Add(retryAfter)

	t.logger.Warn().
		Dur("retry_after", retryAfter).
		Time("blocked_until", blockedUntil).
		Msg("Received 429 from Parliament website - opening block window")

	mepRetryAfterSeconds.Set(retryAfter.Seconds())

	if t.redis == nil {
		t.mu.Lock()
		t.local.BlockedUntil = blockedUntil
		t.mu.Unlock()
		return nil
	}

	if err := t.redis.Set(ctx, RedisKeyBlockedUntil, blockedUntil.UnixMilli(), retryAfter).Err(); err != nil {
		return fmt.Errorf("store blocked until: %w", err)
	}
	return nil
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return DefaultRetryAfter
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return DefaultRetryAfter
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		d := time.Until(at)
		if d > 0 {
			return d
		}
	}

	return DefaultRetryAfter
}
