// Package client provides the HTTP client for the EU Parliament website with
// politeness gating, caching, and error handling.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openparl/mep-client/pkg/cache"
	"github.com/openparl/mep-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	mepRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mep_requests_total",
		Help: "Total requests to the Parliament website by path and status",
	}, []string{"path", "status"})

	mepRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mep_request_duration_seconds",
		Help:    "Request duration in seconds by path",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"path"})

	mepErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mep_errors_total",
		Help: "Total request errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// DefaultBaseURL is the EU Parliament website.
const DefaultBaseURL = "https://www.europarl.europa.eu"

// Client is the HTTP client used for all Parliament website requests.
type Client struct {
	httpClient *http.Client
	redis      *redis.Client
	politeness *ratelimit.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis client for shared caching and politeness state.
	// Optional: without it the client runs uncached with in-process
	// politeness state.
	Redis *redis.Client

	// BaseURL of the Parliament website (default: DefaultBaseURL).
	BaseURL string

	// User-Agent header identifying the crawler.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// MinRequestInterval is the politeness spacing between requests.
	MinRequestInterval time.Duration

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, userAgent string) Config {
	return Config{
		Redis:              redisClient,
		BaseURL:            DefaultBaseURL,
		UserAgent:          userAgent,
		MinRequestInterval: ratelimit.DefaultMinInterval,
		RequestTimeout:     30 * time.Second,
		MaxRetries:         3,
		InitialBackoff:     1 * time.Second,
	}
}

// New creates a new Parliament website client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	// Initialize logger
	logger := log.With().Str("component", "mep-client").Logger()

	// Create politeness tracker (works with or without Redis)
	politeness := ratelimit.NewTracker(cfg.Redis, logger)
	if cfg.MinRequestInterval > 0 {
		politeness.SetMinInterval(cfg.MinRequestInterval)
	}

	// Create cache manager when Redis is available
	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	} else {
		logger.Warn().Msg("No Redis configured - running without shared response cache")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		redis:      cfg.Redis,
		politeness: politeness,
		cache:      cacheManager,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Do performs an HTTP request with politeness gating, caching, and error handling.
// This is the core request method that orchestrates all client features.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	path := req.URL.Path

	// Start request timing
	startTime := time.Now()
	defer func() {
		mepRequestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Politeness gate
	allowed, err := c.politeness.ShouldAllowRequest(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Politeness check failed")
		return nil, fmt.Errorf("politeness check: %w", err)
	}
	if !allowed {
		c.logger.Warn().
			Str("path", path).
			Msg("Request blocked by politeness gate")
		mepRequestsTotal.WithLabelValues(path, "blocked").Inc()
		return nil, ErrBlocked
	}

	// Step 2: Check cache
	var cachedEntry *cache.Entry
	cacheKey := cache.KeyForURL(req.URL)

	if c.cache != nil {
		cachedEntry, err = c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
	}

	// Step 3: Make conditional request if cache hit
	if cachedEntry != nil && cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("path", path).
			Str("etag", cachedEntry.ETag).
			Msg("Making conditional request")
	}

	// Step 4: Set identification headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")

	// Step 5: Execute HTTP request with retry logic
	c.logger.Debug().
		Str("path", path).
		Str("method", req.Method).
		Msg("Executing request")

	var resp *http.Response
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		// Handle network errors
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("path", path).Msg("HTTP request failed")
			errClass = c.classifyError(nil, reqErr)
			mepErrorsTotal.WithLabelValues(string(errClass)).Inc()
			mepRequestsTotal.WithLabelValues(path, "network_error").Inc()
			return reqErr
		}

		// Record rate limit signals (429 Retry-After)
		if err := c.politeness.UpdateFromResponse(ctx, resp); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update politeness state from response")
		}

		// Handle 304 Not Modified (not an error, return success)
		if resp.StatusCode == http.StatusNotModified {
			return nil
		}

		// Handle HTTP errors
		if resp.StatusCode >= 400 {
			errClass = c.classifyError(resp, nil)
			mepErrorsTotal.WithLabelValues(string(errClass)).Inc()
			mepRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("path", path).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Request error")

			// Retriable errors become an error value so the retry loop runs
			if shouldRetry(errClass) {
				siteErr := &SiteError{
					StatusCode: resp.StatusCode,
					ErrorClass: errClass,
					Message:    resp.Status,
				}
				resp.Body.Close() // Close the body before retrying
				return siteErr
			}

			// Don't retry client errors - return success (let caller handle status)
			return nil
		}

		// Success
		mepRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, func(err error) ErrorClass {
		return errClass
	})

	// Handle retry exhaustion
	if retryErr != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, retryErr
	}

	// Step 6: Handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified {
		c.logger.Debug().Str("path", path).Msg("304 Not Modified - using cache")
		mepRequestsTotal.WithLabelValues(path, "304").Inc()
		cache.NotModifiedResponses.Inc()

		// Update cache TTL from fresh caching headers
		if c.cache != nil && cachedEntry != nil {
			if freshEntry, err := cache.ResponseToEntry(resp); err == nil && freshEntry.TTL() > 0 {
				if err := c.cache.UpdateTTL(ctx, cacheKey, freshEntry.Expires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
				}
			}
		}

		// Return cached response
		resp.Body.Close()
		return cache.EntryToResponse(cachedEntry), nil
	}

	// Step 7: Update cache on success
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if entry.TTL() > 0 {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			} else {
				c.logger.Debug().
					Str("path", path).
					Dur("ttl", entry.TTL()).
					Msg("Cached response")
			}
		}
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// Get performs a GET request against a Parliament website path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// BaseURL returns the configured website base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Close closes the client and releases resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager (for testing).
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
