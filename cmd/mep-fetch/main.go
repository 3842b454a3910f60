// Command mep-fetch retrieves a sample of MEP records from the EU
// Parliament website and prints them as a JSON report on stdout.
//
// The run always exits with code 0; consumers read the report's success
// flag instead of the exit status.
package main

import (
	"context"
	"os"
	"time"

	"github.com/openparl/mep-client/pkg/client"
	"github.com/openparl/mep-client/pkg/fetch"
	"github.com/openparl/mep-client/pkg/logging"
	"github.com/openparl/mep-client/pkg/mepapi"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultUserAgent = "mep-fetch/0.1.0 (https://github.com/openparl/mep-client)"

// runConfig collects the knobs the fetch run needs. Everything has a
// working default, so the command runs without any environment setup.
type runConfig struct {
	Redis     *redis.Client
	BaseURL   string
	UserAgent string
}

func main() {
	// Configuration from environment
	logCfg := logging.ProgressConfig()
	logCfg.Level = logging.LogLevel(getEnv("LOG_LEVEL", string(logging.LevelInfo)))
	logger := logging.Setup(logCfg)

	redisClient := connectRedis(getEnv("REDIS_URL", "localhost:6379"), logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	result := runFetch(context.Background(), runConfig{
		Redis:     redisClient,
		BaseURL:   getEnv("BASE_URL", client.DefaultBaseURL),
		UserAgent: getEnv("USER_AGENT", defaultUserAgent),
	}, logger)

	if err := fetch.WriteReport(os.Stdout, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write report")
	}
}

// connectRedis dials Redis and verifies the connection. A missing Redis
// is not fatal: the client degrades to uncached operation with
// in-process politeness state.
func connectRedis(addr string, logger zerolog.Logger) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn().
			Err(err).
			Str("addr", addr).
			Msg("Redis not reachable, running without response cache")
		redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", addr).Msg("Connected to Redis")
	return redisClient
}

// runFetch wires the HTTP client, the website source and the
// orchestrator, and executes one fetch run.
func runFetch(ctx context.Context, cfg runConfig, logger zerolog.Logger) fetch.Result {
	httpClient, err := client.New(client.Config{
		Redis:     cfg.Redis,
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create HTTP client")
		return fetch.FailureResult(err.Error())
	}
	defer httpClient.Close()

	source := mepapi.New(httpClient)
	orchestrator := fetch.NewOrchestrator(source)

	return orchestrator.Run(ctx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
