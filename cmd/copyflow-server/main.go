// cmd/copyflow-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"copyflow/internal/analytics"
	"copyflow/internal/backend/openai"
	"copyflow/internal/common/config"
	"copyflow/internal/common/database"
	"copyflow/internal/common/logger"
	"copyflow/internal/common/observability"
	"copyflow/internal/generation/orchestrator"
	"copyflow/internal/generation/router"
	"copyflow/internal/history"
	"copyflow/internal/ratelimit"
	"copyflow/internal/server"
	"copyflow/internal/usage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting copyflow server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	if cfg.OpenAI.APIKey == "" {
		// Tolerated at startup so the health endpoint stays up; generation
		// requests will answer 500 until a key is configured.
		zapLog.Warn("OPENAI_API_KEY is not set, generation requests will fail")
	}

	obs := observability.New("copyflow-server")
	defer obs.Shutdown()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Generation pipeline ---
	registry := router.NewRegistry(cfg.OpenAI.Assistants, cfg.OpenAI.UniversalAssistant)
	selector := router.NewSelector(registry)

	assistantBackend := openai.NewAssistantClient(openai.AssistantConfig{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		PollInterval: config.GetDuration(cfg.Generation.PollInterval),
	}, log)

	chatBackend := openai.NewChatClient(openai.ChatConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}, log)

	// --- Analytics (Elasticsearch) ---
	var recorder analytics.Recorder = analytics.NopRecorder{}
	if cfg.Analytics.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch initialization")
		if err != nil {
			zapLog.Warn("Analytics disabled, Elasticsearch unavailable", zap.Error(err))
		} else {
			recorder = analytics.NewESRecorder(esClient.Client, cfg.Analytics.Index, log)
		}
	}

	orch := orchestrator.New(selector, assistantBackend, chatBackend, recorder, orchestrator.Config{
		AttemptTimeout: config.GetDuration(cfg.Generation.AttemptTimeout),
	}, log)

	// --- Optional collaborators ---
	opts := server.Options{}

	var redisClient *database.RedisClient
	needsRedis := cfg.RateLimit.Enabled && cfg.RateLimit.Store == "redis"
	if needsRedis {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			return err
		}, 5, 2*time.Second, zapLog, "Redis initialization")
		if err != nil {
			zapLog.Warn("Redis unavailable, falling back to in-memory rate limiting", zap.Error(err))
			redisClient = nil
		}
	}

	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		if redisClient != nil {
			store = ratelimit.NewRedisStore(redisClient.GetClient())
		} else {
			memStore := ratelimit.NewMemoryStore()
			store = memStore
			go func() {
				ticker := time.NewTicker(config.GetDuration(cfg.RateLimit.CleanupInterval))
				defer ticker.Stop()
				for {
					select {
					case <-shutdownCtx.Done():
						return
					case now := <-ticker.C:
						memStore.Tick(now)
					}
				}
			}()
		}
		opts.Limiter = ratelimit.NewLimiter(store, int64(cfg.RateLimit.Limit), config.GetDuration(cfg.RateLimit.Window), log)
	}

	if redisClient != nil {
		opts.Usage = usage.NewTracker(redisClient.GetClient(), log)
	}

	if cfg.History.Enabled {
		var pgClient *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pgClient, err = database.NewPostgres(cfg.Database.Postgres)
			return err
		}, 5, 2*time.Second, zapLog, "PostgreSQL initialization")
		if err != nil {
			zapLog.Warn("History disabled, PostgreSQL unavailable", zap.Error(err))
		} else {
			defer pgClient.Close()
			store := history.NewStore(pgClient.GetDB(), log)
			if err := store.EnsureSchema(shutdownCtx); err != nil {
				zapLog.Warn("History schema setup failed", zap.Error(err))
			} else {
				opts.History = store
			}
		}
	}

	// --- HTTP server ---
	srv := server.New(cfg, orch, opts, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-shutdownCtx.Done()
	zapLog.Info("Shutdown signal received, draining connections...")

	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(drainCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	zapLog.Info("Copyflow server stopped gracefully")
}
