package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/TuniLagunero/phirst-bot/internal/ai"
	"github.com/TuniLagunero/phirst-bot/internal/alerts"
	"github.com/TuniLagunero/phirst-bot/internal/api/router"
	"github.com/TuniLagunero/phirst-bot/internal/bot"
	"github.com/TuniLagunero/phirst-bot/internal/catalog"
	appconfig "github.com/TuniLagunero/phirst-bot/internal/config"
	"github.com/TuniLagunero/phirst-bot/internal/events"
	"github.com/TuniLagunero/phirst-bot/internal/finance"
	"github.com/TuniLagunero/phirst-bot/internal/http/handlers"
	"github.com/TuniLagunero/phirst-bot/internal/leads"
	"github.com/TuniLagunero/phirst-bot/internal/messenger"
	"github.com/TuniLagunero/phirst-bot/internal/observability/metrics"
	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting phirst-bot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repositories: Postgres when configured, in-memory for local runs.
	var (
		leadRepo  leads.Repository
		houseRepo catalog.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadRepo = leads.NewPostgresRepository(pool)
		houseRepo = catalog.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		leadRepo = leads.NewInMemoryRepository()
		houseRepo = catalog.NewInMemoryRepository()
	}

	// Redis-backed replay guard, optional.
	var processed *events.ProcessedStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		processed = events.NewProcessedStore(client, cfg.EventDedupTTL)
	} else {
		logger.Warn("REDIS_ADDR not set, webhook replay deduplication disabled")
	}

	gateway := messenger.NewClient(messenger.ClientConfig{
		BaseURL:         cfg.GraphAPIBaseURL,
		AccessToken:     cfg.FBPageAccessToken,
		AgentInboxAppID: cfg.AgentInboxAppID,
		Timeout:         cfg.OutboundTimeout,
		Logger:          logger,
	})

	var assistant bot.Assistant
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiAssistant(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize gemini", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		assistant = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, free-text questions get the canned reply")
	}

	var notifier alerts.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = alerts.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.OutboundTimeout)
	} else {
		logger.Warn("telegram not configured, operator alerts disabled")
	}
	dispatcher := alerts.NewDispatcher(notifier, cfg.AlertCooldown, logger)

	engine := bot.NewEngine(bot.Config{
		Leads:   leadRepo,
		Catalog: houseRepo,
		Gateway: gateway,
		Alerts:  dispatcher,
		AI:      assistant,
		Finance: finance.Config{
			BankRateDefault:     cfg.BankRateDefault,
			PagibigRateDefault:  cfg.PagibigRateDefault,
			BankDPTermMonths:    cfg.BankDPTermMonths,
			PagibigDPTermMonths: cfg.PagibigDPTermMonths,
		},
		PageID:          cfg.FBPageID,
		AIFallbackReply: ai.CannedReply,
		Logger:          logger,
	})

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	var tracker handlers.ProcessedTracker
	if processed != nil {
		tracker = processed
	}
	webhook := handlers.NewWebhookHandler(cfg.FBAppSecret, cfg.FBVerifyToken, engine, tracker, webhookMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		Webhook:        webhook,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
