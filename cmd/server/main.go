package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gmail-analytics/config"
	"gmail-analytics/internal/api"
	"gmail-analytics/internal/auth"
	"gmail-analytics/internal/credential"
	"gmail-analytics/internal/mailbox"
	"gmail-analytics/pkg/logger"
	"gmail-analytics/pkg/mq"
	"gmail-analytics/pkg/redis"
)

type eventPublisher interface {
	api.EventPublisher
	Close()
}

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.EphemeralSessionSecret {
		logger.Warn("SESSION_SECRET not set, using a per-process secret; sessions end on restart")
	}

	ctx := context.Background()

	// 2. OAuth flow
	flow := auth.NewGoogleFlow(auth.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURI,
		AuthURL:      cfg.Google.AuthURL,
		TokenURL:     cfg.Google.TokenURL,
	})

	// 3. Credential repository
	var repo credential.Repository
	switch cfg.Credential.Backend {
	case config.BackendRedis:
		rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Redis initialization failed", zap.Error(err))
		}
		defer rdb.Close()

		sealer, err := credential.NewSealer(cfg.Session.Secret)
		if err != nil {
			logger.Fatal("Failed to init credential sealer", zap.Error(err))
		}
		repo = credential.NewRedisRepository(rdb, sealer, cfg.Session.TTL, logger)
	default:
		repo = credential.NewMemoryRepository()
	}
	logger.Info("Credential backend ready", zap.String("backend", cfg.Credential.Backend))

	store := credential.NewStore(repo, flow, logger)

	// 4. Event publisher (optional)
	var publisher eventPublisher = mq.NopPublisher{}
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			logger.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		publisher = p
	}
	defer publisher.Close()

	// 5. Handlers and router
	sessions := api.NewSessionManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.CookieName, cfg.Session.Secure)
	factory := mailbox.NewGmailFactory(cfg.Gmail.Endpoint)

	router := api.NewRouter(
		api.NewAuthHandler(flow, store, sessions, logger),
		api.NewAnalyticsHandler(factory, logger),
		api.NewMailHandler(factory, publisher, logger),
		sessions,
		store,
		cfg.CORS.FrontendOrigin,
		logger,
	)

	// 6. Run server
	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		logger.Info("Starting Gmail analytics API", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logger.Info("HTTP server stopped")
	}
}
