package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"news_mirror/internal/config"
	"news_mirror/internal/publisher"
	"news_mirror/internal/scheduler"
	"news_mirror/internal/server"
	"news_mirror/internal/service"
	"news_mirror/internal/source/newsdata"
	"news_mirror/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if !cfg.API.Configured() {
		logger.Warn("news api key is not set; live routes answer 503 and sync is disabled")
	}

	// Initialize newsdata.io client
	source := newsdata.New(newsdata.Config{
		BaseURL:        cfg.API.BaseURL,
		Key:            cfg.API.Key,
		Timeout:        cfg.API.Timeout,
		MaxAttempts:    cfg.API.Retry.MaxAttempts,
		InitialBackoff: cfg.API.Retry.InitialBackoff,
		MaxBackoff:     cfg.API.Retry.MaxBackoff,
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var articleSource service.ArticleSource
	if cfg.Server.Profile == config.ProfileLive {
		articleSource = service.NewLiveSource(source, cfg.API.Configured())
	} else {
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")

		articleStore := postgres.NewArticleStore(db, logger)
		syncLogStore := postgres.NewSyncLogStore(db)

		var pub service.Publisher
		if cfg.RabbitMQ.Enabled {
			rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
				URL:        cfg.RabbitMQ.URL,
				Exchange:   cfg.RabbitMQ.Exchange,
				RoutingKey: cfg.RabbitMQ.RoutingKey,
				QueueName:  cfg.RabbitMQ.QueueName,
			}, logger)
			if err != nil {
				logger.Error("failed to connect to rabbitmq", "error", err)
				os.Exit(1)
			}
			defer rabbitMQ.Close()
			pub = rabbitMQ
		}

		// No key means no guard: the mirror serves whatever it holds.
		var syncer service.Syncer
		if cfg.API.Configured() {
			guard := service.NewSyncGuard(source, articleStore, syncLogStore, pub, logger, cfg.Sync)
			syncer = guard

			sched := scheduler.NewScheduler(guard, cfg.Sync.Interval, logger)
			go func() {
				if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("scheduler error", "error", err)
				}
			}()
		}

		articleSource = service.NewMirrorSource(syncer, articleStore, logger)
	}

	handler := server.New(articleSource, server.Options{
		Logger:   logger,
		Timeout:  cfg.Server.Timeout,
		BasePath: cfg.Server.BasePath,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting news server",
			"address", cfg.Server.Address,
			"profile", cfg.Server.Profile,
			"source", source.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
