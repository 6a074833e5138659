package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gig-market/internal/config"
	"gig-market/internal/database"
	"gig-market/internal/handler"
	"gig-market/internal/level"
	"gig-market/internal/notify"
	"gig-market/internal/repository"
	"gig-market/internal/router"
	"gig-market/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting gig-market completion engine")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, logger)
	sellerRepo := repository.NewSellerRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)
	notifRepo := repository.NewNotificationRepository(pool, logger)

	// Load the level ladder: S3 with local fallback, or the compiled-in
	// default when no file is configured.
	ladder := level.Default()
	if cfg.Levels.FilePath != "" {
		fileLoader := level.NewFileLoader(logger)
		var ladderLoader level.Loader = fileLoader

		if cfg.Levels.S3Enabled {
			s3Loader, err := level.NewS3Loader(ctx, cfg.Levels.S3Bucket, cfg.Levels.S3Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
			} else {
				ladderLoader = level.NewFallbackLoader(s3Loader, fileLoader, cfg.Levels.S3Prefix, true, logger)
			}
		}

		ladder, err = ladderLoader.Load(ctx, cfg.Levels.FilePath)
		if err != nil {
			return fmt.Errorf("failed to load level ladder: %w", err)
		}
	}

	// Seed the ladder into seller_levels so level lookups resolve in-store.
	if err := sellerRepo.SeedLevels(ctx, ladder.Levels()); err != nil {
		return fmt.Errorf("failed to seed seller levels: %w", err)
	}
	logger.Info().Int("tiers", len(ladder.Levels())).Msg("level ladder seeded")

	// Initialize notification dispatcher
	dispatcher := notify.NewNopDispatcher()
	if cfg.AMQP.Enabled {
		amqpDispatcher, err := notify.NewAMQPDispatcher(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize AMQP dispatcher: %w", err)
		}
		dispatcher = amqpDispatcher
	}
	defer dispatcher.Close()

	// Initialize services
	clock := service.SystemClock()
	progressionService := service.NewProgressionService(sellerRepo, logger)
	completionService := service.NewCompletionService(
		orderRepo,
		notifRepo,
		progressionService,
		dispatcher,
		clock,
		service.CompletionConfig{
			RequestTTL: time.Duration(cfg.Completion.RequestTTLHours) * time.Hour,
			XPPerOrder: cfg.Completion.XPPerOrder,
		},
		logger,
	)
	reviewService := service.NewReviewService(reviewRepo, clock, logger)

	// Initialize HTTP handlers
	completionHandler := handler.NewCompletionHandler(completionService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	sellerHandler := handler.NewSellerHandler(progressionService, logger)

	// Initialize router
	mux := router.New(completionHandler, reviewHandler, sellerHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Periodic sweep: tidy the stored status of expired open requests. Lazy
	// checks in the resolve path remain authoritative either way.
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired, err := completionService.ExpireOpenRequests(ctx)
				if err != nil {
					logger.Error().Err(err).Msg("failed to expire open completion requests")
					continue
				}
				if expired > 0 {
					logger.Info().Int64("expired", expired).Msg("expired open completion requests")
				}
			}
		}
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		cancel()
		<-sweepDone

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
