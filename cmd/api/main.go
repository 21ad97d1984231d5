package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solemate/internal/backend"
	"solemate/internal/config"
	"solemate/internal/coupon"
	"solemate/internal/database"
	"solemate/internal/handler"
	"solemate/internal/realtime"
	"solemate/internal/router"
	"solemate/internal/store"
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
	logger.Info().Msg("starting solemate API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the change-feed connection pool
	pool, err := database.NewPool(ctx, cfg.Realtime, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize change feed pool: %w", err)
	}
	defer pool.Close()

	// Start the row-change listener
	listener := realtime.NewListener(pool, logger)
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("change feed listener stopped")
		}
	}()

	// Initialize the hosted backend client
	api := backend.New(cfg.Backend, logger)

	// Initialize the coupon resolver
	resolver := coupon.NewResolver(api, logger)

	// Initialize the per-session store manager
	manager := store.NewManager(api, resolver, listener, logger)
	defer manager.Shutdown()

	// Initialize HTTP handlers
	catalogHandler := handler.NewCatalogHandler(manager, logger)
	cartHandler := handler.NewCartHandler(manager, logger)
	orderHandler := handler.NewOrderHandler(manager, logger)
	wishlistHandler := handler.NewWishlistHandler(manager, logger)
	couponHandler := handler.NewCouponHandler(manager, resolver, logger)
	sessionHandler := handler.NewSessionHandler(manager, logger)

	// Initialize router
	mux := router.New(catalogHandler, cartHandler, orderHandler,
		wishlistHandler, couponHandler, sessionHandler, api, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
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
