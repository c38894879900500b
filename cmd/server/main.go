package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"batepapo/internal/clock"
	"batepapo/internal/config"
	"batepapo/internal/database"
	"batepapo/internal/handlers"
	"batepapo/internal/services"
	"batepapo/internal/websocket"
	"batepapo/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize live feed hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	// Initialize services
	clk := clock.Real{}
	messageService := services.NewMessageService(db, clk, hub)
	participantService := services.NewParticipantService(db, clk, messageService)
	feedService := services.NewFeedService(db)
	presenceService := services.NewPresenceService(db, clk, messageService, cfg.Presence.Timeout)

	stopSweep := func() {}
	if cfg.Presence.SweepEnabled {
		logger.Info("Evicting participants idle for %s, checking every %s", cfg.Presence.Timeout, cfg.Presence.SweepInterval)
		stopSweep = presenceService.Start(ctx, cfg.Presence.SweepInterval)
	}

	// Setup routes
	mux := http.NewServeMux()
	handlers.SetupRoutes(mux,
		handlers.NewParticipantHandlers(participantService),
		handlers.NewMessageHandlers(messageService, feedService),
		handlers.NewStatusHandlers(presenceService),
		handlers.NewWebSocketHandlers(participantService, hub),
		handlers.NewHealthHandlers(db),
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handlers.CORSMiddleware(cfg.Server.AllowedOrigin, handlers.LoggingMiddleware(mux)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.GlobalLogger.Slog().Handler(), slog.LevelError),
	}

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	printAPIEndpoints()

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	select {
	case <-ctx.Done():
		logger.Info("Server shutting down...")
	case err := <-errChan:
		logger.Error("Server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server: %v", err)
	}

	// Stop the sweeper before the deferred store Close.
	stopSweep()
	logger.Info("Server stopped")
}

func printAPIEndpoints() {
	logger.Info("🔗 API endpoints:")
	logger.Info("   POST /participants")
	logger.Info("   GET  /participants")
	logger.Info("   POST /messages")
	logger.Info("   GET  /messages?limit=")
	logger.Info("   POST /status")
	logger.Info("   GET  /messages/live (websocket)")
	logger.Info("   GET  /healthz")
}
