/*
Package main is the entry point for the Chatter server.

It is responsible for loading configuration, initializing the global logging
system, wiring the broadcast core (registry, membership, group, service, event
router), optionally attaching the message-history side channel, and running the
HTTP server with graceful shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatter/internal/app/broadcast"
	"chatter/internal/app/history"
	"chatter/internal/configs"
	"chatter/internal/handler"
	"chatter/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("delivery_timeout", cfg.DeliveryTimeout).
		Bool("history_enabled", cfg.HistoryDatabaseDSN != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the broadcast core
	registry := broadcast.NewRegistry(cfg.DeliveryTimeout)
	members := broadcast.NewMembership()
	group := broadcast.NewGroup(registry)
	service := broadcast.NewService(members, group)
	events := broadcast.NewRouter(service)

	deps := &handler.AppDeps{
		Config:   cfg,
		Registry: registry,
		Service:  service,
		Events:   events,
	}

	// Optional message-history side channel
	if cfg.HistoryDatabaseDSN != "" {
		pool, err := history.NewPool(cfg.HistoryDatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize history database")
		}

		store := history.NewStore(pool)
		defer store.Close()

		service.SubscribeEvents(store.RecordEvent)
		deps.History = store

		logx.Info("Message history enabled")
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Chatter Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
