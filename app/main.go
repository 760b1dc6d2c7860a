package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calcomb/cal-comb/app/api"
	"github.com/calcomb/cal-comb/app/cache"
	"github.com/calcomb/cal-comb/app/calendar"
	"github.com/calcomb/cal-comb/app/cfg"
	"github.com/calcomb/cal-comb/app/config"
	"github.com/calcomb/cal-comb/app/database"
	"github.com/calcomb/cal-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Cal Comb server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	historyRepo := database.NewHistoryRepository(db)

	store, err := cache.NewStore(appCfg.CacheDir)
	if err != nil {
		slog.Error("Failed to initialize cache store", "dir", appCfg.CacheDir, "error", err)
		os.Exit(1)
	}

	resolver := config.NewLoader(appCfg.ConfigDir)
	if names, err := resolver.List(); err != nil {
		slog.Warn("Failed to list configurations", "dir", appCfg.ConfigDir, "error", err)
	} else {
		slog.Info("Discovered configurations", "count", len(names))
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.FetchTimeout) * time.Second,
	}

	loader := calendar.NewLoader(store, httpClient, appCfg.UserAgent)
	processor := calendar.NewProcessor(resolver, loader, store)

	slog.Info("Starting background scheduler")
	scheduler := tasks.NewScheduler(resolver, loader, processor, store, historyRepo)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(processor, resolver, historyRepo)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
