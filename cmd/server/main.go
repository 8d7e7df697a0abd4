package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	black76 "github.com/jwaldner/black76/black76_lib"
	"github.com/jwaldner/black76/internal/config"
	"github.com/jwaldner/black76/internal/handlers"
	"github.com/jwaldner/black76/internal/logger"
	"github.com/jwaldner/black76/internal/services"
	"github.com/jwaldner/black76/internal/treasury"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Always.Printf("Black-76 pricing server starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("VERBOSE LOGGING ENABLED - every calculation will be logged to %s\n", cfg.Logging.LogFile)
	}

	pricing, err := services.NewPricingService(cfg.Engine)
	if err != nil {
		log.Fatalf("Failed to initialize pricing service: %v", err)
	}
	logger.Always.Printf("EXECUTION MODE: %s (rational backend: %s, workers: %d)",
		pricing.Mode(), black76.RationalBackend, cfg.Engine.Workers)

	rates := treasury.NewClient(cfg.Rates.TreasuryURL, cfg.Rates.FallbackRate, time.Duration(cfg.Rates.CacheMinutes)*time.Minute)
	if cfg.Rates.TreasuryURL == "" {
		logger.Always.Printf("Treasury rate fetching disabled, default risk-free rate %.4f", cfg.Rates.FallbackRate)
	}

	pricingHandler := handlers.NewPricingHandler(pricing, services.NewRequestService(rates))

	r := mux.NewRouter()
	pricingHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		logger.Always.Printf("Server starting on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Always.Printf("shutting down server...")
		case <-ctx.Done():
			logger.Warn.Printf("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error.Printf("server exited with error: %v", err)
		os.Exit(1)
	}
}
