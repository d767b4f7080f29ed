// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-checkout/internal/config"
	"subscription-checkout/internal/infra/billing"
	"subscription-checkout/internal/infra/logging"
	"subscription-checkout/internal/infra/metrics"
	red "subscription-checkout/internal/infra/redis"
	"subscription-checkout/internal/infra/web"
	"subscription-checkout/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	sessionRepo := red.NewSessionRepo(redisClient, cfg.Session.TTL)
	catalogCache := red.NewCatalogCache(redisClient, cfg.Catalog.TTL)

	// ---- Billing API client ----
	billingAPI := billing.NewClient(cfg.Billing.BaseURL, cfg.Billing.Timeout, logger)

	// ---- Use cases ----
	catalogUC := usecase.NewCatalogUseCase(billingAPI, catalogCache, logger)
	flowUC := usecase.NewFlowUseCase(sessionRepo, catalogUC, billingAPI, logger, cfg.Session.TTL)

	// ---- HTTP server ----
	metrics.MustRegister()
	server := web.NewServer(flowUC, catalogUC, billingAPI, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("billing", cfg.Billing.BaseURL).Msg("checkout service listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
