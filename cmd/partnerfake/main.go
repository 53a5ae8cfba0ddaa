// Command partnerfake serves the in-memory partner for local runs and demos.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propex/internal/partner/partnertest"
	"propex/internal/platform/httpserver"
	"propex/internal/platform/logger"
)

func main() {
	log := logger.New(os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))

	addr := envOr("PARTNER_FAKE_ADDR", ":9090")
	fake := partnertest.New(envOr("PARTNER_API_KEY", "dev-key"), envOr("PARTNER_API_SECRET", "dev-secret"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("partner fake listening", "addr", addr)
	if err := httpserver.Run(ctx, httpserver.New(addr, fake.Handler()), 5*time.Second); err != nil {
		log.Error("partner fake stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
