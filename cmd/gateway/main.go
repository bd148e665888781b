package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/octobees/lead-gateway/internal/config"
	"github.com/octobees/lead-gateway/internal/handler"
	"github.com/octobees/lead-gateway/internal/router"
	"github.com/octobees/lead-gateway/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if len(cfg.AllowedOrigins) == 0 {
		log.Printf("ALLOWED_ORIGINS is empty; only requests without an Origin header will be accepted")
	}

	webhook := handler.NewWebhookClient(nil, cfg.Webhook)
	enricher := service.NewEnricher(cfg.ClientIPHeader)

	e := router.New(cfg, router.Handlers{
		Submit: handler.NewSubmitHandler(webhook, enricher),
		Health: handler.NewHealthHandler(time.Now),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("lead gateway listening on :%s", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
