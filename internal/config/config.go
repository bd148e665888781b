package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultClientIPHeader = "CF-Connecting-IP"

// WebhookConfig describes the downstream automation endpoint.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
	// IDTokenAudience switches the forwarder to a Google ID-token client when set.
	IDTokenAudience string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port           string
	AllowedOrigins []string
	ClientIPHeader string
	Webhook        WebhookConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(os.Getenv("ALLOWED_ORIGINS")),
		ClientIPHeader: getEnv("CLIENT_IP_HEADER", defaultClientIPHeader),
		Webhook: WebhookConfig{
			URL:             strings.TrimSpace(os.Getenv("N8N_WEBHOOK_URL")),
			Secret:          os.Getenv("WORKER_SHARED_SECRET"),
			IDTokenAudience: strings.TrimSpace(os.Getenv("WEBHOOK_ID_TOKEN_AUDIENCE")),
		},
	}

	if cfg.Webhook.URL == "" {
		return nil, errors.New("N8N_WEBHOOK_URL is required")
	}
	if cfg.Webhook.Secret == "" {
		return nil, errors.New("WORKER_SHARED_SECRET is required")
	}

	timeout, err := parseTimeout(os.Getenv("WEBHOOK_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT value: %w", err)
	}
	cfg.Webhook.Timeout = timeout

	return cfg, nil
}

// parseOrigins splits a comma-separated allow-list, dropping blank entries.
func parseOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

func parseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
