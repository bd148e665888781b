package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/octobees/lead-gateway/internal/config"
	"github.com/octobees/lead-gateway/internal/entity"
)

const (
	headerLeadSecret = "X-Lead-Secret"
	maxErrorBody     = 4 << 10
	maxDrainBody     = 64 << 10
)

// WebhookPoster relays an enriched lead downstream.
type WebhookPoster interface {
	Forward(ctx context.Context, envelope entity.ForwardEnvelope, requestID string) error
}

// WebhookClient posts envelopes to the automation webhook. One attempt per call.
type WebhookClient struct {
	client *http.Client
	url    string
	secret string
}

// NewWebhookClient builds a webhook client. When client is nil and an ID token
// audience is configured, it tries a Google ID-token client first so receivers
// behind Cloud Run IAM accept the call.
func NewWebhookClient(client *http.Client, cfg config.WebhookConfig) *WebhookClient {
	if cfg.URL == "" {
		panic("webhook url must not be empty")
	}
	if client == nil {
		client = defaultHTTPClient(cfg)
	}
	return &WebhookClient{client: client, url: cfg.URL, secret: cfg.Secret}
}

func defaultHTTPClient(cfg config.WebhookConfig) *http.Client {
	if cfg.IDTokenAudience != "" {
		idc, err := idtoken.NewClient(context.Background(), cfg.IDTokenAudience)
		if err == nil {
			idc.Timeout = cfg.Timeout
			return idc
		}
		log.Printf("id token client unavailable, falling back to plain client: %v", err)
	}
	return &http.Client{Timeout: cfg.Timeout}
}

// Forward posts the envelope as JSON. Any transport failure or non-2xx status
// comes back as an error describing what happened.
func (c *WebhookClient) Forward(ctx context.Context, envelope entity.ForwardEnvelope, requestID string) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerLeadSecret, c.secret)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to forward to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, statusReason(resp))
		if detail := extractWebhookError(io.LimitReader(resp.Body, maxErrorBody)); detail != "" {
			msg += " (" + detail + ")"
		}
		return errors.New(msg)
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBody))
	return nil
}

func statusReason(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func extractWebhookError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

var _ WebhookPoster = (*WebhookClient)(nil)
