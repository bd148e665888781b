package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/lead-gateway/internal/config"
	"github.com/octobees/lead-gateway/internal/handler"
	"github.com/octobees/lead-gateway/internal/service"
)

const (
	allowedOrigin = "https://site.example.com"
	validLead     = `{"client_id":"c1","name":"Jane Doe","phone":"5551234567","message":"Hi","website":""}`
)

type webhookRecorder struct {
	mu       sync.Mutex
	status   int
	requests []recordedRequest
}

type recordedRequest struct {
	secret string
	body   map[string]any
}

func (w *webhookRecorder) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.requests)
}

func newGateway(t *testing.T, webhookStatus int) (*echo.Echo, *webhookRecorder) {
	t.Helper()

	rec := &webhookRecorder{status: webhookStatus}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{secret: r.Header.Get("X-Lead-Secret"), body: body})
		rec.mu.Unlock()
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		AllowedOrigins: []string{allowedOrigin, "http://localhost:3000"},
		ClientIPHeader: "CF-Connecting-IP",
		Webhook:        config.WebhookConfig{URL: server.URL, Secret: "shh"},
	}
	webhook := handler.NewWebhookClient(server.Client(), cfg.Webhook)
	e := New(cfg, Handlers{
		Submit: handler.NewSubmitHandler(webhook, service.NewEnricher(cfg.ClientIPHeader)),
		Health: handler.NewHealthHandler(nil),
	})
	return e, rec
}

func serve(e *echo.Echo, method, target, contentType, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRoundTrip(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationJSON, validLead, map[string]string{
		echo.HeaderOrigin:  allowedOrigin,
		"Referer":          allowedOrigin + "/contact",
		"CF-Connecting-IP": "203.0.113.5",
		"User-Agent":       "browser",
	})

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, allowedOrigin+"/thanks", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	require.Equal(t, 1, webhook.count())
	got := webhook.requests[0]
	assert.Equal(t, "shh", got.secret)
	assert.Equal(t, "c1", got.body["client_id"])
	assert.Equal(t, "Jane Doe", got.body["name"])
	assert.Equal(t, "203.0.113.5", got.body["ip"])
	assert.Equal(t, "browser", got.body["user_agent"])
	assert.NotContains(t, got.body, "website")
	_, err := time.Parse(service.TimestampLayout, got.body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestSubmitWithoutOriginIsAdmitted(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	form := url.Values{"client_id": {"c1"}, "name": {"Jane"}, "phone": {"5551234567"}, "message": {"Hi"}}
	rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationForm, form.Encode(), nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/thanks", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, 1, webhook.count())
}

func TestSubmitForbiddenOrigin(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationJSON, validLead, map[string]string{
		echo.HeaderOrigin: "https://evil.example",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", rec.Body.String())
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Zero(t, webhook.count())
}

func TestSubmitSpamIsSilentlyDropped(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	body := strings.Replace(validLead, `"website":""`, `"website":"http://bot.example"`, 1)
	rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationJSON, body, map[string]string{
		echo.HeaderOrigin: allowedOrigin,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Zero(t, webhook.count())
}

func TestSubmitValidationAndParseErrorsCarryCORS(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	tests := map[string]struct {
		contentType string
		body        string
		expect      string
	}{
		"validation": {contentType: echo.MIMEApplicationJSON, body: `{"client_id":"c1"}`, expect: "Missing required fields: client_id, name, phone, message"},
		"parse":      {contentType: echo.MIMETextPlain, body: "hello", expect: "Invalid request"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serve(e, http.MethodPost, "/submit", tt.contentType, tt.body, map[string]string{echo.HeaderOrigin: allowedOrigin})

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.Equal(t, tt.expect, payload["error"])
			assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		})
	}
	assert.Zero(t, webhook.count())
}

func TestSubmitUpstreamFailure(t *testing.T) {
	for _, status := range []int{http.StatusMultipleChoices, http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		e, webhook := newGateway(t, status)

		rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationJSON, validLead, map[string]string{echo.HeaderOrigin: allowedOrigin})

		assert.Equal(t, http.StatusBadGateway, rec.Code, "downstream status %d", status)
		assert.Equal(t, "Service temporarily unavailable", rec.Body.String())
		assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, 1, webhook.count())
	}
}

func TestSubmitUnreachableWebhook(t *testing.T) {
	cfg := &config.Config{
		AllowedOrigins: []string{allowedOrigin},
		Webhook:        config.WebhookConfig{URL: "http://127.0.0.1:1/webhook", Secret: "shh", Timeout: 2 * time.Second},
	}
	e := New(cfg, Handlers{
		Submit: handler.NewSubmitHandler(handler.NewWebhookClient(nil, cfg.Webhook), nil),
		Health: handler.NewHealthHandler(nil),
	})

	rec := serve(e, http.MethodPost, "/submit", echo.MIMEApplicationJSON, validLead, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthBypassesOriginGate(t *testing.T) {
	e, _ := newGateway(t, http.StatusOK)

	var last time.Time
	for _, origin := range []string{"", allowedOrigin, "https://evil.example"} {
		rec := serve(e, http.MethodGet, "/health", "", "", map[string]string{echo.HeaderOrigin: origin})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods))

		var payload map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, "ok", payload["status"])
		ts, err := time.Parse(service.TimestampLayout, payload["timestamp"])
		require.NoError(t, err)
		assert.False(t, ts.Before(last))
		last = ts
	}
}

func TestPreflightOnAnyPath(t *testing.T) {
	e, _ := newGateway(t, http.StatusOK)

	for _, path := range []string{"/submit", "/health", "/does/not/exist"} {
		rec := serve(e, http.MethodOptions, path, "", "", map[string]string{echo.HeaderOrigin: allowedOrigin})
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
		assert.Equal(t, allowedOrigin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), path)
		assert.Equal(t, "86400", rec.Header().Get(echo.HeaderAccessControlMaxAge), path)
		assert.Zero(t, rec.Body.Len(), path)
	}

	rec := serve(e, http.MethodOptions, "/submit", "", "", map[string]string{echo.HeaderOrigin: "https://evil.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = serve(e, http.MethodOptions, "/submit", "", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestNotFound(t *testing.T) {
	e, webhook := newGateway(t, http.StatusOK)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/submit"},
		{http.MethodPost, "/health"},
		{http.MethodPut, "/submit"},
		{http.MethodPost, "/submit/"},
		{http.MethodGet, "/unknown"},
	}

	for _, tt := range tests {
		rec := serve(e, tt.method, tt.path, echo.MIMEApplicationJSON, validLead, map[string]string{echo.HeaderOrigin: allowedOrigin})
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, "Not Found", rec.Body.String(), "%s %s", tt.method, tt.path)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), "%s %s", tt.method, tt.path)
		assert.Empty(t, rec.Header().Get(echo.HeaderAllow), "%s %s", tt.method, tt.path)
	}
	assert.Zero(t, webhook.count())
}
