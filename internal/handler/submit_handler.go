package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/octobees/lead-gateway/internal/middleware"
	"github.com/octobees/lead-gateway/internal/service"
)

const (
	msgInvalidRequest     = "Invalid request"
	msgServiceUnavailable = "Service temporarily unavailable"
)

// SubmitHandler runs the admission pipeline for lead form posts. Origin gating
// and CORS headers are applied by route middleware before it runs.
type SubmitHandler struct {
	webhook  WebhookPoster
	enricher *service.Enricher
}

// NewSubmitHandler wires a submit handler to its forwarder and enricher.
func NewSubmitHandler(webhook WebhookPoster, enricher *service.Enricher) *SubmitHandler {
	if enricher == nil {
		enricher = service.NewEnricher("")
	}
	return &SubmitHandler{webhook: webhook, enricher: enricher}
}

// Submit handles POST /submit.
func (h *SubmitHandler) Submit(c echo.Context) error {
	req := c.Request()
	rid := middleware.RequestIDFromContext(c)

	submission, err := service.ParseSubmission(req)
	if err != nil {
		log.Printf("request_id=%s error processing submission: %v", rid, err)
		return Error(c, http.StatusBadRequest, msgInvalidRequest)
	}

	// Bots get the same answer as a real success.
	if service.IsSpam(submission) {
		log.Printf("request_id=%s honeypot triggered, rejecting spam submission", rid)
		return Text(c, http.StatusOK, "OK")
	}

	if err := service.ValidateSubmission(submission); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return Error(c, http.StatusBadRequest, verr.Message)
		}
		return Error(c, http.StatusBadRequest, msgInvalidRequest)
	}

	envelope := h.enricher.Enrich(submission, req.Header)
	if err := h.webhook.Forward(req.Context(), envelope, rid); err != nil {
		log.Printf("request_id=%s client_id=%s failed to forward lead: %v", rid, envelope.ClientID, err)
		return Text(c, http.StatusBadGateway, msgServiceUnavailable)
	}

	target := service.ThanksURL(req.Header.Get("Referer"), req.Header.Get(echo.HeaderOrigin))
	return c.Redirect(http.StatusFound, target)
}
