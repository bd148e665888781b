package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/octobees/lead-gateway/internal/dto"
	"github.com/octobees/lead-gateway/internal/entity"
)

const (
	// TimestampLayout is ISO-8601 in UTC with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	unknownValue          = "unknown"
	defaultClientIPHeader = "CF-Connecting-IP"
)

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Enricher turns a validated submission into the envelope sent downstream.
type Enricher struct {
	clientIPHeader string
	now            func() time.Time
}

// EnricherOption configures optional dependencies.
type EnricherOption func(*Enricher)

// WithClock overrides the time source used for envelope timestamps.
func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEnricher builds an enricher reading the client IP from clientIPHeader.
func NewEnricher(clientIPHeader string, opts ...EnricherOption) *Enricher {
	header := strings.TrimSpace(clientIPHeader)
	if header == "" {
		header = defaultClientIPHeader
	}
	e := &Enricher{clientIPHeader: header, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich trims every known field, drops blank optional ones and stamps request
// metadata. The honeypot is never copied.
func (e *Enricher) Enrich(submission dto.Submission, headers http.Header) entity.ForwardEnvelope {
	field := func(key string) string {
		return trimField(submission.Get(key))
	}

	return entity.ForwardEnvelope{
		Lead: entity.Lead{
			ClientID: field(dto.FieldClientID),
			Name:     field(dto.FieldName),
			Phone:    field(dto.FieldPhone),
			Message:  field(dto.FieldMessage),
			Email:    field(dto.FieldEmail),
			Service:  field(dto.FieldService),
			Source:   field(dto.FieldSource),
			UTM:      field(dto.FieldUTM),
		},
		IP:        headerOrUnknown(headers, e.clientIPHeader),
		UserAgent: headerOrUnknown(headers, "User-Agent"),
		Timestamp: FormatTimestamp(e.now()),
	}
}

func headerOrUnknown(headers http.Header, key string) string {
	if v := headers.Get(key); v != "" {
		return v
	}
	return unknownValue
}
