package handler

import (
	"context"

	"github.com/octobees/lead-gateway/internal/entity"
)

type webhookStub struct {
	err       error
	calls     int
	envelope  entity.ForwardEnvelope
	requestID string
}

func (s *webhookStub) Forward(ctx context.Context, envelope entity.ForwardEnvelope, requestID string) error {
	s.calls++
	s.envelope = envelope
	s.requestID = requestID
	return s.err
}
