package pushlog_adapter

import (
	"context"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
)

// Transport writes each push to the log and reports it delivered.
// It is used when no push provider is configured.
type Transport struct{}

func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) Deliver(ctx context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryStatus, error) {
	contextkeys.LoggerFromContext(ctx).Info("Push delivered to log", port.Fields{
		"component": "LogTransport",
		"recipient": recipient.String(),
		"title":     msg.Title,
		"body":      msg.Body,
		"data":      msg.Data,
	})
	return domain.DeliveryOK, nil
}
