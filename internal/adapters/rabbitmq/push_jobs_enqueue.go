package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/contracts"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// publisher is the subset of rabbitmq_producer.Publisher the adapter needs.
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// PushJobPublisherAdapter puts push jobs on the broker for the push worker.
type PushJobPublisherAdapter struct {
	producer   publisher
	routingKey string
}

func NewPushJobPublisherAdapter(producer publisher, routingKey string) (*PushJobPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &PushJobPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *PushJobPublisherAdapter) Enqueue(ctx context.Context, job domain.PushJob) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PushJobPublisherAdapter",
		"routing_key": a.routingKey,
		"kind":        string(job.Kind),
		"recipient":   job.Recipient.String(),
	})

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal push job: %w", err)
	}
	// a job the worker would reject is refused here instead of travelling through the broker
	if err := contracts.ValidateEvent(contracts.PushNotificationEventType, contracts.PushNotificationEventVersion, body); err != nil {
		adapterLogger.Error("Push job does not match its contract", err, nil)
		return fmt.Errorf("%w: %v", domain.ErrInvalidPush, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    contracts.PushNotificationEventType,
			"event-version": contracts.PushNotificationEventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish push job", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish push job: %w", err)
	}

	adapterLogger.Debug("Push job published", nil)
	return nil
}
