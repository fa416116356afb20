package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logger_adapter "findar-backend/internal/adapters/logger"
	"findar-backend/internal/contextkeys"
	"findar-backend/internal/contracts"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
	"findar-backend/pkg/rabbitmq/rabbitmq_common"
	"findar-backend/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PushJobConsumerAdapter runs SendNotification for every push job on the queue.
// Only transient delivery failures go back to the broker for a retry.
type PushJobConsumerAdapter struct {
	consumer *rabbitmq_consumer.DistributingConsumer
	useCase  usecases_port.SendNotificationUseCasePort
	logger   port.LoggerPort
}

func NewPushJobConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.SendNotificationUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*PushJobConsumerAdapter, error) {
	adapter := &PushJobConsumerAdapter{useCase: useCase, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = logger_adapter.NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for push jobs: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *PushJobConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"consumer_tag": d.ConsumerTag,
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if eventType == "" || eventVersion == "" {
		// retrying cannot fix a message without a contract
		msgLogger.Error("Message has no event-type or event-version header, dropping", nil, port.Fields{"body": string(d.Body)})
		return nil
	}
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation, dropping", err, port.Fields{
			"event_type":    eventType,
			"event_version": eventVersion,
		})
		return nil
	}

	var job domain.PushJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		msgLogger.Error("Error unmarshalling push job, dropping", err, nil)
		return nil
	}

	jobLogger := msgLogger.WithFields(port.Fields{
		"kind":      string(job.Kind),
		"recipient": job.Recipient.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, jobLogger)

	result, err := a.useCase.Execute(ctx, job.Recipient, job.Message)
	if err != nil {
		if errors.Is(err, domain.ErrTransientDelivery) {
			jobLogger.Warn("Transient delivery failure, handing back for retry", port.Fields{"error": err.Error()})
			return err
		}
		jobLogger.Error("Push job rejected, dropping", err, nil)
		return nil
	}

	jobLogger.Info("Push job processed", port.Fields{"result": string(result)})
	return nil
}

func (a *PushJobConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *PushJobConsumerAdapter) Close() error {
	return a.consumer.Close()
}
