package rabbitmq_consumer

import (
	"fmt"

	"findar-backend/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig describes the work queue, its binding and the optional retry topology:
//
//	exchange -> queue --(nack)--> retry exchange -> wait queue (TTL) --> exchange
//	                  \--(MaxRetries reached)--> final DLX -> final DLQ
type ConsumerConfig struct {
	QueueName    string
	DurableQueue bool
	QueueArgs    amqp.Table

	ExchangeName    string
	ExchangeType    string
	DurableExchange bool
	RoutingKey      string

	PrefetchCount int
	ConsumerTag   string

	EnableRetry        bool
	RetryExchange      string
	RetryQueue         string
	RetryTTLMillis     int
	FinalDLXExchange   string
	FinalDLQ           string
	FinalDLQRoutingKey string
	MaxRetries         int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) Validate() error {
	if c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required")
	}
	if c.ExchangeName != "" && c.ExchangeType == "" {
		return fmt.Errorf("consumer: exchange type is required when binding to an exchange")
	}
	if c.EnableRetry {
		if c.ExchangeName == "" {
			return fmt.Errorf("consumer: retries need an exchange to return messages to")
		}
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("consumer: retry exchange, retry queue, final DLX and final DLQ are required when retries are enabled")
		}
		if c.RetryTTLMillis <= 0 || c.MaxRetries < 0 {
			return fmt.Errorf("consumer: retry TTL must be positive and max retries non-negative")
		}
	}
	return nil
}

// declareTopology declares everything the config describes on ch.
func declareTopology(ch *amqp.Channel, cfg ConsumerConfig, logger rabbitmq_common.Logger) error {
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.ExchangeName != "" {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		if err := ch.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, cfg.DurableExchange, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		queueArgs[k] = v
	}
	if cfg.EnableRetry {
		queueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
	if _, err := ch.QueueDeclare(cfg.QueueName, cfg.DurableQueue, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
	}

	if cfg.ExchangeName != "" {
		if err := ch.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to '%s': %w", cfg.QueueName, cfg.ExchangeName, err)
		}
	}

	if !cfg.EnableRetry {
		return nil
	}

	logger.Debug("Declaring retry topology", "retry_queue", cfg.RetryQueue, "final_dlq", cfg.FinalDLQ)
	if err := ch.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := ch.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	_, err := ch.QueueDeclare(cfg.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":             int32(cfg.RetryTTLMillis),
		"x-dead-letter-exchange":    cfg.ExchangeName,
		"x-dead-letter-routing-key": cfg.RoutingKey,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}
	if err := ch.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry queue: %w", err)
	}
	return nil
}
