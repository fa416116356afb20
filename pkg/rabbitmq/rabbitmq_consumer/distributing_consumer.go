package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"findar-backend/pkg/rabbitmq/rabbitmq_common"
	"findar-backend/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one delivery. A nil error acks it; any error sends it
// through the retry topology (or drops it when retries are disabled).
type MessageHandler func(ctx context.Context, d amqp.Delivery) error

// DistributingConsumer handles every delivery in its own goroutine.
// Concurrency is bounded by the prefetch count.
type DistributingConsumer struct {
	cfg     ConsumerConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	parking *rabbitmq_producer.Publisher
	handler MessageHandler
	logger  rabbitmq_common.Logger
	wg      sync.WaitGroup
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}
	if err := declareTopology(ch, cfg, logger); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	c := &DistributingConsumer{cfg: cfg, conn: conn, channel: ch, handler: handler, logger: logger}

	if cfg.EnableRetry {
		c.parking, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: final DLX publisher: %w", err)
		}
	}

	return c, nil
}

// StartConsuming blocks until ctx is cancelled (nil) or the connection drops (the close error).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.cfg.QueueName, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from '%s': %w", c.cfg.QueueName, err)
	}
	c.logger.Info("Waiting for messages", "queue", c.cfg.QueueName)

	go c.dispatch(ctx, msgs)

	closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		c.logger.Info("Context cancelled, consumer stops", "queue", c.cfg.QueueName)
		return nil
	case err := <-closed:
		if err == nil {
			return nil
		}
		c.logger.Error(err, "Connection closed under consumer", "queue", c.cfg.QueueName)
		return err
	}
}

func (c *DistributingConsumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.logger.Info("Delivery channel closed", "queue", c.cfg.QueueName)
				return
			}
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.handle(ctx, d)
			}()
		}
	}
}

func (c *DistributingConsumer) handle(ctx context.Context, d amqp.Delivery) {
	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	deaths := deathCount(d.Headers, c.cfg.QueueName)
	c.logger.Warn("Handler failed", "delivery_tag", d.DeliveryTag, "deaths", deaths, "error", err.Error())

	switch decideOnFailure(c.cfg.EnableRetry, deaths, c.cfg.MaxRetries) {
	case actionDrop, actionRetry:
		_ = d.Nack(false, false)
	case actionPark:
		// parked messages must survive shutdown, so the consumer context is not used here
		parkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := c.parking.Publish(parkCtx, c.cfg.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			c.logger.Error(err, "Failed to park message, sending it around the retry loop again")
			_ = d.Nack(false, false)
			return
		}
		c.logger.Warn("Message parked in final DLQ", "delivery_tag", d.DeliveryTag)
		_ = d.Ack(false)
	}
}

// Close waits for in-flight handlers, then closes the channels.
func (c *DistributingConsumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.parking != nil {
		if err := c.parking.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.channel = nil
	}
	c.logger.Info("Consumer closed", "queue", c.cfg.QueueName)
	return firstErr
}
