package rabbitmq_adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/contracts"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Info(string, port.Fields)                 {}
func (discardLogger) Warn(string, port.Fields)                 {}
func (discardLogger) Error(string, error, port.Fields)         {}
func (discardLogger) Debug(string, port.Fields)                {}
func (d discardLogger) WithFields(port.Fields) port.LoggerPort { return d }

type fakePublisher struct {
	routingKey string
	published  []amqp.Publishing
	err        error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.routingKey = routingKey
	p.published = append(p.published, msg)
	return nil
}

type fakeSendUC struct {
	calls  int
	result domain.DeliveryResult
	err    error
	got    domain.Recipient
	gotMsg domain.PushMessage
}

func (f *fakeSendUC) Execute(_ context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryResult, error) {
	f.calls++
	f.got, f.gotMsg = recipient, msg
	return f.result, f.err
}

func expiryJob() domain.PushJob {
	return domain.PushJob{
		Kind:      domain.PushKindBoostExpiry,
		Recipient: domain.TokenRecipient("device-token-1"),
		Message:   domain.BoostExpiryReminderMessage(42),
	}
}

func TestPushJobPublisherAdapter_Enqueue(t *testing.T) {
	pub := &fakePublisher{}
	adapter, err := NewPushJobPublisherAdapter(pub, "push.job.send")
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	require.NoError(t, adapter.Enqueue(ctx, expiryJob()))

	require.Len(t, pub.published, 1)
	msg := pub.published[0]
	assert.Equal(t, "push.job.send", pub.routingKey)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, contracts.PushNotificationEventType, msg.Headers["event-type"])
	assert.Equal(t, contracts.PushNotificationEventVersion, msg.Headers["event-version"])
	assert.Equal(t, "trace-1", msg.Headers["x-trace-id"])
	assert.NoError(t, contracts.ValidateEvent(contracts.PushNotificationEventType, contracts.PushNotificationEventVersion, msg.Body))
}

func TestPushJobPublisherAdapter_RejectsInvalidJob(t *testing.T) {
	pub := &fakePublisher{}
	adapter, err := NewPushJobPublisherAdapter(pub, "push.job.send")
	require.NoError(t, err)

	job := expiryJob()
	job.Recipient.Topic = "agency"

	err = adapter.Enqueue(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrInvalidPush)
	assert.Empty(t, pub.published)
}

func TestPushJobPublisherAdapter_PublishError(t *testing.T) {
	adapter, err := NewPushJobPublisherAdapter(&fakePublisher{err: errors.New("channel closed")}, "push.job.send")
	require.NoError(t, err)

	assert.Error(t, adapter.Enqueue(context.Background(), expiryJob()))
}

func TestNewPushJobPublisherAdapter_Validation(t *testing.T) {
	_, err := NewPushJobPublisherAdapter(nil, "key")
	assert.Error(t, err)
	_, err = NewPushJobPublisherAdapter(&fakePublisher{}, "")
	assert.Error(t, err)
}

// deliveryFor publishes job through the real publisher adapter and turns the result into a delivery.
func deliveryFor(t *testing.T, job domain.PushJob) amqp.Delivery {
	t.Helper()
	pub := &fakePublisher{}
	adapter, err := NewPushJobPublisherAdapter(pub, "push.job.send")
	require.NoError(t, err)
	require.NoError(t, adapter.Enqueue(context.Background(), job))
	msg := pub.published[0]
	return amqp.Delivery{Headers: msg.Headers, Body: msg.Body, ContentType: msg.ContentType, DeliveryTag: 1}
}

func TestPushJobConsumer_Handler(t *testing.T) {
	testCases := []struct {
		name      string
		sendErr   error
		wantRetry bool
	}{
		{name: "delivered", sendErr: nil, wantRetry: false},
		{name: "transient failure is retried", sendErr: fmt.Errorf("%w: unavailable", domain.ErrTransientDelivery), wantRetry: true},
		{name: "rejected job is dropped", sendErr: domain.ErrInvalidPush, wantRetry: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeSendUC{result: domain.DeliveryDelivered, err: tc.sendErr}
			adapter := &PushJobConsumerAdapter{useCase: uc, logger: discardLogger{}}

			err := adapter.messageHandler(context.Background(), deliveryFor(t, expiryJob()))

			assert.Equal(t, tc.wantRetry, err != nil)
			require.Equal(t, 1, uc.calls)
			assert.Equal(t, "device-token-1", uc.got.Token)
			assert.Equal(t, "42", uc.gotMsg.Data["post_id"])
		})
	}
}

func TestPushJobConsumer_DropsMessagesWithoutContract(t *testing.T) {
	uc := &fakeSendUC{}
	adapter := &PushJobConsumerAdapter{useCase: uc, logger: discardLogger{}}

	noHeaders := amqp.Delivery{Body: []byte(`{"kind":"manual"}`)}
	assert.NoError(t, adapter.messageHandler(context.Background(), noHeaders))

	invalid := amqp.Delivery{
		Headers: amqp.Table{
			"event-type":    contracts.PushNotificationEventType,
			"event-version": contracts.PushNotificationEventVersion,
		},
		Body: []byte(`{"kind":"manual","recipient":{},"message":{"title":"t","body":"b"}}`),
	}
	assert.NoError(t, adapter.messageHandler(context.Background(), invalid))

	assert.Zero(t, uc.calls)
}
