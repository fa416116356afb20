package inline_adapter

import (
	"context"
	"errors"
	"testing"

	"findar-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	recipients []domain.Recipient
	err        error
}

func (s *recordingSender) Execute(_ context.Context, recipient domain.Recipient, _ domain.PushMessage) (domain.DeliveryResult, error) {
	s.recipients = append(s.recipients, recipient)
	if s.err != nil {
		return "", s.err
	}
	return domain.DeliveryDelivered, nil
}

func TestPushJobQueue_DeliversImmediately(t *testing.T) {
	sender := &recordingSender{}
	queue, err := NewPushJobQueue(sender)
	require.NoError(t, err)

	job := domain.PushJob{
		Kind:      domain.PushKindNewPlans,
		Recipient: domain.TopicRecipient(domain.TopicAgency),
		Message:   domain.NewBoostingPlansMessage(),
	}
	require.NoError(t, queue.Enqueue(context.Background(), job))
	assert.Equal(t, []domain.Recipient{domain.TopicRecipient("agency")}, sender.recipients)
}

func TestPushJobQueue_ReturnsSendError(t *testing.T) {
	queue, err := NewPushJobQueue(&recordingSender{err: domain.ErrTransientDelivery})
	require.NoError(t, err)

	err = queue.Enqueue(context.Background(), domain.PushJob{Kind: domain.PushKindManual, Recipient: domain.TokenRecipient("t")})
	assert.True(t, errors.Is(err, domain.ErrTransientDelivery))

	_, err = NewPushJobQueue(nil)
	assert.Error(t, err)
}
