package inline_adapter

import (
	"context"
	"fmt"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port/usecases_port"
)

// PushJobQueue delivers a job during Enqueue instead of queueing it.
// It stands in for the broker when RabbitMQ is disabled, so nothing is retried.
type PushJobQueue struct {
	sender usecases_port.SendNotificationUseCasePort
}

func NewPushJobQueue(sender usecases_port.SendNotificationUseCasePort) (*PushJobQueue, error) {
	if sender == nil {
		return nil, fmt.Errorf("inline queue: sender cannot be nil")
	}
	return &PushJobQueue{sender: sender}, nil
}

// Enqueue returns the send error, including a recipient rejected for good.
func (q *PushJobQueue) Enqueue(ctx context.Context, job domain.PushJob) error {
	if _, err := q.sender.Execute(ctx, job.Recipient, job.Message); err != nil {
		return fmt.Errorf("inline delivery of %s push: %w", job.Kind, err)
	}
	return nil
}
