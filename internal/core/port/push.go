package port

import (
	"context"

	"findar-backend/internal/core/domain"
)

// PushTransportPort delivers one message to a device token or a topic.
// The error, when present, describes the failure; the status classifies it.
type PushTransportPort interface {
	Deliver(ctx context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryStatus, error)
}

// PushJobQueuePort hands push jobs to whatever runs SendNotification.
type PushJobQueuePort interface {
	Enqueue(ctx context.Context, job domain.PushJob) error
}

// LiveNotifierPort pushes events to a user's open streams. Delivery is best-effort.
type LiveNotifierPort interface {
	Notify(ctx context.Context, event domain.UserEvent)
}
