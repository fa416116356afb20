package fcm_adapter

import (
	"context"
	"fmt"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type Config struct {
	// CredentialsFile is a service account key; empty means application default credentials.
	CredentialsFile string
	ProjectID       string
}

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Transport delivers push messages through Firebase Cloud Messaging.
type Transport struct {
	client   sender
	classify func(err error) domain.DeliveryStatus
}

// NewTransport initializes its own Firebase app; the caller owns the returned transport for the process lifetime.
func NewTransport(ctx context.Context, cfg Config) (*Transport, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase messaging client: %w", err)
	}
	return newTransport(client), nil
}

func newTransport(client sender) *Transport {
	return &Transport{client: client, classify: classifySendError}
}

// classifySendError maps an FCM send error to a delivery status.
// Only a dead or foreign token retires the recipient. INVALID_ARGUMENT is about
// the message, so the registration is kept and the send is not retried.
func classifySendError(err error) domain.DeliveryStatus {
	switch {
	case messaging.IsUnregistered(err), messaging.IsSenderIDMismatch(err):
		return domain.DeliveryInvalidRecipient
	case errorutils.IsInvalidArgument(err):
		return domain.DeliveryRejected
	default:
		return domain.DeliveryTransientFailure
	}
}

func (t *Transport) Deliver(ctx context.Context, recipient domain.Recipient, msg domain.PushMessage) (domain.DeliveryStatus, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "FCMTransport",
		"recipient": recipient.String(),
	})

	messageID, err := t.client.Send(ctx, buildMessage(recipient, msg))
	if err != nil {
		status := t.classify(err)
		logger.Debug("FCM refused message", port.Fields{"status": status.String(), "error": err.Error()})
		return status, err
	}

	logger.Debug("FCM accepted message", port.Fields{"message_id": messageID})
	return domain.DeliveryOK, nil
}

func buildMessage(recipient domain.Recipient, msg domain.PushMessage) *messaging.Message {
	m := &messaging.Message{
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}
	if recipient.IsTopic() {
		m.Topic = recipient.Topic
	} else {
		m.Token = recipient.Token
	}
	return m
}
