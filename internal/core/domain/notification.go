package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	TopicAgency     = "agency"
	TopicIndividual = "individual"
)

// Recipient is either a single device token or a broadcast topic, never both.
type Recipient struct {
	Token string `json:"token,omitempty"`
	Topic string `json:"topic,omitempty"`
}

func TokenRecipient(token string) Recipient { return Recipient{Token: token} }
func TopicRecipient(topic string) Recipient { return Recipient{Topic: topic} }

func (r Recipient) IsTopic() bool { return r.Topic != "" }

func (r Recipient) Validate() error {
	token, topic := strings.TrimSpace(r.Token), strings.TrimSpace(r.Topic)
	if (token == "") == (topic == "") {
		return fmt.Errorf("%w: recipient must have exactly one of token or topic", ErrInvalidPush)
	}
	return nil
}

// String is safe for logs: tokens are shortened.
func (r Recipient) String() string {
	if r.IsTopic() {
		return "topic:" + r.Topic
	}
	if len(r.Token) > 12 {
		return "token:" + r.Token[:12] + "..."
	}
	return "token:" + r.Token
}

type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// MaxPushPayloadBytes is the FCM limit for title, body and data together.
const MaxPushPayloadBytes = 4096

func (m PushMessage) Validate() error {
	if strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("%w: title or body is required", ErrInvalidPush)
	}

	size := len(m.Title) + len(m.Body)
	for k, v := range m.Data {
		if isReservedDataKey(k) {
			return fmt.Errorf("%w: data key %q is reserved", ErrInvalidPush, k)
		}
		size += len(k) + len(v)
	}
	if size > MaxPushPayloadBytes {
		return fmt.Errorf("%w: payload is %d bytes, limit is %d", ErrInvalidPush, size, MaxPushPayloadBytes)
	}
	return nil
}

func isReservedDataKey(key string) bool {
	k := strings.ToLower(key)
	switch {
	case k == "", k == "from", k == "message_type", k == "notification":
		return true
	case strings.HasPrefix(k, "google"), strings.HasPrefix(k, "gcm"):
		return true
	}
	return false
}

// DeliveryStatus is what a push transport reports for one attempt.
type DeliveryStatus int

const (
	DeliveryOK DeliveryStatus = iota
	DeliveryInvalidRecipient
	DeliveryTransientFailure
	// DeliveryRejected means the provider refused the message itself; the recipient is fine.
	DeliveryRejected
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryOK:
		return "ok"
	case DeliveryInvalidRecipient:
		return "invalid_recipient"
	case DeliveryTransientFailure:
		return "transient_failure"
	case DeliveryRejected:
		return "rejected"
	}
	return "unknown"
}

// DeliveryResult is what the dispatcher reports for a handled send.
type DeliveryResult string

const (
	DeliveryDelivered DeliveryResult = "delivered"
	// DeliveryRecipientRetired means the recipient was invalid and its registration was removed.
	DeliveryRecipientRetired DeliveryResult = "recipient_retired"
)

type PushJobKind string

const (
	PushKindBoostExpiry PushJobKind = "boosting_expiry_reminder"
	PushKindNewPlans    PushJobKind = "new_boosting_plans"
	PushKindEngagement  PushJobKind = "engagement_reminder"
	PushKindManual      PushJobKind = "manual"
)

// PushJob is one pending delivery to one recipient.
type PushJob struct {
	Kind      PushJobKind `json:"kind"`
	Recipient Recipient   `json:"recipient"`
	Message   PushMessage `json:"message"`
}

func BoostExpiryReminderMessage(listingID int64) PushMessage {
	return PushMessage{
		Title: "Boosting Plan Expiry Reminder",
		Body:  "Your post's boosting plan is about to expire. Renew now to maintain visibility!",
		Data: map[string]string{
			"type":    string(PushKindBoostExpiry),
			"post_id": strconv.FormatInt(listingID, 10),
		},
	}
}

func NewBoostingPlansMessage() PushMessage {
	return PushMessage{
		Title: "New Boosting Plans Available!",
		Body:  "Check out our latest boosting plans to enhance your posts' visibility.",
		Data:  map[string]string{"type": string(PushKindNewPlans)},
	}
}

func EngagementReminderMessage() PushMessage {
	return PushMessage{
		Title: "We miss you at FinDAR!",
		Body:  "It's been a while since your last engagement. Check out new listings today!",
		Data:  map[string]string{"type": string(PushKindEngagement)},
	}
}

// UserEvent is pushed to a user's open live streams.
type UserEvent struct {
	Type   string      `json:"type"`
	UserID uuid.UUID   `json:"user_id"`
	Data   interface{} `json:"data"`
}
