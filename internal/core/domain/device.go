package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeviceRegistration binds a push token to a user. Tokens are unique across all users.
type DeviceRegistration struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
	LastSeen  time.Time
}
