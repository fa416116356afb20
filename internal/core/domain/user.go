package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeNormal AccountType = "normal"
	AccountTypeAgency AccountType = "agency"
)

// User is the local mirror of an account managed by the authentication service.
type User struct {
	ID                   uuid.UUID
	AccountType          AccountType
	Credits              float64
	LastActiveAt         time.Time
	EngagementRemindedAt *time.Time
}

// InactivityThreshold is how long a user must be idle before an engagement reminder is due.
const InactivityThreshold = 24 * time.Hour
