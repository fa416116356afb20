package domain

import (
	"time"

	"github.com/google/uuid"
)

type SavedListing struct {
	UserID    uuid.UUID
	ListingID int64
	CreatedAt time.Time
}
