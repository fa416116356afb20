package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Report struct {
	ID         int64
	ListingID  int64
	ReporterID uuid.UUID
	Reason     string
	Details    string
	CreatedAt  time.Time
}

func (r Report) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidReport)
	}
	return nil
}
