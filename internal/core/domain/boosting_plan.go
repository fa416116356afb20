package domain

import (
	"fmt"
	"strings"
	"time"
)

type TargetAudience string

const (
	AudienceIndividual TargetAudience = "Individual"
	AudienceBusiness   TargetAudience = "Business"
)

// BoostingPlan is a purchasable promotion package.
type BoostingPlan struct {
	ID             int64
	PlanType       string
	TargetAudience TargetAudience
	CreditCost     float64
	DurationMonths int
	CreatedAt      time.Time
}

func (p BoostingPlan) Validate() error {
	if strings.TrimSpace(p.PlanType) == "" {
		return fmt.Errorf("%w: plan type is required", ErrInvalidPlan)
	}
	if p.TargetAudience != AudienceIndividual && p.TargetAudience != AudienceBusiness {
		return fmt.Errorf("%w: unknown target audience %q", ErrInvalidPlan, p.TargetAudience)
	}
	if p.CreditCost < 0 {
		return fmt.Errorf("%w: credit cost cannot be negative", ErrInvalidPlan)
	}
	if p.DurationMonths <= 0 {
		return fmt.Errorf("%w: duration must be at least one month", ErrInvalidPlan)
	}
	return nil
}

// ExpiresAt computes the end of a promotion bought at from.
func (p BoostingPlan) ExpiresAt(from time.Time) time.Time {
	return from.AddDate(0, p.DurationMonths, 0)
}

// AnnouncementTopic is the broadcast topic whose subscribers care about this plan.
func (p BoostingPlan) AnnouncementTopic() string {
	if p.TargetAudience == AudienceBusiness {
		return TopicAgency
	}
	return TopicIndividual
}
