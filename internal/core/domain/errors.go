package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrPlanNotFound        = errors.New("boosting plan not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotListingOwner     = errors.New("listing belongs to another user")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidListing      = errors.New("invalid listing")
	ErrInvalidPlan         = errors.New("invalid boosting plan")
	ErrInvalidReport       = errors.New("invalid report")
	ErrInvalidDevice       = errors.New("invalid device registration")
	ErrInvalidPush         = errors.New("invalid push request")

	// ErrInvalidRecipient means the push transport permanently rejected the recipient.
	ErrInvalidRecipient = errors.New("push recipient is no longer valid")
	// ErrTransientDelivery means the push may succeed if retried later.
	ErrTransientDelivery = errors.New("transient push delivery failure")

	ErrJobBusy     = errors.New("job is already running")
	ErrJobNotFound = errors.New("job not found")
)
