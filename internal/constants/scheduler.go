package constants

// Job names accepted by the scheduler and the manual trigger endpoint.
const (
	JobBoostExpiry        = "boost-expiry"
	JobEngagementReminder = "engagement-reminder"
)
