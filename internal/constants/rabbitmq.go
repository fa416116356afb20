package constants

const (
	PushJobsExchange     = "push_jobs_exchange"
	PushJobsExchangeType = "direct"
)

const (
	QueuePushJobs       = "push_jobs"
	ConsumerTagPushJobs = "findar-push-worker"
)

const (
	RoutingKeyPushJobs = "push.job.send"
)

const (
	PushJobsRetryExchange = "push_jobs_retry_exchange"
	PushJobsRetryQueue    = "push_jobs_retry_wait"

	FinalDLXExchange   = "push_jobs_final_dlx"
	FinalDLQ           = "push_jobs_final_dlq"
	FinalDLQRoutingKey = "push.job.dlq"
)
