package rabbitmq_consumer

import amqp "github.com/rabbitmq/amqp091-go"

type failureAction int

const (
	// actionDrop nacks without requeue; with no retry topology the broker discards the message.
	actionDrop failureAction = iota
	// actionRetry nacks so the message dead-letters into the TTL wait queue.
	actionRetry
	// actionPark publishes the message to the final DLQ and acks the original.
	actionPark
)

func decideOnFailure(retryEnabled bool, deaths int64, maxRetries int) failureAction {
	if !retryEnabled {
		return actionDrop
	}
	if deaths < int64(maxRetries) {
		return actionRetry
	}
	return actionPark
}

// deathCount reads how many times the broker dead-lettered the message out of queue.
func deathCount(headers amqp.Table, queue string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, d := range deaths {
		tbl, ok := d.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := tbl["queue"].(string); q != queue {
			continue
		}
		if n, ok := tbl["count"].(int64); ok {
			return n
		}
	}
	return 0
}
