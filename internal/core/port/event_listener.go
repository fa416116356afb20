package port

import "context"

// EventListenerPort consumes external messages and runs the matching use case.
type EventListenerPort interface {
	Start(ctx context.Context) error
	// Close waits for in-flight messages before returning.
	Close() error
}
