package queue

import "context"

// Job consumes messages of a single type from the queue.
type Job interface {
	// Name identifies the job in logs and metrics.
	Name() string

	// Type is the message type this job subscribes to.
	Type() string

	// Handle processes one message payload.
	Handle(ctx context.Context, payload interface{}) error
}
