package interfaces

import "context"

// EventPublisher emits domain events after a financial mutation has
// committed. Publishing is best-effort: a failure must never undo the
// mutation it reports.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
