package port

import "context"

// InvalidationPublisher fans a cache-invalidation notice out to the
// other running instances.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, entity string) error
}

// InvalidationSubscriber delivers invalidation notices published by
// peers.
type InvalidationSubscriber interface {
	SubscribeInvalidation(handler func(entity string)) error
}

// Notifier surfaces user-facing toasts. Remote-call failures become
// notifications here, never exceptions across component boundaries.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}
