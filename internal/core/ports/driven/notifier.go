package driven

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// Notifier publishes session and event changes to realtime subscribers.
// Delivery is at-least-once; subscribers merge through domain.Projection.
type Notifier interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Subscriber delivers notifications for a single session.
type Subscriber interface {
	// Subscribe returns a channel of notifications for the session and a
	// cancel function that releases the subscription and closes the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.Notification, func(), error)
}
