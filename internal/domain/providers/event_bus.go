package providers

import (
	"context"

	"github.com/seniornav/careplan/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// assessment lifecycle events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AssessmentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channel constants.
const (
	// EventChannelAssessments is the channel for all assessment events.
	EventChannelAssessments = "assessments:completed"

	// EventChannelUserPrefix is the prefix for per-user channels.
	EventChannelUserPrefix = "assessments:user:"
)

// GetUserChannel returns the channel name for a specific user.
func GetUserChannel(userID string) string {
	return EventChannelUserPrefix + userID
}
