package providers

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to position events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PositionEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PositionEvent, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelPositionPrefix is the prefix for per-client position channels
const EventChannelPositionPrefix = "position:"

// GetPositionChannel returns the channel name for a specific client
func GetPositionChannel(clientID string) string {
	return EventChannelPositionPrefix + clientID
}
