package providers

import (
	"context"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// PositionOptions mirrors the knobs of a browser position request.
type PositionOptions struct {
	EnableHighAccuracy bool
	// Timeout bounds a one-shot request.
	Timeout time.Duration
	// MaximumAge is the oldest cached fix a source may return.
	MaximumAge time.Duration
	// Interval is the polling period for sources without push updates.
	Interval time.Duration
}

// PositionUpdate is one item delivered by a watch. Exactly one of Fix or Err is set.
type PositionUpdate struct {
	Fix *entities.PositionFix
	Err error
}

// PositionWatch is a cancelable continuous subscription.
type PositionWatch interface {
	// Updates is closed once the watch stops
	Updates() <-chan PositionUpdate

	// Stop releases the underlying subscription; safe to call more than once
	Stop()
}

// PositionSource provides the device position for one client. Failures must
// wrap errors.ErrPositionUnavailable.
type PositionSource interface {
	// CurrentPosition performs a one-shot request
	CurrentPosition(ctx context.Context, clientID string, opts PositionOptions) (*entities.PositionFix, error)

	// WatchPosition registers a continuous subscription
	WatchPosition(ctx context.Context, clientID string, opts PositionOptions) (PositionWatch, error)
}
