package geolocation

import (
	"context"
	"sync"

	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
)

// positionWatch is the PositionWatch handed out by the sources in this package.
type positionWatch struct {
	updates chan providers.PositionUpdate
	cancel  context.CancelFunc
	once    sync.Once
}

func newPositionWatch(cancel context.CancelFunc) *positionWatch {
	return &positionWatch{
		updates: make(chan providers.PositionUpdate, 1),
		cancel:  cancel,
	}
}

// Updates is closed once the watch stops
func (w *positionWatch) Updates() <-chan providers.PositionUpdate {
	return w.updates
}

// Stop releases the subscription; safe to call more than once
func (w *positionWatch) Stop() {
	w.once.Do(w.cancel)
}

// send delivers u unless ctx is done first.
func (w *positionWatch) send(ctx context.Context, u providers.PositionUpdate) bool {
	select {
	case w.updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
