package geolocation

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
)

// StaticPositionSource always answers with the same fix, or with the same
// failure when no fix is configured. Used for development and tests.
type StaticPositionSource struct {
	fix *entities.PositionFix
	err error
}

// NewStaticPositionSource returns a source that always reports fix
func NewStaticPositionSource(fix entities.PositionFix) *StaticPositionSource {
	return &StaticPositionSource{fix: &fix}
}

// NewUnavailablePositionSource returns a source on which every request fails with reason
func NewUnavailablePositionSource(reason string) *StaticPositionSource {
	return &StaticPositionSource{err: apperrors.NewPositionUnavailableError(reason, nil)}
}

// CurrentPosition returns the configured fix
func (s *StaticPositionSource) CurrentPosition(ctx context.Context, clientID string, opts providers.PositionOptions) (*entities.PositionFix, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewPositionUnavailableError("request cancelled", err)
	}
	if s.err != nil {
		return nil, s.err
	}
	fix := *s.fix
	return &fix, nil
}

// WatchPosition emits the configured fix once and then idles until stopped
func (s *StaticPositionSource) WatchPosition(ctx context.Context, clientID string, opts providers.PositionOptions) (providers.PositionWatch, error) {
	if s.err != nil {
		return nil, s.err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := newPositionWatch(cancel)
	go func() {
		defer close(w.updates)
		fix := *s.fix
		if !w.send(watchCtx, providers.PositionUpdate{Fix: &fix}) {
			return
		}
		<-watchCtx.Done()
	}()
	return w, nil
}
