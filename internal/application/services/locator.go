package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// LocatorState is the geolocation state of one client.
type LocatorState string

const (
	StateUninitialized LocatorState = "uninitialized"
	StateLocating      LocatorState = "locating"
	StateLocated       LocatorState = "located"
	StateFallback      LocatorState = "fallback"
	StateWatching      LocatorState = "watching"
)

const (
	minLocateTimeout     = 5 * time.Second
	maxLocateTimeout     = 10 * time.Second
	defaultLocateTimeout = minLocateTimeout
)

// LocatorConfig configures a Locator.
type LocatorConfig struct {
	Fallback entities.Coordinates
	// Timeout bounds a one-shot request; clamped to 5-10s.
	Timeout            time.Duration
	MaximumAge         time.Duration
	EnableHighAccuracy bool
}

// Locator always yields a usable position for one client: the device position
// when the source provides one, otherwise the fallback coordinate.
type Locator struct {
	source   providers.PositionSource
	clientID string
	cfg      LocatorConfig
	now      func() time.Time

	position atomic.Pointer[entities.GeoPosition]

	mu        sync.Mutex
	state     LocatorState
	advisory  string
	watch     providers.PositionWatch
	listeners map[chan entities.GeoPosition]struct{}
}

// NewLocator creates a locator in the uninitialized state. Until the first
// locate completes Position reports the fallback coordinate.
func NewLocator(source providers.PositionSource, clientID string, cfg LocatorConfig) *Locator {
	switch {
	case cfg.Timeout <= 0:
		cfg.Timeout = defaultLocateTimeout
	case cfg.Timeout < minLocateTimeout:
		cfg.Timeout = minLocateTimeout
	case cfg.Timeout > maxLocateTimeout:
		cfg.Timeout = maxLocateTimeout
	}

	l := &Locator{
		source:    source,
		clientID:  clientID,
		cfg:       cfg,
		now:       time.Now,
		state:     StateUninitialized,
		listeners: make(map[chan entities.GeoPosition]struct{}),
	}
	l.position.Store(l.fallbackPosition())
	return l
}

// ClientID returns the client this locator serves
func (l *Locator) ClientID() string {
	return l.clientID
}

// State returns the current state
func (l *Locator) State() LocatorState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Advisory returns the reason of the last failure that forced or kept the fallback
func (l *Locator) Advisory() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.advisory
}

// Position returns the current position snapshot
func (l *Locator) Position() entities.GeoPosition {
	return *l.position.Load()
}

// Locate issues a one-shot request. Failures are logged and resolved to the
// fallback position; Locate never fails. While watching it returns the live position.
func (l *Locator) Locate(ctx context.Context) entities.GeoPosition {
	l.mu.Lock()
	if l.state == StateWatching {
		l.mu.Unlock()
		return l.Position()
	}
	l.state = StateLocating
	l.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	fix, err := l.source.CurrentPosition(reqCtx, l.clientID, providers.PositionOptions{
		EnableHighAccuracy: l.cfg.EnableHighAccuracy,
		Timeout:            l.cfg.Timeout,
		MaximumAge:         l.cfg.MaximumAge,
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	// A watch started while the request was in flight owns the position now.
	if l.state == StateWatching {
		log.Debug().Err(err).Str("client_id", l.clientID).Msg("Discarding one-shot result, watch is active")
		return l.Position()
	}

	if err != nil {
		log.Warn().Err(err).Str("client_id", l.clientID).Msg("Geolocation unavailable, using fallback position")
		observability.RecordLocateMetric(ctx, string(StateFallback))
		pos := l.fallbackPosition()
		l.position.Store(pos)
		l.advisory = err.Error()
		if l.state == StateLocating {
			l.state = StateFallback
		}
		l.notifyLocked(*pos)
		return *pos
	}

	observability.RecordLocateMetric(ctx, string(StateLocated))
	pos := l.fixPosition(fix)
	l.position.Store(pos)
	l.advisory = ""
	if l.state == StateLocating {
		l.state = StateLocated
	}
	l.notifyLocked(*pos)
	return *pos
}

// Watch registers a continuous subscription. Each update replaces the position;
// watch errors are logged and leave the position unchanged. An uninitialized
// locator locates first. Calling Watch while watching is a no-op.
func (l *Locator) Watch(ctx context.Context) error {
	if l.State() == StateUninitialized {
		l.Locate(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateWatching {
		return nil
	}

	w, err := l.source.WatchPosition(ctx, l.clientID, providers.PositionOptions{
		EnableHighAccuracy: l.cfg.EnableHighAccuracy,
		MaximumAge:         l.cfg.MaximumAge,
	})
	if err != nil {
		log.Warn().Err(err).Str("client_id", l.clientID).Msg("Failed to start position watch")
		l.advisory = err.Error()
		return err
	}

	l.watch = w
	l.state = StateWatching
	go l.consume(w)
	return nil
}

func (l *Locator) consume(w providers.PositionWatch) {
	for update := range w.Updates() {
		if update.Err != nil {
			log.Warn().Err(update.Err).Str("client_id", l.clientID).Msg("Position watch error, keeping last position")
			l.mu.Lock()
			l.advisory = update.Err.Error()
			l.mu.Unlock()
			continue
		}
		if update.Fix == nil {
			continue
		}

		pos := l.fixPosition(update.Fix)
		l.mu.Lock()
		if l.watch != w {
			l.mu.Unlock()
			return
		}
		l.position.Store(pos)
		l.advisory = ""
		l.notifyLocked(*pos)
		l.mu.Unlock()
	}

	// The source ended the subscription on its own (context cancelled).
	l.mu.Lock()
	if l.watch == w {
		l.watch = nil
		l.state = l.restingStateLocked()
	}
	l.mu.Unlock()
}

// StopWatch releases the subscription and returns to located or fallback.
// It is a no-op when not watching.
func (l *Locator) StopWatch() {
	l.mu.Lock()
	if l.state != StateWatching || l.watch == nil {
		l.mu.Unlock()
		return
	}
	w := l.watch
	l.watch = nil
	l.state = l.restingStateLocked()
	l.mu.Unlock()

	w.Stop()
}

// Listen registers for position changes. The channel holds only the latest
// position; cancel unregisters and closes it.
func (l *Locator) Listen() (<-chan entities.GeoPosition, func()) {
	ch := make(chan entities.GeoPosition, 1)

	l.mu.Lock()
	l.listeners[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, ch)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Listeners returns the number of registered listeners
func (l *Locator) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

func (l *Locator) notifyLocked(pos entities.GeoPosition) {
	for ch := range l.listeners {
		select {
		case ch <- pos:
		default:
			// Replace the stale value so listeners always see the latest position.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- pos:
			default:
			}
		}
	}
}

func (l *Locator) restingStateLocked() LocatorState {
	if l.position.Load().IsFallback {
		return StateFallback
	}
	return StateLocated
}

func (l *Locator) fallbackPosition() *entities.GeoPosition {
	return &entities.GeoPosition{
		Lat:        l.cfg.Fallback.Lat,
		Lng:        l.cfg.Fallback.Lng,
		IsFallback: true,
		UpdatedAt:  l.now(),
	}
}

func (l *Locator) fixPosition(fix *entities.PositionFix) *entities.GeoPosition {
	updatedAt := fix.Timestamp
	if updatedAt.IsZero() {
		updatedAt = l.now()
	}
	return &entities.GeoPosition{
		Lat:       fix.Lat,
		Lng:       fix.Lng,
		Accuracy:  fix.Accuracy,
		UpdatedAt: updatedAt,
	}
}
