package services

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/rs/zerolog/log"
)

var errReportingDisabled = apperrors.NewValidationError("position reporting is not enabled")

const (
	// DefaultLocationLabel labels a real position when no geocoder is configured.
	DefaultLocationLabel = "Your location"
	// DefaultFallbackLabel labels the fallback position.
	DefaultFallbackLabel = "Hai Bà Trưng, Hanoi (default)"
	// DefaultMaxTrackedClients bounds the number of live locators.
	DefaultMaxTrackedClients = 4096
)

// PositionReporter accepts positions pushed by clients.
type PositionReporter interface {
	Report(ctx context.Context, report entities.PositionReport) error
	Deny(ctx context.Context, clientID, reason string) error
}

// LocationStatus is the location snapshot returned to clients.
type LocationStatus struct {
	ClientID string               `json:"clientId,omitempty"`
	Position entities.GeoPosition `json:"position"`
	State    LocatorState         `json:"state"`
	Label    string               `json:"label"`
	Advisory string               `json:"advisory,omitempty"`
}

// LocationService keeps one Locator per client and labels positions.
type LocationService struct {
	source        providers.PositionSource
	reporter      PositionReporter
	geocoder      providers.Geocoder
	cfg           LocatorConfig
	fallbackLabel string

	mu       sync.Mutex
	locators *lru.Cache[string, *Locator]
}

// LocationServiceOptions configures a LocationService. Reporter and Geocoder are optional.
type LocationServiceOptions struct {
	Reporter      PositionReporter
	Geocoder      providers.Geocoder
	FallbackLabel string
	MaxClients    int
}

// NewLocationService creates a location service over source
func NewLocationService(source providers.PositionSource, cfg LocatorConfig, opts LocationServiceOptions) (*LocationService, error) {
	if opts.MaxClients <= 0 {
		opts.MaxClients = DefaultMaxTrackedClients
	}
	if opts.FallbackLabel == "" {
		opts.FallbackLabel = DefaultFallbackLabel
	}

	locators, err := lru.NewWithEvict(opts.MaxClients, func(clientID string, l *Locator) {
		l.StopWatch()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create locator cache: %w", err)
	}

	return &LocationService{
		source:        source,
		reporter:      opts.Reporter,
		geocoder:      opts.Geocoder,
		cfg:           cfg,
		fallbackLabel: opts.FallbackLabel,
		locators:      locators,
	}, nil
}

// Locator returns the locator of clientID, creating it on first use
func (s *LocationService) Locator(clientID string) *Locator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locators.Get(clientID); ok {
		return l
	}
	l := NewLocator(s.source, clientID, s.cfg)
	s.locators.Add(clientID, l)
	return l
}

// Locate returns the client's location, running a one-shot request when the
// client has not been located yet or when refresh is set.
func (s *LocationService) Locate(ctx context.Context, clientID string, refresh bool) LocationStatus {
	l := s.Locator(clientID)
	if refresh || l.State() == StateUninitialized {
		l.Locate(ctx)
	}
	return s.Status(ctx, l)
}

// Status snapshots a locator
func (s *LocationService) Status(ctx context.Context, l *Locator) LocationStatus {
	pos := l.Position()
	return LocationStatus{
		ClientID: l.ClientID(),
		Position: pos,
		State:    l.State(),
		Label:    s.Label(ctx, pos),
		Advisory: l.Advisory(),
	}
}

// Label names a position. Geocoding failures fall back to the generic label.
func (s *LocationService) Label(ctx context.Context, pos entities.GeoPosition) string {
	if pos.IsFallback {
		return s.fallbackLabel
	}
	if s.geocoder == nil {
		return DefaultLocationLabel
	}

	addr, err := s.geocoder.ReverseGeocode(ctx, pos.Lat, pos.Lng)
	if err != nil {
		log.Debug().Err(err).Float64("lat", pos.Lat).Float64("lng", pos.Lng).Msg("Reverse geocoding failed")
		return DefaultLocationLabel
	}
	if label := addr.Label(); label != "" {
		return label
	}
	return DefaultLocationLabel
}

// Report records a device position and relocates the client unless it is watching.
func (s *LocationService) Report(ctx context.Context, report entities.PositionReport) (LocationStatus, error) {
	if s.reporter == nil {
		return LocationStatus{}, errReportingDisabled
	}
	if err := s.reporter.Report(ctx, report); err != nil {
		return LocationStatus{}, err
	}

	l := s.Locator(report.ClientID)
	if l.State() != StateWatching {
		l.Locate(ctx)
	}
	return s.Status(ctx, l), nil
}

// Deny records that the client refused to share its position.
func (s *LocationService) Deny(ctx context.Context, clientID, reason string) (LocationStatus, error) {
	if s.reporter == nil {
		return LocationStatus{}, errReportingDisabled
	}
	if err := s.reporter.Deny(ctx, clientID, reason); err != nil {
		return LocationStatus{}, err
	}

	l := s.Locator(clientID)
	if l.State() == StateUninitialized {
		l.Locate(ctx)
	}
	return s.Status(ctx, l), nil
}

// Stream puts the client's locator in watch mode and returns its position
// updates until ctx is done, along with the status at subscription time. The
// watch is released when the last stream ends.
func (s *LocationService) Stream(ctx context.Context, clientID string) (<-chan entities.GeoPosition, LocationStatus, error) {
	l := s.Locator(clientID)

	// The watch outlives this request when other streams share it.
	if err := l.Watch(context.WithoutCancel(ctx)); err != nil {
		return nil, s.Status(ctx, l), err
	}

	updates, cancel := l.Listen()
	go func() {
		<-ctx.Done()
		cancel()
		if l.Listeners() == 0 {
			l.StopWatch()
		}
	}()

	return updates, s.Status(ctx, l), nil
}

// Close stops every active watch
func (s *LocationService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locators.Purge()
}
