package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	reportKeyPrefix = "position:report:"
	deniedKeyPrefix = "position:denied:"
)

// ReportedPositionSource serves device positions pushed by browser clients.
// The latest report per client is kept in the key-value store for maxAge and
// every report or denial is fanned out over the event bus.
type ReportedPositionSource struct {
	store  providers.KeyValueStore
	bus    providers.EventBus
	maxAge time.Duration
	now    func() time.Time
}

// NewReportedPositionSource creates a position source fed by client reports
func NewReportedPositionSource(store providers.KeyValueStore, bus providers.EventBus, maxAge time.Duration) *ReportedPositionSource {
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &ReportedPositionSource{
		store:  store,
		bus:    bus,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Report stores and broadcasts a device position.
func (s *ReportedPositionSource) Report(ctx context.Context, report entities.PositionReport) error {
	if report.ClientID == "" {
		return apperrors.NewValidationError("client_id is required")
	}
	if report.Lat < -90 || report.Lat > 90 || report.Lng < -180 || report.Lng > 180 {
		return apperrors.NewValidationError(fmt.Sprintf("coordinates out of range: %v, %v", report.Lat, report.Lng))
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = s.now()
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.NewInternalError("failed to encode position report", err)
	}
	if err := s.store.Set(ctx, reportKeyPrefix+report.ClientID, payload, int(s.maxAge/time.Second)); err != nil {
		return apperrors.NewInternalError("failed to store position report", err)
	}
	if err := s.store.Delete(ctx, deniedKeyPrefix+report.ClientID); err != nil {
		log.Warn().Err(err).Str("client_id", report.ClientID).Msg("Failed to clear position denial")
	}

	if err := s.bus.Publish(ctx, providers.GetPositionChannel(report.ClientID), entities.NewPositionReportedEvent(report)); err != nil {
		log.Warn().Err(err).Str("client_id", report.ClientID).Msg("Failed to publish position report")
	}
	return nil
}

// Deny records that the client refused or failed to share its position.
func (s *ReportedPositionSource) Deny(ctx context.Context, clientID, reason string) error {
	if clientID == "" {
		return apperrors.NewValidationError("client_id is required")
	}
	if err := s.store.Delete(ctx, reportKeyPrefix+clientID); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to clear position report")
	}
	if reason == "" {
		reason = "user denied geolocation"
	}
	if err := s.store.Set(ctx, deniedKeyPrefix+clientID, []byte(reason), int(s.maxAge/time.Second)); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to store position denial")
	}
	if err := s.bus.Publish(ctx, providers.GetPositionChannel(clientID), entities.NewPositionDeniedEvent(clientID, reason)); err != nil {
		return apperrors.NewInternalError("failed to publish position denial", err)
	}
	return nil
}

// CurrentPosition returns the stored report when fresh enough, otherwise waits
// up to opts.Timeout for the client to report.
func (s *ReportedPositionSource) CurrentPosition(ctx context.Context, clientID string, opts providers.PositionOptions) (*entities.PositionFix, error) {
	if clientID == "" {
		return nil, apperrors.NewPositionUnavailableError("geolocation not supported: no client id", nil)
	}

	if fix, ok := s.stored(ctx, clientID, opts.MaximumAge); ok {
		return fix, nil
	}
	if reason, denied := s.denied(ctx, clientID); denied {
		return nil, apperrors.NewPositionUnavailableError("permission denied: "+reason, nil)
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	events, err := s.bus.Subscribe(waitCtx, providers.GetPositionChannel(clientID))
	if err != nil {
		return nil, apperrors.NewPositionUnavailableError("failed to subscribe for position", err)
	}

	// A report may have landed between the first read and the subscription.
	if fix, ok := s.stored(ctx, clientID, opts.MaximumAge); ok {
		return fix, nil
	}

	for {
		select {
		case <-waitCtx.Done():
			return nil, apperrors.NewPositionUnavailableError("timeout expired", waitCtx.Err())
		case event, ok := <-events:
			if !ok {
				return nil, apperrors.NewPositionUnavailableError("timeout expired", waitCtx.Err())
			}
			switch event.EventType {
			case entities.PositionEventTypeReported:
				fix := event.Report.Fix()
				return &fix, nil
			case entities.PositionEventTypeDenied:
				return nil, apperrors.NewPositionUnavailableError("permission denied: "+event.Reason, nil)
			}
		}
	}
}

// WatchPosition streams every report and denial for clientID until stopped.
func (s *ReportedPositionSource) WatchPosition(ctx context.Context, clientID string, opts providers.PositionOptions) (providers.PositionWatch, error) {
	if clientID == "" {
		return nil, apperrors.NewPositionUnavailableError("geolocation not supported: no client id", nil)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.bus.Subscribe(watchCtx, providers.GetPositionChannel(clientID))
	if err != nil {
		cancel()
		return nil, apperrors.NewPositionUnavailableError("failed to subscribe for position", err)
	}

	w := newPositionWatch(cancel)
	go func() {
		defer close(w.updates)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				var update providers.PositionUpdate
				switch event.EventType {
				case entities.PositionEventTypeReported:
					fix := event.Report.Fix()
					update.Fix = &fix
				case entities.PositionEventTypeDenied:
					update.Err = apperrors.NewPositionUnavailableError("permission denied: "+event.Reason, nil)
				default:
					continue
				}
				if !w.send(watchCtx, update) {
					return
				}
			}
		}
	}()

	return w, nil
}

func (s *ReportedPositionSource) stored(ctx context.Context, clientID string, maximumAge time.Duration) (*entities.PositionFix, bool) {
	payload, err := s.store.Get(ctx, reportKeyPrefix+clientID)
	if err != nil {
		if !errors.Is(err, providers.ErrKeyNotFound) {
			log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to read position report")
		}
		return nil, false
	}

	var report entities.PositionReport
	if err := json.Unmarshal(payload, &report); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("Discarding malformed position report")
		return nil, false
	}

	if maximumAge > 0 && s.now().Sub(report.ReportedAt) > maximumAge {
		return nil, false
	}

	fix := report.Fix()
	return &fix, true
}

func (s *ReportedPositionSource) denied(ctx context.Context, clientID string) (string, bool) {
	reason, err := s.store.Get(ctx, deniedKeyPrefix+clientID)
	if err != nil {
		return "", false
	}
	return string(reason), true
}
