package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// LocationService resolves and tracks per-client device positions
type LocationService interface {
	Locate(ctx context.Context, clientID string, refresh bool) services.LocationStatus
	Label(ctx context.Context, pos entities.GeoPosition) string
	Report(ctx context.Context, report entities.PositionReport) (services.LocationStatus, error)
	Deny(ctx context.Context, clientID, reason string) (services.LocationStatus, error)
	Stream(ctx context.Context, clientID string) (<-chan entities.GeoPosition, services.LocationStatus, error)
}

// LocationHandler handles device position requests
type LocationHandler struct {
	locations LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// PositionRequest is the body of POST /api/location
type PositionRequest struct {
	ClientID string  `json:"clientId"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
	Denied   bool    `json:"denied,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

// GetLocation handles GET /api/location
// A request without client_id is assigned one and answered with the fallback position.
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		status := h.locations.Locate(r.Context(), "", false)
		status.ClientID = uuid.NewString()
		respondWithJSON(w, http.StatusOK, status)
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	respondWithJSON(w, http.StatusOK, h.locations.Locate(r.Context(), clientID, refresh))
}

// ReportLocation handles POST /api/location
func (h *LocationHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if strings.TrimSpace(req.ClientID) == "" {
		respondWithError(w, http.StatusBadRequest, "clientId is required")
		return
	}

	var (
		status services.LocationStatus
		err    error
	)
	if req.Denied {
		status, err = h.locations.Deny(r.Context(), req.ClientID, req.Reason)
	} else {
		status, err = h.locations.Report(r.Context(), entities.PositionReport{
			ClientID:   req.ClientID,
			Lat:        req.Lat,
			Lng:        req.Lng,
			Accuracy:   req.Accuracy,
			ReportedAt: time.Now().UTC(),
		})
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// resolveLocation picks the position a request is served for. Explicit
// lat/lng win over the client's locator.
func resolveLocation(r *http.Request, locations LocationService) (services.LocationStatus, error) {
	coords, err := parseCoordinates(r)
	if err != nil {
		return services.LocationStatus{}, err
	}

	ctx := r.Context()
	if coords != nil {
		pos := entities.GeoPosition{
			Lat:       coords.Lat,
			Lng:       coords.Lng,
			UpdatedAt: time.Now().UTC(),
		}
		return services.LocationStatus{
			Position: pos,
			State:    services.StateLocated,
			Label:    locations.Label(ctx, pos),
		}, nil
	}

	return locations.Locate(ctx, strings.TrimSpace(r.URL.Query().Get("client_id")), false), nil
}
