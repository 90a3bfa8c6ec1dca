package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/raunelaunch/fooddiscovery/internal/api/middleware"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

const (
	maxDishLimit       = 50
	maxRestaurantLimit = 50

	defaultHeartbeat = 30 * time.Second
)

// Ranker ranks dishes and restaurants around a position
type Ranker interface {
	RankDishes(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts services.RankOptions) []entities.ScoredCandidate
	RankRestaurants(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts services.RankOptions) []entities.ScoredCandidate
}

// PreferenceSource supplies the scoring profile for a session token; an empty token is anonymous
type PreferenceSource interface {
	PreferenceProfile(ctx context.Context, token string) (entities.PreferenceProfile, error)
}

// RecommendationHandler serves the home page lists and their live stream
type RecommendationHandler struct {
	ranker             Ranker
	locations          LocationService
	prefs              PreferenceSource
	maxRequestDistance float64
	heartbeat          time.Duration
}

// NewRecommendationHandler creates a new recommendation handler. maxRequestDistance caps
// the max_distance parameter.
func NewRecommendationHandler(ranker Ranker, locations LocationService, prefs PreferenceSource, maxRequestDistance float64) *RecommendationHandler {
	return &RecommendationHandler{
		ranker:             ranker,
		locations:          locations,
		prefs:              prefs,
		maxRequestDistance: maxRequestDistance,
		heartbeat:          defaultHeartbeat,
	}
}

// SetHeartbeat changes the keep-alive interval of streams
func (h *RecommendationHandler) SetHeartbeat(d time.Duration) {
	if d > 0 {
		h.heartbeat = d
	}
}

// RecommendationsResponse is the home page payload
type RecommendationsResponse struct {
	Location      services.LocationStatus `json:"location"`
	MaxDistanceKm float64                 `json:"maxDistanceKm,omitempty"`
	Dishes        []DishView              `json:"dishes"`
	Restaurants   []RestaurantView        `json:"restaurants"`
}

type rankRequest struct {
	maxDistance     float64
	dishLimit       int
	restaurantLimit int
	lang            string
	profile         entities.PreferenceProfile
}

// GetRecommendations handles GET /api/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRankRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	status, err := resolveLocation(r, h.locations)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.rank(r.Context(), status, req))
}

// StreamRecommendations handles GET /api/location/stream
// The client's locator is put in watch mode and every position update is
// answered with a fresh ranking.
func (h *RecommendationHandler) StreamRecommendations(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		respondWithError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	req, err := h.parseRankRequest(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	updates, status, err := h.locations.Stream(ctx, clientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(w, "connected", map[string]interface{}{
		"clientId":  clientID,
		"timestamp": time.Now().UTC(),
	})
	h.sendEvent(w, "recommendations", h.rank(ctx, status, req))
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("client_id", clientID).Msg("Client disconnected from location stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case pos, ok := <-updates:
			if !ok {
				return
			}
			status.Position = pos
			status.State = services.StateWatching
			status.Label = h.locations.Label(ctx, pos)
			h.sendEvent(w, "recommendations", h.rank(ctx, status, req))
			flusher.Flush()
		}
	}
}

func (h *RecommendationHandler) rank(ctx context.Context, status services.LocationStatus, req rankRequest) RecommendationsResponse {
	pos := status.Position.Coordinates()
	dishes := h.ranker.RankDishes(ctx, pos, req.profile, services.RankOptions{
		MaxDistanceKm: req.maxDistance,
		Limit:         req.dishLimit,
	})
	restaurants := h.ranker.RankRestaurants(ctx, pos, req.profile, services.RankOptions{
		MaxDistanceKm: req.maxDistance,
		Limit:         req.restaurantLimit,
	})

	return RecommendationsResponse{
		Location:      status,
		MaxDistanceKm: req.maxDistance,
		Dishes:        newDishViews(dishes, req.lang),
		Restaurants:   newRestaurantViews(restaurants),
	}
}

// parseRankRequest reads the ranking parameters; zero values defer to the ranker's defaults
func (h *RecommendationHandler) parseRankRequest(r *http.Request) (rankRequest, error) {
	var req rankRequest
	var err error

	if req.maxDistance, err = parsePositiveFloat(r, "max_distance", 0); err != nil {
		return req, err
	}
	if h.maxRequestDistance > 0 && req.maxDistance > h.maxRequestDistance {
		return req, validationErrorf("max_distance must not exceed %g km", h.maxRequestDistance)
	}
	if req.dishLimit, err = parseLimit(r, "dishes", 0, maxDishLimit); err != nil {
		return req, err
	}
	if req.restaurantLimit, err = parseLimit(r, "restaurants", 0, maxRestaurantLimit); err != nil {
		return req, err
	}
	req.lang = strings.TrimSpace(r.URL.Query().Get("lang"))

	req.profile, err = h.prefs.PreferenceProfile(r.Context(), middleware.BearerToken(r))
	if err != nil {
		// Ranking still works without preferences.
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("Failed to load preference profile")
		req.profile = entities.PreferenceProfile{}
	}
	return req, nil
}

// sendEvent sends a Server-Sent Event
func (h *RecommendationHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to marshal SSE data")
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
