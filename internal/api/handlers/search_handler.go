package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// Searcher filters and sorts restaurants around a position
type Searcher interface {
	Search(ctx context.Context, pos entities.Coordinates, params services.SearchParams) services.SearchResponse
}

// SearchTracker records searches for analytics
type SearchTracker interface {
	TrackSearch(ctx context.Context, event *entities.SearchEvent)
}

// SearchHandler handles the search page
type SearchHandler struct {
	searcher  Searcher
	locations LocationService
	tracker   SearchTracker
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher Searcher, locations LocationService) *SearchHandler {
	return &SearchHandler{
		searcher:  searcher,
		locations: locations,
	}
}

// SetTracker enables search analytics; nil disables them
func (h *SearchHandler) SetTracker(tracker SearchTracker) {
	h.tracker = tracker
}

// SearchResponse wraps the results with the position they were computed for
type SearchResponse struct {
	services.SearchResponse
	Location services.LocationStatus `json:"location"`
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	radius, err := parsePositiveFloat(r, "radius", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	status, err := resolveLocation(r, h.locations)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	params := services.SearchParams{
		Query:      query.Get("q"),
		Categories: splitCategories(query["category"]),
		Sort:       services.ParseSortOrder(query.Get("sort")),
		RadiusKm:   radius,
		Lang:       strings.TrimSpace(query.Get("lang")),
	}

	start := time.Now()
	resp := h.searcher.Search(r.Context(), status.Position.Coordinates(), params)
	if h.tracker != nil {
		h.tracker.TrackSearch(r.Context(), &entities.SearchEvent{
			Query:       params.Query,
			Categories:  params.Categories,
			Sort:        string(resp.Sort),
			RadiusKm:    params.RadiusKm,
			ResultCount: resp.Count,
			LatencyMs:   time.Since(start).Milliseconds(),
			Lat:         status.Position.Lat,
			Lng:         status.Position.Lng,
			ClientID:    query.Get("client_id"),
		})
	}
	respondWithJSON(w, http.StatusOK, SearchResponse{
		SearchResponse: resp,
		Location:       status,
	})
}

// splitCategories accepts both repeated and comma-separated category parameters
func splitCategories(values []string) []string {
	var categories []string
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
	}
	return categories
}
