package handlers

import (
	"context"
	"net/http"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

const maxZeroResultLimit = 500

// SearchAnalytics reads recorded searches
type SearchAnalytics interface {
	ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}

// AnalyticsHandler exposes search analytics
type AnalyticsHandler struct {
	analytics SearchAnalytics
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics SearchAnalytics) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// ZeroResultQueries handles GET /api/analytics/zero-results
func (h *AnalyticsHandler) ZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, "limit", 50, maxZeroResultLimit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	events, err := h.analytics.ZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if events == nil {
		events = []*entities.SearchEvent{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": events,
		"count":   len(events),
	})
}
