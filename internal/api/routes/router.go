package routes

import (
	"net/http"

	"github.com/raunelaunch/fooddiscovery/internal/api/handlers"
	"github.com/raunelaunch/fooddiscovery/internal/api/middleware"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	recommendationHandler *handlers.RecommendationHandler
	searchHandler         *handlers.SearchHandler
	catalogHandler        *handlers.CatalogHandler
	locationHandler       *handlers.LocationHandler
	profileHandler        *handlers.ProfileHandler
	analyticsHandler      *handlers.AnalyticsHandler
	healthHandler         *handlers.HealthHandler

	sessions        middleware.SessionLookup
	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	recommendationHandler *handlers.RecommendationHandler,
	searchHandler *handlers.SearchHandler,
	catalogHandler *handlers.CatalogHandler,
	locationHandler *handlers.LocationHandler,
	profileHandler *handlers.ProfileHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
	sessions middleware.SessionLookup,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		recommendationHandler: recommendationHandler,
		searchHandler:         searchHandler,
		catalogHandler:        catalogHandler,
		locationHandler:       locationHandler,
		profileHandler:        profileHandler,
		analyticsHandler:      analyticsHandler,
		healthHandler:         healthHandler,

		sessions:        sessions,
		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Live)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Recommendation endpoints
	r.mux.HandleFunc("GET /api/recommendations", r.recommendationHandler.GetRecommendations)
	r.mux.HandleFunc("GET /api/location/stream", r.recommendationHandler.StreamRecommendations)

	// Search endpoints
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/categories", r.catalogHandler.ListCategories)
	r.mux.HandleFunc("GET /api/restaurants/{id}", r.catalogHandler.GetRestaurant)
	r.mux.HandleFunc("GET /api/restaurants/{id}/menu", r.catalogHandler.GetRestaurantMenu)
	r.mux.HandleFunc("GET /api/menu-items/{id}", r.catalogHandler.GetMenuItem)

	// Location endpoints
	r.mux.HandleFunc("GET /api/location", r.locationHandler.GetLocation)
	r.mux.HandleFunc("POST /api/location", r.locationHandler.ReportLocation)

	// Auth and profile endpoints
	requireSession := middleware.RequireSession(r.sessions)
	r.mux.HandleFunc("POST /api/auth/login", r.profileHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", requireSession(r.profileHandler.Logout))
	r.mux.HandleFunc("POST /api/accounts", r.profileHandler.Register)
	r.mux.HandleFunc("GET /api/profile", r.profileHandler.GetProfile)
	r.mux.HandleFunc("PUT /api/profile", requireSession(r.profileHandler.UpdateProfile))
	r.mux.HandleFunc("POST /api/profile/password", requireSession(r.profileHandler.ChangePassword))
	r.mux.HandleFunc("GET /api/profile/avatars", r.profileHandler.ListAvatars)

	// Analytics endpoints, only when search analytics are recorded
	if r.analyticsHandler != nil {
		r.mux.HandleFunc("GET /api/analytics/zero-results", r.analyticsHandler.ZeroResultQueries)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
