package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/rs/zerolog/log"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
	// BypassParams disables caching when any of these query parameters is
	// present, for responses that depend on per-client state.
	BypassParams []string
}

// CacheMiddleware provides HTTP response caching
type CacheMiddleware struct {
	cache        providers.KeyValueStore
	routeConfigs map[string]CacheConfig
	metrics      *observability.Metrics
}

// NewCacheMiddleware creates a cache middleware for the catalog and search routes.
// searchTTLSeconds applies to /api/search.
func NewCacheMiddleware(cache providers.KeyValueStore, searchTTLSeconds int, metrics *observability.Metrics) *CacheMiddleware {
	if searchTTLSeconds <= 0 {
		searchTTLSeconds = 300
	}
	return &CacheMiddleware{
		cache:   cache,
		metrics: metrics,
		routeConfigs: map[string]CacheConfig{
			"/api/search":       {TTLSeconds: searchTTLSeconds, Enabled: true, BypassParams: []string{"client_id"}},
			"/api/categories":   {TTLSeconds: 3600, Enabled: true},
			"/api/restaurants/": {TTLSeconds: 600, Enabled: true}, // prefix match
			"/api/menu-items/":  {TTLSeconds: 600, Enabled: true}, // prefix match
		},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config, route := m.getRouteConfig(r.URL.Path)
		if !config.Enabled || bypass(r, config.BypassParams) {
			next.ServeHTTP(w, r)
			return
		}

		cacheKey := m.generateCacheKey(r)

		if cached, err := m.cache.Get(r.Context(), cacheKey); err == nil {
			log.Debug().Str("key", cacheKey).Msg("Cache HIT")
			observability.RecordCacheHit(r.Context(), m.metrics, route)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		log.Debug().Str("key", cacheKey).Msg("Cache MISS")
		observability.RecordCacheMiss(r.Context(), m.metrics, route)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}

		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache response")
			}
		}
	})
}

// getRouteConfig gets the cache configuration for a route
func (m *CacheMiddleware) getRouteConfig(path string) (CacheConfig, string) {
	if config, exists := m.routeConfigs[path]; exists {
		return config, path
	}

	// Longest prefix wins for dynamic routes (e.g., /api/restaurants/{id})
	var (
		best    CacheConfig
		matched string
	)
	for pattern, config := range m.routeConfigs {
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(path, pattern) && len(pattern) > len(matched) {
			best, matched = config, pattern
		}
	}
	if matched == "" {
		return CacheConfig{Enabled: false}, path
	}
	return best, matched
}

// generateCacheKey derives a key from method, path and the sorted query.
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	key := fmt.Sprintf("%s:%s", r.Method, r.URL.Path)

	query := r.URL.Query()
	if len(query) > 0 {
		names := make([]string, 0, len(query))
		for name := range query {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			values := query[name]
			sort.Strings(values)
			key += "&" + name + "=" + strings.Join(values, ",")
		}
	}

	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

func bypass(r *http.Request, params []string) bool {
	query := r.URL.Query()
	for _, p := range params {
		if query.Has(p) {
			return true
		}
	}
	return false
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
