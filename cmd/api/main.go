package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/cache"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/catalog"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/database"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/events"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/providers/geolocation"
	"github.com/raunelaunch/fooddiscovery/internal/api/handlers"
	"github.com/raunelaunch/fooddiscovery/internal/api/middleware"
	"github.com/raunelaunch/fooddiscovery/internal/api/routes"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	"github.com/raunelaunch/fooddiscovery/internal/domain/repositories"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/postgres"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/redis"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/raunelaunch/fooddiscovery/pkg/config"
	"github.com/raunelaunch/fooddiscovery/pkg/secrets"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Export Vault secrets before reading configuration
	vaultResult, vaultErr := secrets.NewVaultLoader(secrets.LoadVaultConfigFromEnv()).Apply(context.Background())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	if vaultErr != nil {
		log.Fatal().Err(vaultErr).Msg("Failed to load Vault secrets")
	}
	if vaultResult.Enabled {
		log.Info().Str("path", vaultResult.Path).Int("loaded", vaultResult.Loaded).Int("skipped", vaultResult.Skipped).Msg("Vault secrets loaded")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Key-value store and event bus: Redis when enabled, in-process otherwise
	var (
		store        providers.KeyValueStore
		profileStore providers.KeyValueStore
		eventBus     providers.EventBus
		checks       = map[string]handlers.HealthCheck{}
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		defer redisClient.Close()

		checks["redis"] = redisClient.Ping
		store = cache.NewRedisAdapter(redisClient, "fooddiscovery:")
		profileStore = store
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
	} else {
		memory, err := cache.NewMemoryAdapter(cache.DefaultMemoryEntries)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize memory store")
		}
		store = memory
		// Accounts and sessions must not share the evicting LRU with cached responses
		profileStore = cache.NewDurableMemoryAdapter()
		eventBus = events.NewMemoryEventBus()
		log.Info().Msg("Redis disabled, using in-memory store and event bus")
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// PostgreSQL backs the catalog and search analytics when either is configured
	var pgClient *postgres.Client
	if cfg.Catalog.Source == "postgres" || cfg.Analytics.Enabled {
		pgClient, err = postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		checks["postgres"] = pgClient.Ping
	}

	// Load the catalog once; it is immutable afterwards
	catalogRepo := newCatalogRepository(cfg, pgClient)
	catalogData, err := services.LoadCatalog(ctx, catalogRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	// Services
	recommendationService := services.NewRecommendationService(catalogData, cfg.Ranking.MaxDistanceKm, cfg.Ranking.DishLimit, cfg.Ranking.RestaurantLimit)
	searchService := services.NewSearchService(catalogData, cfg.Ranking.FeaturedDishLimit)

	positionSource := geolocation.NewReportedPositionSource(store, eventBus, cfg.Geolocation.MaxReportAge)
	locationService, err := services.NewLocationService(positionSource, services.LocatorConfig{
		Fallback: entities.Coordinates{Lat: cfg.Geolocation.FallbackLat, Lng: cfg.Geolocation.FallbackLng},
		Timeout:  cfg.Geolocation.LocateTimeout,
	}, services.LocationServiceOptions{
		Reporter:      positionSource,
		Geocoder:      newGeocoder(cfg, store),
		FallbackLabel: cfg.Geolocation.FallbackLabel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize location service")
	}
	defer locationService.Close()

	profileService, err := services.NewProfileService(profileStore, accountSeed(catalogRepo), sessionSecret(cfg), cfg.Auth.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize profile service")
	}
	if err := profileService.InitializeAccounts(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize seed accounts")
	}

	// Search analytics
	var analyticsHandler *handlers.AnalyticsHandler
	searchHandler := handlers.NewSearchHandler(searchService, locationService)
	if cfg.Analytics.Enabled {
		analyticsRepo := database.NewSearchAnalyticsAdapter(pgClient)
		if err := analyticsRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create search analytics schema")
		}
		analyticsService := services.NewSearchAnalyticsService(analyticsRepo)
		defer analyticsService.Close()

		searchHandler.SetTracker(analyticsService)
		analyticsHandler = handlers.NewAnalyticsHandler(analyticsService)
		log.Info().Msg("Search analytics enabled")
	}

	// Handlers
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, locationService, profileService, cfg.Ranking.MaxRequestDistance)
	recommendationHandler.SetHeartbeat(cfg.Geolocation.Heartbeat)

	router := routes.NewRouter(
		recommendationHandler,
		searchHandler,
		handlers.NewCatalogHandler(catalogData),
		handlers.NewLocationHandler(locationService),
		handlers.NewProfileHandler(profileService),
		analyticsHandler,
		handlers.NewHealthHandler(checks),
		profileService,
		middleware.NewCacheMiddleware(store, cfg.Ranking.CacheTTLSeconds, metrics),
		cfg.CORS.AllowedOrigins,
		metrics,
	)

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: location streams stay open
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", serverAddr).
			Int("restaurants", len(catalogData.Restaurants())).
			Int("dishes", len(catalogData.Dishes())).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newCatalogRepository picks the configured catalog source
func newCatalogRepository(cfg *config.Config, pgClient *postgres.Client) repositories.CatalogRepository {
	switch cfg.Catalog.Source {
	case "postgres":
		log.Info().Str("host", cfg.Database.Host).Msg("Loading catalog from PostgreSQL")
		return database.NewCatalogAdapter(pgClient)
	default:
		if cfg.Catalog.DataDir != "" {
			log.Info().Str("dir", cfg.Catalog.DataDir).Msg("Loading catalog from JSON directory")
			return catalog.NewDirJSONAdapter(cfg.Catalog.DataDir)
		}
		log.Info().Msg("Loading embedded catalog")
		return catalog.NewEmbeddedJSONAdapter()
	}
}

// accountSeed returns the seed accounts source; the Postgres catalog carries
// no accounts, so the embedded dataset seeds them
func accountSeed(repo repositories.CatalogRepository) repositories.AccountSeedRepository {
	if seed, ok := repo.(repositories.AccountSeedRepository); ok {
		return seed
	}
	return catalog.NewEmbeddedJSONAdapter()
}

func newGeocoder(cfg *config.Config, store providers.KeyValueStore) providers.Geocoder {
	if cfg.Geolocation.Geocoder == "google" && cfg.Geolocation.GeocoderAPIKey != "" {
		log.Info().Msg("Using Google reverse geocoder")
		return geolocation.NewGoogleGeocoder(cfg.Geolocation.GeocoderAPIKey, store)
	}
	return geolocation.NewMockGeocoder()
}

// sessionSecret returns the configured JWT secret. Development runs without
// one get a random secret, which invalidates sessions on restart.
func sessionSecret(cfg *config.Config) string {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret
	}
	if !cfg.IsDevelopment() {
		log.Fatal().Msg("JWT_SECRET is required outside development")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("Failed to generate session secret")
	}
	log.Warn().Msg("JWT_SECRET not set, using a random development secret")
	return hex.EncodeToString(buf)
}
