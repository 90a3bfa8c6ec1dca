package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Hanoi centre, used whenever no device position is available.
const (
	DefaultFallbackLat = 21.0278
	DefaultFallbackLng = 105.8342
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Catalog     CatalogConfig
	Analytics   AnalyticsConfig
	Geolocation GeolocationConfig
	Ranking     RankingConfig
	Auth        AuthConfig
	CORS        CORSConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Pool sizing; zero selects the client defaults
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// CatalogConfig selects where the restaurant and menu datasets come from.
// Source is "json" (embedded files, or DataDir when set) or "postgres".
type CatalogConfig struct {
	Source  string
	DataDir string
}

// AnalyticsConfig enables search analytics, stored in the Database
type AnalyticsConfig struct {
	Enabled bool
}

// GeolocationConfig holds position source and geocoder configuration
type GeolocationConfig struct {
	FallbackLat    float64
	FallbackLng    float64
	FallbackLabel  string
	LocateTimeout  time.Duration
	MaxReportAge   time.Duration
	Heartbeat      time.Duration
	Geocoder       string
	GeocoderAPIKey string
}

// RankingConfig holds recommendation pipeline defaults
type RankingConfig struct {
	MaxDistanceKm      float64
	DishLimit          int
	RestaurantLimit    int
	FeaturedDishLimit  int
	CacheTTLSeconds    int
	MaxRequestDistance float64
}

// AuthConfig holds mock-auth session configuration
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// CORSConfig holds allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "food_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 0),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 0),
		},
		Catalog: CatalogConfig{
			Source:  strings.ToLower(getEnv("CATALOG_SOURCE", "json")),
			DataDir: getEnv("CATALOG_DATA_DIR", ""),
		},
		Analytics: AnalyticsConfig{
			Enabled: getEnvAsBool("SEARCH_ANALYTICS_ENABLED", false),
		},
		Geolocation: GeolocationConfig{
			FallbackLat:    getEnvAsFloat("GEO_FALLBACK_LAT", DefaultFallbackLat),
			FallbackLng:    getEnvAsFloat("GEO_FALLBACK_LNG", DefaultFallbackLng),
			FallbackLabel:  getEnv("GEO_FALLBACK_LABEL", "Hai Bà Trưng, Hanoi (default)"),
			LocateTimeout:  getEnvAsDuration("GEO_LOCATE_TIMEOUT", 5*time.Second),
			MaxReportAge:   getEnvAsDuration("GEO_MAX_REPORT_AGE", 5*time.Minute),
			Heartbeat:      getEnvAsDuration("GEO_STREAM_HEARTBEAT", 30*time.Second),
			Geocoder:       strings.ToLower(getEnv("GEOCODER_PROVIDER", "mock")),
			GeocoderAPIKey: getEnv("GEOCODER_API_KEY", ""),
		},
		Ranking: RankingConfig{
			MaxDistanceKm:      getEnvAsFloat("RANKING_MAX_DISTANCE_KM", 10),
			DishLimit:          getEnvAsInt("RANKING_DISH_LIMIT", 8),
			RestaurantLimit:    getEnvAsInt("RANKING_RESTAURANT_LIMIT", 7),
			FeaturedDishLimit:  getEnvAsInt("SEARCH_FEATURED_DISH_LIMIT", 3),
			CacheTTLSeconds:    getEnvAsInt("SEARCH_CACHE_TTL_SECONDS", 300),
			MaxRequestDistance: getEnvAsFloat("RANKING_MAX_REQUEST_DISTANCE_KM", 100),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "food-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unusable ranking settings and clamps the locate timeout to 5-10s.
func (c *Config) Validate() error {
	if c.Ranking.MaxDistanceKm <= 0 {
		return fmt.Errorf("RANKING_MAX_DISTANCE_KM must be positive, got %v", c.Ranking.MaxDistanceKm)
	}
	if c.Ranking.MaxRequestDistance < c.Ranking.MaxDistanceKm {
		return fmt.Errorf("RANKING_MAX_REQUEST_DISTANCE_KM (%v) must not be below RANKING_MAX_DISTANCE_KM (%v)",
			c.Ranking.MaxRequestDistance, c.Ranking.MaxDistanceKm)
	}
	if c.Ranking.DishLimit <= 0 || c.Ranking.RestaurantLimit <= 0 || c.Ranking.FeaturedDishLimit <= 0 {
		return fmt.Errorf("ranking limits must be positive")
	}
	switch c.Catalog.Source {
	case "json", "postgres":
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if c.Geolocation.LocateTimeout < 5*time.Second {
		c.Geolocation.LocateTimeout = 5 * time.Second
	}
	if c.Geolocation.LocateTimeout > 10*time.Second {
		c.Geolocation.LocateTimeout = 10 * time.Second
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
