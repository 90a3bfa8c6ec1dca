package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFallbackLat, cfg.Geolocation.FallbackLat)
	assert.Equal(t, DefaultFallbackLng, cfg.Geolocation.FallbackLng)
	assert.Equal(t, 5*time.Second, cfg.Geolocation.LocateTimeout)
	assert.Equal(t, 10.0, cfg.Ranking.MaxDistanceKm)
	assert.Equal(t, 8, cfg.Ranking.DishLimit)
	assert.Equal(t, 7, cfg.Ranking.RestaurantLimit)
	assert.Equal(t, "json", cfg.Catalog.Source)
	assert.Equal(t, "mock", cfg.Geolocation.Geocoder)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_RankingOverrides(t *testing.T) {
	t.Setenv("RANKING_MAX_DISTANCE_KM", "15")
	t.Setenv("RANKING_DISH_LIMIT", "12")
	t.Setenv("RANKING_RESTAURANT_LIMIT", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://raune.vn, https://admin.raune.vn ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15.0, cfg.Ranking.MaxDistanceKm)
	assert.Equal(t, 12, cfg.Ranking.DishLimit)
	assert.Equal(t, 4, cfg.Ranking.RestaurantLimit)
	assert.Equal(t, []string{"https://raune.vn", "https://admin.raune.vn"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_ClampsLocateTimeout(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "1s", want: 5 * time.Second},
		{value: "7s", want: 7 * time.Second},
		{value: "30s", want: 10 * time.Second},
		{value: "garbage", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GEO_LOCATE_TIMEOUT", tt.value)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Geolocation.LocateTimeout)
		})
	}
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero max distance", key: "RANKING_MAX_DISTANCE_KM", value: "0"},
		{name: "negative dish limit", key: "RANKING_DISH_LIMIT", value: "-1"},
		{name: "unknown catalog source", key: "CATALOG_SOURCE", value: "mongo"},
		{name: "request cap below default", key: "RANKING_MAX_REQUEST_DISTANCE_KM", value: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
