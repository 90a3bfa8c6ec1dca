package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/raunelaunch/fooddiscovery/internal/adapters/cache"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reverseFixture = `{
  "status": "OK",
  "results": [{
    "formatted_address": "27 Tràng Tiền, Hoàn Kiếm, Hà Nội, Việt Nam",
    "address_components": [
      {"long_name": "27", "types": ["street_number"]},
      {"long_name": "Hoàn Kiếm", "types": ["administrative_area_level_2", "political"]},
      {"long_name": "Hà Nội", "types": ["administrative_area_level_1", "political"]},
      {"long_name": "Việt Nam", "types": ["country", "political"]}
    ]
  }]
}`

func TestGoogleGeocoder_ReverseGeocodeCaches(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "vi", r.URL.Query().Get("language"))
		assert.NotEmpty(t, r.URL.Query().Get("latlng"))
		_, _ = w.Write([]byte(reverseFixture))
	}))
	defer server.Close()

	store, err := cache.NewMemoryAdapter(16)
	require.NoError(t, err)
	geocoder := NewGoogleGeocoderWithOptions("test-key", store, server.URL, server.Client())

	for i := 0; i < 2; i++ {
		address, err := geocoder.ReverseGeocode(context.Background(), 21.0249, 105.8561)
		require.NoError(t, err)
		assert.Equal(t, "Hoàn Kiếm", address.District)
		assert.Equal(t, "Hà Nội", address.City)
		assert.Equal(t, "Hoàn Kiếm, Hà Nội", address.Label())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGoogleGeocoder_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"API key invalid"}`))
	}))
	defer server.Close()

	_, err := NewGoogleGeocoderWithOptions("bad", nil, server.URL, server.Client()).ReverseGeocode(context.Background(), 21, 105)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.Contains(t, err.Error(), "API key invalid")

	_, err = NewGoogleGeocoder("", nil).ReverseGeocode(context.Background(), 21, 105)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestMockGeocoder(t *testing.T) {
	geocoder := NewMockGeocoder()

	address, err := geocoder.ReverseGeocode(context.Background(), 21.0245, 105.8567)
	require.NoError(t, err)
	assert.Equal(t, "Hoàn Kiếm, Hanoi", address.Label())

	address, err = geocoder.ReverseGeocode(context.Background(), 10.7769, 106.7009)
	require.NoError(t, err)
	assert.Empty(t, address.District)
	assert.Equal(t, "10.7769, 106.7009", address.Label())
}
