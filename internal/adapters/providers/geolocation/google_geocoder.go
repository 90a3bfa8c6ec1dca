package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/raunelaunch/fooddiscovery/internal/domain/providers"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultReverseCacheTTL = 60 * 60 * 24 * 30
	defaultHTTPTimeout     = 8 * time.Second
)

// GoogleGeocoder labels positions using the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey     string
	language   string
	httpClient *http.Client
	cache      providers.KeyValueStore
	baseURL    string
}

// NewGoogleGeocoder creates a new Google reverse geocoder. cache may be nil.
func NewGoogleGeocoder(apiKey string, cache providers.KeyValueStore) *GoogleGeocoder {
	return NewGoogleGeocoderWithOptions(apiKey, cache, googleGeocodeURL, nil)
}

// NewGoogleGeocoderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleGeocoderWithOptions(apiKey string, cache providers.KeyValueStore, baseURL string, httpClient *http.Client) *GoogleGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleGeocoder{
		apiKey:     apiKey,
		language:   "vi",
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
	}
}

// ReverseGeocode converts coordinates to an address.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*providers.GeocodedAddress, error) {
	cacheKey := "geo:v1:reverse:" + hashKey(fmt.Sprintf("%.4f,%.4f", lat, lng))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var address providers.GeocodedAddress
			if err := json.Unmarshal(cached, &address); err == nil && address.FormattedAddress != "" {
				return &address, nil
			}
		}
	}

	resp, err := g.doGeocodeRequest(ctx, url.Values{"latlng": []string{fmt.Sprintf("%f,%f", lat, lng)}})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, apperrors.NewNotFoundError("no results for coordinates")
	}

	result := resp.Results[0]
	address := providers.GeocodedAddress{
		FormattedAddress: result.FormattedAddress,
		District:         component(result.AddressComponents, "sublocality_level_1", "administrative_area_level_2", "sublocality"),
		City:             component(result.AddressComponents, "administrative_area_level_1", "locality"),
		Country:          component(result.AddressComponents, "country"),
		Lat:              lat,
		Lng:              lng,
	}

	if g.cache != nil {
		if payload, err := json.Marshal(address); err == nil {
			_ = g.cache.Set(ctx, cacheKey, payload, defaultReverseCacheTTL)
		}
	}

	return &address, nil
}

func (g *GoogleGeocoder) doGeocodeRequest(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	if g.apiKey == "" {
		return nil, apperrors.NewExternalError("google maps api key is required", nil)
	}

	params.Set("key", g.apiKey)
	if g.language != "" {
		params.Set("language", g.language)
	}
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build geocode request", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("geocode request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("geocode request returned status %d", resp.StatusCode), nil)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("failed to decode geocode response", err)
	}

	switch payload.Status {
	case "OK":
		return &payload, nil
	case "ZERO_RESULTS":
		return nil, apperrors.NewNotFoundError("no results for coordinates")
	default:
		if payload.ErrorMessage != "" {
			return nil, apperrors.NewExternalError(fmt.Sprintf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage), nil)
		}
		return nil, apperrors.NewExternalError("geocode request failed: "+payload.Status, nil)
	}
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func component(components []googleAddressComponent, primary string, fallback ...string) string {
	for _, t := range append([]string{primary}, fallback...) {
		for _, comp := range components {
			if containsType(comp.Types, t) {
				return comp.LongName
			}
		}
	}
	return ""
}

func containsType(types []string, target string) bool {
	for _, t := range types {
		if t == target {
			return true
		}
	}
	return false
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
}

type googleAddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}
