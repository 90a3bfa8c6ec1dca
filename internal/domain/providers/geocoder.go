package providers

import (
	"context"
)

// Geocoder turns a position into a human-readable label (district, city).
type Geocoder interface {
	// ReverseGeocode converts coordinates to an address
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodedAddress, error)
}

// GeocodedAddress represents a geocoded address
type GeocodedAddress struct {
	FormattedAddress string  `json:"formattedAddress"`
	District         string  `json:"district,omitempty"`
	City             string  `json:"city,omitempty"`
	Country          string  `json:"country,omitempty"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// Label returns "District, City" when both are known, else the formatted address.
func (a *GeocodedAddress) Label() string {
	switch {
	case a == nil:
		return ""
	case a.District != "" && a.City != "":
		return a.District + ", " + a.City
	case a.City != "":
		return a.City
	default:
		return a.FormattedAddress
	}
}
