package entities

import "time"

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoPosition is the current best-known user location. It is replaced
// wholesale on every update and never mutated in place.
type GeoPosition struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	IsFallback bool      `json:"isFallback"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Coordinates returns the position's lat/lng pair.
func (p GeoPosition) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lng: p.Lng}
}

// PositionFix is one reading produced by a position source.
type PositionFix struct {
	Coordinates
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionReport is a device position pushed by a browser client.
type PositionReport struct {
	ClientID   string    `json:"clientId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	ReportedAt time.Time `json:"reportedAt"`
}

// Fix converts the report into a position fix.
func (r PositionReport) Fix() PositionFix {
	return PositionFix{
		Coordinates: Coordinates{Lat: r.Lat, Lng: r.Lng},
		Accuracy:    r.Accuracy,
		Timestamp:   r.ReportedAt,
	}
}
