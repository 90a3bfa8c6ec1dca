package entities

import (
	"time"
)

// SearchEvent represents a single search interaction for analytics.
type SearchEvent struct {
	ID              string    `json:"id" db:"id"`
	Query           string    `json:"query" db:"query"`
	NormalizedQuery string    `json:"normalizedQuery" db:"normalized_query"`
	Categories      []string  `json:"categories" db:"-"`
	Sort            string    `json:"sort" db:"sort"`
	RadiusKm        float64   `json:"radiusKm" db:"radius_km"`
	ResultCount     int       `json:"resultCount" db:"result_count"`
	LatencyMs       int64     `json:"latencyMs" db:"latency_ms"`
	Lat             float64   `json:"lat" db:"lat"`
	Lng             float64   `json:"lng" db:"lng"`
	ClientID        string    `json:"clientId,omitempty" db:"client_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
