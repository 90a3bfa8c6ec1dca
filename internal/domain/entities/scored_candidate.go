package entities

// PreferenceProfile biases scoring: liked categories and previously visited restaurants.
type PreferenceProfile struct {
	Prefs   []string `json:"prefs"`
	History []int64  `json:"history"`
}

// PrefersCategory reports whether category is one of the liked categories.
func (p PreferenceProfile) PrefersCategory(category string) bool {
	for _, c := range p.Prefs {
		if c == category {
			return true
		}
	}
	return false
}

// Visited reports whether restaurantID appears in the history.
func (p PreferenceProfile) Visited(restaurantID int64) bool {
	for _, id := range p.History {
		if id == restaurantID {
			return true
		}
	}
	return false
}

// ScoredCandidate is a transient ranking result. MenuItem is nil for restaurant-level results.
type ScoredCandidate struct {
	Restaurant *Restaurant `json:"restaurant"`
	MenuItem   *MenuItem   `json:"menu,omitempty"`
	DistanceKm float64     `json:"distance"`
	Score      float64     `json:"score"`
}
