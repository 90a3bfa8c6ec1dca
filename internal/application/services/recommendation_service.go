package services

import (
	"context"
	"sort"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/raunelaunch/fooddiscovery/pkg/geo"
)

const (
	DefaultMaxDistanceKm   = 10.0
	DefaultDishLimit       = 8
	DefaultRestaurantLimit = 7
)

// ScoringWeights holds the coefficients of one scoring formula:
//
//	score = pref·[category ∈ prefs] + rating·Rating + distance·(maxD − d) + history·[restaurant ∈ history]
type ScoringWeights struct {
	Preference float64
	Rating     float64
	Distance   float64
	History    float64
}

var (
	// DishWeights scores menu items.
	DishWeights = ScoringWeights{Preference: 3, Rating: 1, Distance: 2, History: 1}

	// RestaurantWeights scores restaurants. Rating and history count double compared to dishes.
	RestaurantWeights = ScoringWeights{Preference: 3, Rating: 2, Distance: 2, History: 2}
)

// Score applies the weights. ok is false when distanceKm exceeds maxDistanceKm;
// a candidate exactly at the boundary is kept with a zero distance bonus.
func (w ScoringWeights) Score(category string, rating float64, restaurantID int64, distanceKm, maxDistanceKm float64, profile entities.PreferenceProfile) (score float64, ok bool) {
	if distanceKm > maxDistanceKm {
		return 0, false
	}
	if profile.PrefersCategory(category) {
		score += w.Preference
	}
	score += rating * w.Rating
	score += (maxDistanceKm - distanceKm) * w.Distance
	if profile.Visited(restaurantID) {
		score += w.History
	}
	return score, true
}

// RankOptions bounds one ranking run. Zero values take the service defaults.
type RankOptions struct {
	MaxDistanceKm float64
	Limit         int
}

// RecommendationService ranks dishes and restaurants around a position.
// Ranking is synchronous and pure over the immutable catalog.
type RecommendationService struct {
	catalog         *Catalog
	maxDistanceKm   float64
	dishLimit       int
	restaurantLimit int
}

// NewRecommendationService creates a ranking service; non-positive settings take the built-in defaults
func NewRecommendationService(catalog *Catalog, maxDistanceKm float64, dishLimit, restaurantLimit int) *RecommendationService {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	if dishLimit <= 0 {
		dishLimit = DefaultDishLimit
	}
	if restaurantLimit <= 0 {
		restaurantLimit = DefaultRestaurantLimit
	}
	return &RecommendationService{
		catalog:         catalog,
		maxDistanceKm:   maxDistanceKm,
		dishLimit:       dishLimit,
		restaurantLimit: restaurantLimit,
	}
}

// Catalog returns the catalog the service ranks over
func (s *RecommendationService) Catalog() *Catalog {
	return s.catalog
}

// RankDishes returns at most opts.Limit dishes within opts.MaxDistanceKm, best first.
func (s *RecommendationService) RankDishes(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts RankOptions) []entities.ScoredCandidate {
	opts = s.withDefaults(opts, s.dishLimit)
	start := time.Now()

	dishes := s.catalog.Dishes()
	scored := make([]entities.ScoredCandidate, 0, len(dishes))
	for _, d := range dishes {
		distance := geo.Distance(pos.Lat, pos.Lng, d.Restaurant.Lat, d.Restaurant.Lng)
		score, ok := DishWeights.Score(d.Item.Category, d.Item.Rating, d.Restaurant.ID, distance, opts.MaxDistanceKm, profile)
		if !ok {
			continue
		}
		scored = append(scored, entities.ScoredCandidate{
			Restaurant: d.Restaurant,
			MenuItem:   d.Item,
			DistanceKm: distance,
			Score:      score,
		})
	}

	result := rankTop(scored, opts.Limit)
	observability.RecordRankingMetric(ctx, "dishes", len(dishes), len(result), time.Since(start))
	return result
}

// RankRestaurants returns at most opts.Limit restaurants within opts.MaxDistanceKm, best first.
func (s *RecommendationService) RankRestaurants(ctx context.Context, pos entities.Coordinates, profile entities.PreferenceProfile, opts RankOptions) []entities.ScoredCandidate {
	opts = s.withDefaults(opts, s.restaurantLimit)
	start := time.Now()

	restaurants := s.catalog.Restaurants()
	scored := make([]entities.ScoredCandidate, 0, len(restaurants))
	for _, r := range restaurants {
		distance := geo.Distance(pos.Lat, pos.Lng, r.Lat, r.Lng)
		score, ok := RestaurantWeights.Score(string(r.Category), r.Rating, r.ID, distance, opts.MaxDistanceKm, profile)
		if !ok {
			continue
		}
		scored = append(scored, entities.ScoredCandidate{
			Restaurant: r,
			DistanceKm: distance,
			Score:      score,
		})
	}

	result := rankTop(scored, opts.Limit)
	observability.RecordRankingMetric(ctx, "restaurants", len(restaurants), len(result), time.Since(start))
	return result
}

func (s *RecommendationService) withDefaults(opts RankOptions, limit int) RankOptions {
	if opts.MaxDistanceKm <= 0 {
		opts.MaxDistanceKm = s.maxDistanceKm
	}
	if opts.Limit <= 0 {
		opts.Limit = limit
	}
	return opts
}

// rankTop sorts by score descending, keeping input order among ties, and truncates.
func rankTop(scored []entities.ScoredCandidate, limit int) []entities.ScoredCandidate {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
