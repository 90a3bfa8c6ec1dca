package services

import (
	"context"
	"sort"
	"strings"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/pkg/geo"
	"github.com/raunelaunch/fooddiscovery/pkg/utils"
)

// DefaultFeaturedDishLimit is the number of dishes shown per search result.
const DefaultFeaturedDishLimit = 3

// SortOrder orders search results.
type SortOrder string

const (
	SortByRating   SortOrder = "rating"
	SortByDistance SortOrder = "distance"
	SortByReviews  SortOrder = "reviews"
)

// ParseSortOrder maps a request value to a sort order; unknown values sort by rating.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDistance:
		return SortByDistance
	case SortByReviews:
		return SortByReviews
	default:
		return SortByRating
	}
}

// SearchParams holds search and filter inputs
type SearchParams struct {
	Query      string
	Categories []string
	Sort       SortOrder
	RadiusKm   float64
	Lang       string
}

// FeaturedDish is a dish shown under a search result
type FeaturedDish struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    int64   `json:"price"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	Photo    string  `json:"photo,omitempty"`
}

// SearchResult is one matching restaurant
type SearchResult struct {
	Restaurant *entities.Restaurant `json:"restaurant"`
	DistanceKm float64              `json:"distanceKm"`
	Distance   string               `json:"distance"`
	Dishes     []FeaturedDish       `json:"dishes"`
}

// SearchResponse represents search results
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
	Query   string         `json:"query,omitempty"`
	Sort    SortOrder      `json:"sort"`
}

// SearchService filters and sorts restaurants for the search page.
type SearchService struct {
	catalog       *Catalog
	featuredLimit int
}

// NewSearchService creates a search service over catalog
func NewSearchService(catalog *Catalog, featuredLimit int) *SearchService {
	if featuredLimit <= 0 {
		featuredLimit = DefaultFeaturedDishLimit
	}
	return &SearchService{catalog: catalog, featuredLimit: featuredLimit}
}

// Search filters restaurants by query, category and radius around pos, attaches
// featured dishes and sorts. A blank query matches everything.
func (s *SearchService) Search(ctx context.Context, pos entities.Coordinates, params SearchParams) SearchResponse {
	query := strings.TrimSpace(params.Query)
	categories := categoryFilter(params.Categories)
	order := params.Sort
	if order == "" {
		order = SortByRating
	}

	results := make([]SearchResult, 0)
	for _, r := range s.catalog.Restaurants() {
		menu := s.catalog.MenuFor(r.ID)

		var matchingDishes []*entities.MenuItem
		if query != "" {
			matchingDishes = filterDishes(menu, query)
			if !restaurantMatches(r, query) && len(matchingDishes) == 0 {
				continue
			}
		}

		if categories != nil {
			if _, ok := categories[string(r.Category)]; !ok {
				continue
			}
		}

		distance := geo.Distance(pos.Lat, pos.Lng, r.Lat, r.Lng)
		if params.RadiusKm > 0 && distance > params.RadiusKm {
			continue
		}

		results = append(results, SearchResult{
			Restaurant: r,
			DistanceKm: distance,
			Distance:   geo.FormatDistance(distance),
			Dishes:     s.featured(menu, matchingDishes, query, params.Lang),
		})
	}

	sortResults(results, order)

	return SearchResponse{
		Results: results,
		Count:   len(results),
		Query:   query,
		Sort:    order,
	}
}

// featured picks the dishes shown under a result: the first matching dishes
// for a query (or the first dishes when none match), otherwise the best rated.
func (s *SearchService) featured(menu, matching []*entities.MenuItem, query, lang string) []FeaturedDish {
	var picked []*entities.MenuItem
	switch {
	case query != "" && len(matching) > 0:
		picked = matching
	case query != "":
		picked = menu
	default:
		picked = make([]*entities.MenuItem, len(menu))
		copy(picked, menu)
		sort.SliceStable(picked, func(i, j int) bool {
			return picked[i].Rating > picked[j].Rating
		})
	}

	if len(picked) > s.featuredLimit {
		picked = picked[:s.featuredLimit]
	}

	dishes := make([]FeaturedDish, 0, len(picked))
	for _, item := range picked {
		dishes = append(dishes, FeaturedDish{
			ID:       item.ID,
			Name:     item.Name.Resolve(lang),
			Category: item.Category,
			Price:    item.Price,
			Rating:   item.Rating,
			Reviews:  item.Reviews,
			Photo:    item.Photo,
		})
	}
	return dishes
}

func restaurantMatches(r *entities.Restaurant, query string) bool {
	if utils.FlexibleMatch(r.Name, query) ||
		utils.FlexibleMatch(string(r.Category), query) ||
		utils.FlexibleMatch(r.Address, query) {
		return true
	}
	for _, tag := range r.Tags {
		if utils.FlexibleMatch(tag, query) {
			return true
		}
	}
	return false
}

func filterDishes(menu []*entities.MenuItem, query string) []*entities.MenuItem {
	var matches []*entities.MenuItem
	for _, item := range menu {
		if dishMatches(item, query) {
			matches = append(matches, item)
		}
	}
	return matches
}

func dishMatches(item *entities.MenuItem, query string) bool {
	if utils.FlexibleMatch(item.Category, query) {
		return true
	}
	for _, name := range item.Name.All() {
		if utils.FlexibleMatch(name, query) {
			return true
		}
	}
	return false
}

// categoryFilter returns nil when no category filter applies.
func categoryFilter(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.EqualFold(c, string(entities.CategoryAll)) {
			return nil
		}
		set[c] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func sortResults(results []SearchResult, order SortOrder) {
	var less func(a, b SearchResult) bool
	switch order {
	case SortByDistance:
		less = func(a, b SearchResult) bool { return a.DistanceKm < b.DistanceKm }
	case SortByReviews:
		less = func(a, b SearchResult) bool { return a.Restaurant.Reviews > b.Restaurant.Reviews }
	default:
		less = func(a, b SearchResult) bool { return a.Restaurant.Rating > b.Restaurant.Rating }
	}
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}
