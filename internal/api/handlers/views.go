package handlers

import (
	"math"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/pkg/geo"
)

// DishView is a ranked dish as rendered by the recommendation list
type DishView struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Price             int64   `json:"price"`
	Rating            float64 `json:"rating"`
	Reviews           int     `json:"reviews"`
	Photo             string  `json:"photo,omitempty"`
	RestaurantID      int64   `json:"restaurantId"`
	RestaurantName    string  `json:"restaurantName"`
	RestaurantAddress string  `json:"restaurantAddress"`
	DistanceKm        float64 `json:"distanceKm"`
	Distance          string  `json:"distance"`
	Score             float64 `json:"score"`
}

// RestaurantView is a ranked restaurant with its distance
type RestaurantView struct {
	*entities.Restaurant
	DistanceKm float64 `json:"distanceKm"`
	Distance   string  `json:"distance"`
	Score      float64 `json:"score"`
}

// MenuItemView is a menu item with its name resolved for one language
type MenuItemView struct {
	ID           int64                  `json:"id"`
	RestaurantID int64                  `json:"restaurantId"`
	Name         string                 `json:"name"`
	Names        entities.LocalizedText `json:"names"`
	Category     string                 `json:"category"`
	Price        int64                  `json:"price"`
	Rating       float64                `json:"rating"`
	Reviews      int                    `json:"reviews"`
	Photo        string                 `json:"photo,omitempty"`
}

func newDishViews(candidates []entities.ScoredCandidate, lang string) []DishView {
	views := make([]DishView, 0, len(candidates))
	for _, c := range candidates {
		if c.MenuItem == nil || c.Restaurant == nil {
			continue
		}
		views = append(views, DishView{
			ID:                c.MenuItem.ID,
			Name:              c.MenuItem.Name.Resolve(lang),
			Category:          c.MenuItem.Category,
			Price:             c.MenuItem.Price,
			Rating:            c.MenuItem.Rating,
			Reviews:           c.MenuItem.Reviews,
			Photo:             c.MenuItem.Photo,
			RestaurantID:      c.Restaurant.ID,
			RestaurantName:    c.Restaurant.Name,
			RestaurantAddress: c.Restaurant.Address,
			DistanceKm:        round(c.DistanceKm, 3),
			Distance:          geo.FormatDistance(c.DistanceKm),
			Score:             round(c.Score, 2),
		})
	}
	return views
}

func newRestaurantViews(candidates []entities.ScoredCandidate) []RestaurantView {
	views := make([]RestaurantView, 0, len(candidates))
	for _, c := range candidates {
		if c.Restaurant == nil {
			continue
		}
		views = append(views, RestaurantView{
			Restaurant: c.Restaurant,
			DistanceKm: round(c.DistanceKm, 3),
			Distance:   geo.FormatDistance(c.DistanceKm),
			Score:      round(c.Score, 2),
		})
	}
	return views
}

func newMenuItemView(item *entities.MenuItem, lang string) MenuItemView {
	return MenuItemView{
		ID:           item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name.Resolve(lang),
		Names:        item.Name,
		Category:     item.Category,
		Price:        item.Price,
		Rating:       item.Rating,
		Reviews:      item.Reviews,
		Photo:        item.Photo,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
