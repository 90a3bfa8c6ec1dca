package services

import (
	"context"
	"fmt"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// Dish is a menu item joined to the restaurant that serves it.
type Dish struct {
	Item       *entities.MenuItem
	Restaurant *entities.Restaurant
}

// Catalog is the immutable in-memory view of restaurants and menus. It is
// built once and is safe for concurrent readers.
type Catalog struct {
	restaurants  []*entities.Restaurant
	byID         map[int64]*entities.Restaurant
	dishes       []Dish
	itemsByID    map[int64]Dish
	menuByRestID map[int64][]*entities.MenuItem
}

// NewCatalog joins items to restaurants, keeping input order. Items whose
// restaurant does not exist are dropped.
func NewCatalog(restaurants []*entities.Restaurant, items []*entities.MenuItem) *Catalog {
	c := &Catalog{
		restaurants:  make([]*entities.Restaurant, 0, len(restaurants)),
		byID:         make(map[int64]*entities.Restaurant, len(restaurants)),
		dishes:       make([]Dish, 0, len(items)),
		itemsByID:    make(map[int64]Dish, len(items)),
		menuByRestID: make(map[int64][]*entities.MenuItem),
	}

	for _, r := range restaurants {
		if r == nil {
			continue
		}
		if _, dup := c.byID[r.ID]; dup {
			log.Warn().Int64("restaurant_id", r.ID).Msg("Duplicate restaurant id, keeping first")
			continue
		}
		c.byID[r.ID] = r
		c.restaurants = append(c.restaurants, r)
	}

	orphans := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		restaurant, ok := c.byID[item.RestaurantID]
		if !ok {
			orphans++
			continue
		}
		dish := Dish{Item: item, Restaurant: restaurant}
		c.dishes = append(c.dishes, dish)
		c.itemsByID[item.ID] = dish
		c.menuByRestID[item.RestaurantID] = append(c.menuByRestID[item.RestaurantID], item)
	}

	if orphans > 0 {
		log.Debug().Int("orphans", orphans).Msg("Dropped menu items without a restaurant")
	}

	return c
}

// LoadCatalog builds a Catalog from a repository
func LoadCatalog(ctx context.Context, repo repositories.CatalogRepository) (*Catalog, error) {
	restaurants, err := repo.ListRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}
	items, err := repo.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}

	c := NewCatalog(restaurants, items)
	log.Info().Int("restaurants", len(c.restaurants)).Int("dishes", len(c.dishes)).Msg("Catalog loaded")
	return c, nil
}

// Restaurants returns all restaurants in input order. Callers must not modify the slice.
func (c *Catalog) Restaurants() []*entities.Restaurant {
	return c.restaurants
}

// Dishes returns all joined dishes in input order. Callers must not modify the slice.
func (c *Catalog) Dishes() []Dish {
	return c.dishes
}

// Restaurant looks up a restaurant by ID
func (c *Catalog) Restaurant(id int64) (*entities.Restaurant, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// MenuItem looks up a dish by menu item ID
func (c *Catalog) MenuItem(id int64) (Dish, bool) {
	d, ok := c.itemsByID[id]
	return d, ok
}

// MenuFor returns the menu of a restaurant in input order
func (c *Catalog) MenuFor(restaurantID int64) []*entities.MenuItem {
	return c.menuByRestID[restaurantID]
}
