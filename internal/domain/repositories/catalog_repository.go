package repositories

import (
	"context"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
)

// CatalogRepository defines read access to the restaurant and menu datasets
type CatalogRepository interface {
	// ListRestaurants returns every restaurant ordered by ID
	ListRestaurants(ctx context.Context) ([]*entities.Restaurant, error)

	// ListMenuItems returns every menu item ordered by ID
	ListMenuItems(ctx context.Context) ([]*entities.MenuItem, error)
}

// CatalogWriter loads datasets into a writable store (used by the seeder)
type CatalogWriter interface {
	// UpsertRestaurants inserts or replaces restaurants by ID
	UpsertRestaurants(ctx context.Context, restaurants []*entities.Restaurant) error

	// UpsertMenuItems inserts or replaces menu items by ID
	UpsertMenuItems(ctx context.Context, items []*entities.MenuItem) error
}
