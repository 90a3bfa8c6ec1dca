package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
)

const (
	restaurantsTable = "restaurants"
	menuItemsTable   = "menu_items"
)

// CatalogSchema creates the catalog tables. Menu item names are JSONB so both
// plain strings and per-language objects survive a round trip.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS restaurants (
	id       BIGINT PRIMARY KEY,
	name     TEXT NOT NULL,
	address  TEXT NOT NULL DEFAULT '',
	lat      DOUBLE PRECISION NOT NULL,
	lng      DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	rating   DOUBLE PRECISION NOT NULL DEFAULT 0,
	reviews  INTEGER NOT NULL DEFAULT 0,
	tags     TEXT[] NOT NULL DEFAULT '{}',
	photo    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS menu_items (
	id            BIGINT PRIMARY KEY,
	restaurant_id BIGINT NOT NULL,
	name          JSONB NOT NULL,
	category      TEXT NOT NULL,
	price         BIGINT NOT NULL DEFAULT 0,
	rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
	reviews       INTEGER NOT NULL DEFAULT 0,
	photo         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant_id ON menu_items (restaurant_id);
`

type restaurantRow struct {
	ID       int64          `db:"id"`
	Name     string         `db:"name"`
	Address  string         `db:"address"`
	Lat      float64        `db:"lat"`
	Lng      float64        `db:"lng"`
	Category string         `db:"category"`
	Rating   float64        `db:"rating"`
	Reviews  int            `db:"reviews"`
	Tags     pq.StringArray `db:"tags"`
	Photo    string         `db:"photo"`
}

func (r restaurantRow) toEntity() *entities.Restaurant {
	return &entities.Restaurant{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Lat:      r.Lat,
		Lng:      r.Lng,
		Category: entities.Category(r.Category),
		Rating:   r.Rating,
		Reviews:  r.Reviews,
		Tags:     []string(r.Tags),
		Photo:    r.Photo,
	}
}

type menuItemRow struct {
	ID           int64   `db:"id"`
	RestaurantID int64   `db:"restaurant_id"`
	Name         []byte  `db:"name"`
	Category     string  `db:"category"`
	Price        int64   `db:"price"`
	Rating       float64 `db:"rating"`
	Reviews      int     `db:"reviews"`
	Photo        string  `db:"photo"`
}

func (r menuItemRow) toEntity() (*entities.MenuItem, error) {
	item := &entities.MenuItem{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		Category:     r.Category,
		Price:        r.Price,
		Rating:       r.Rating,
		Reviews:      r.Reviews,
		Photo:        r.Photo,
	}
	if err := json.Unmarshal(r.Name, &item.Name); err != nil {
		return nil, fmt.Errorf("menu item %d: invalid name: %w", r.ID, err)
	}
	return item, nil
}

// CatalogAdapter implements CatalogRepository and CatalogWriter on PostgreSQL
type CatalogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCatalogAdapter creates a new catalog adapter
func NewCatalogAdapter(client *postgres.Client) *CatalogAdapter {
	return &CatalogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// EnsureSchema creates the catalog tables when missing
func (a *CatalogAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, CatalogSchema); err != nil {
		return apperrors.NewInternalError("failed to create catalog schema", err)
	}
	return nil
}

// ListRestaurants returns every restaurant ordered by ID
func (a *CatalogAdapter) ListRestaurants(ctx context.Context) ([]*entities.Restaurant, error) {
	query, args, err := a.db.From(restaurantsTable).
		Select("id", "name", "address", "lat", "lng", "category", "rating", "reviews", "tags", "photo").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []restaurantRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list restaurants", err)
	}

	restaurants := make([]*entities.Restaurant, 0, len(rows))
	for _, row := range rows {
		restaurants = append(restaurants, row.toEntity())
	}
	return restaurants, nil
}

// ListMenuItems returns every menu item ordered by ID
func (a *CatalogAdapter) ListMenuItems(ctx context.Context) ([]*entities.MenuItem, error) {
	query, args, err := a.db.From(menuItemsTable).
		Select("id", "restaurant_id", "name", "category", "price", "rating", "reviews", "photo").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []menuItemRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list menu items", err)
	}

	items := make([]*entities.MenuItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to decode menu item", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// UpsertRestaurants inserts or replaces restaurants by ID
func (a *CatalogAdapter) UpsertRestaurants(ctx context.Context, restaurants []*entities.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(restaurants))
	for _, r := range restaurants {
		rows = append(rows, goqu.Record{
			"id":       r.ID,
			"name":     r.Name,
			"address":  r.Address,
			"lat":      r.Lat,
			"lng":      r.Lng,
			"category": string(r.Category),
			"rating":   r.Rating,
			"reviews":  r.Reviews,
			"tags":     pq.StringArray(r.Tags),
			"photo":    r.Photo,
		})
	}

	query, args, err := a.db.Insert(restaurantsTable).
		Prepared(true).
		Rows(rows...).
		OnConflict(goqu.DoUpdate("id", excluded("name", "address", "lat", "lng", "category", "rating", "reviews", "tags", "photo"))).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert restaurants", err)
	}
	return nil
}

// UpsertMenuItems inserts or replaces menu items by ID
func (a *CatalogAdapter) UpsertMenuItems(ctx context.Context, items []*entities.MenuItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(items))
	for _, item := range items {
		name, err := json.Marshal(item.Name)
		if err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to encode name of menu item %d", item.ID), err)
		}
		rows = append(rows, goqu.Record{
			"id":            item.ID,
			"restaurant_id": item.RestaurantID,
			"name":          string(name),
			"category":      item.Category,
			"price":         item.Price,
			"rating":        item.Rating,
			"reviews":       item.Reviews,
			"photo":         item.Photo,
		})
	}

	query, args, err := a.db.Insert(menuItemsTable).
		Prepared(true).
		Rows(rows...).
		OnConflict(goqu.DoUpdate("id", excluded("restaurant_id", "name", "category", "price", "rating", "reviews", "photo"))).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert menu items", err)
	}
	return nil
}

func excluded(columns ...string) goqu.Record {
	record := goqu.Record{}
	for _, column := range columns {
		record[column] = goqu.I("excluded." + column)
	}
	return record
}
