package handlers

import (
	"net/http"
	"strings"

	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/pkg/geo"
)

// CatalogReader looks up reference data by ID
type CatalogReader interface {
	Restaurant(id int64) (*entities.Restaurant, bool)
	MenuItem(id int64) (services.Dish, bool)
	MenuFor(restaurantID int64) []*entities.MenuItem
}

// CatalogHandler serves categories, restaurants and menu items
type CatalogHandler struct {
	catalog CatalogReader
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RestaurantDetail is a restaurant with its distance from the requested position, if any
type RestaurantDetail struct {
	*entities.Restaurant
	DistanceKm *float64 `json:"distanceKm,omitempty"`
	Distance   string   `json:"distance,omitempty"`
	MenuCount  int      `json:"menuCount"`
}

// MenuItemDetail is a menu item with the restaurant serving it
type MenuItemDetail struct {
	MenuItemView
	Restaurant *entities.Restaurant `json:"restaurant"`
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := entities.Categories()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetRestaurant handles GET /api/restaurants/{id}
func (h *CatalogHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	coords, err := parseCoordinates(r)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	restaurant, ok := h.catalog.Restaurant(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "restaurant not found")
		return
	}

	detail := RestaurantDetail{
		Restaurant: restaurant,
		MenuCount:  len(h.catalog.MenuFor(id)),
	}
	if coords != nil {
		d := geo.Distance(coords.Lat, coords.Lng, restaurant.Lat, restaurant.Lng)
		rounded := round(d, 3)
		detail.DistanceKm = &rounded
		detail.Distance = geo.FormatDistance(d)
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// GetRestaurantMenu handles GET /api/restaurants/{id}/menu
func (h *CatalogHandler) GetRestaurantMenu(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if _, ok := h.catalog.Restaurant(id); !ok {
		respondWithError(w, http.StatusNotFound, "restaurant not found")
		return
	}

	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	menu := h.catalog.MenuFor(id)
	items := make([]MenuItemView, 0, len(menu))
	for _, item := range menu {
		items = append(items, newMenuItemView(item, lang))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"restaurantId": id,
		"items":        items,
		"count":        len(items),
	})
}

// GetMenuItem handles GET /api/menu-items/{id}
func (h *CatalogHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	dish, ok := h.catalog.MenuItem(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "menu item not found")
		return
	}

	respondWithJSON(w, http.StatusOK, MenuItemDetail{
		MenuItemView: newMenuItemView(dish.Item, strings.TrimSpace(r.URL.Query().Get("lang"))),
		Restaurant:   dish.Restaurant,
	})
}
