package entities

// Category is the fixed restaurant/dish classification used by filters and preferences.
type Category string

const (
	CategoryVietnamese Category = "Vietnamese"
	CategoryAsian      Category = "Asian"
	CategoryWestern    Category = "Western"
	CategoryCafe       Category = "Cafe"
	CategoryFastFood   Category = "Fast Food"

	// CategoryAll is a filter pseudo-value meaning "no category filter".
	CategoryAll Category = "All"
)

// Categories lists the selectable categories in display order, including All.
func Categories() []Category {
	return []Category{
		CategoryAll,
		CategoryVietnamese,
		CategoryAsian,
		CategoryWestern,
		CategoryCafe,
		CategoryFastFood,
	}
}

// Restaurant is immutable reference data loaded once at start.
type Restaurant struct {
	ID       int64    `json:"id" db:"id"`
	Name     string   `json:"name" db:"name"`
	Address  string   `json:"address" db:"address"`
	Lat      float64  `json:"lat" db:"lat"`
	Lng      float64  `json:"lng" db:"lng"`
	Category Category `json:"category" db:"category"`
	Rating   float64  `json:"rating" db:"rating"`
	Reviews  int      `json:"reviews" db:"reviews"`
	Tags     []string `json:"tags" db:"-"`
	Photo    string   `json:"photo" db:"photo"`
}
