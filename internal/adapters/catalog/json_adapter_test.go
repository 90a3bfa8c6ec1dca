package catalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	apperrors "github.com/raunelaunch/fooddiscovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONAdapter_Embedded(t *testing.T) {
	adapter := NewEmbeddedJSONAdapter()
	ctx := context.Background()

	restaurants, err := adapter.ListRestaurants(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, restaurants)
	for i := 1; i < len(restaurants); i++ {
		assert.Less(t, restaurants[i-1].ID, restaurants[i].ID)
	}

	items, err := adapter.ListMenuItems(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	accounts, err := adapter.ListAccounts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, accounts)
	assert.NotEmpty(t, accounts[0].Password)
}

func TestJSONAdapter_DecodesBothNameShapes(t *testing.T) {
	fsys := fstest.MapFS{
		"menus.json": {Data: []byte(`[
			{"id": 2, "restaurantId": 1, "name": "Bánh mì", "category": "Vietnamese", "price": 30000, "rating": 4.5, "reviews": 10},
			{"id": 1, "restaurantId": 1, "name": {"en": "Beef pho", "vi": "Phở bò"}, "category": "Vietnamese", "price": 60000, "rating": 4.8, "reviews": 99}
		]`)},
	}

	items, err := NewJSONAdapter(fsys).ListMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Beef pho", items[0].Name.Resolve("en"))
	assert.Equal(t, "Phở bò", items[0].Name.Resolve("ja"))
	assert.Equal(t, "Bánh mì", items[1].Name.Resolve("en"))
}

func TestJSONAdapter_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"restaurants.json": {Data: []byte(`{not json`)},
	}
	adapter := NewJSONAdapter(fsys)

	_, err := adapter.ListRestaurants(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))

	_, err = adapter.ListMenuItems(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	accounts, err := adapter.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestJSONAdapter_Categories(t *testing.T) {
	restaurants, err := NewEmbeddedJSONAdapter().ListRestaurants(context.Background())
	require.NoError(t, err)

	valid := map[entities.Category]bool{}
	for _, c := range entities.Categories() {
		if c != entities.CategoryAll {
			valid[c] = true
		}
	}
	for _, r := range restaurants {
		assert.True(t, valid[r.Category], "restaurant %d has unknown category %q", r.ID, r.Category)
	}
}
