//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/adapters/catalog"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/database"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAdapter_SeedAndLoad(t *testing.T) {
	pgClient := newTestPostgresClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source := catalog.NewEmbeddedJSONAdapter()
	restaurants, err := source.ListRestaurants(ctx)
	require.NoError(t, err)
	items, err := source.ListMenuItems(ctx)
	require.NoError(t, err)

	adapter := database.NewCatalogAdapter(pgClient)
	require.NoError(t, adapter.EnsureSchema(ctx))
	_, err = pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE menu_items, restaurants`)
	require.NoError(t, err)

	require.NoError(t, adapter.UpsertRestaurants(ctx, restaurants))
	require.NoError(t, adapter.UpsertMenuItems(ctx, items))
	// Upserts are idempotent
	require.NoError(t, adapter.UpsertRestaurants(ctx, restaurants))

	gotRestaurants, err := adapter.ListRestaurants(ctx)
	require.NoError(t, err)
	require.Len(t, gotRestaurants, len(restaurants))
	assert.Equal(t, restaurants[0].ID, gotRestaurants[0].ID)
	assert.Equal(t, restaurants[0].Name, gotRestaurants[0].Name)
	assert.ElementsMatch(t, restaurants[0].Tags, gotRestaurants[0].Tags)

	gotItems, err := adapter.ListMenuItems(ctx)
	require.NoError(t, err)
	require.Len(t, gotItems, len(items))
	assert.Equal(t, items[0].Name, gotItems[0].Name)

	fromDB, err := services.LoadCatalog(ctx, adapter)
	require.NoError(t, err)
	fromJSON, err := services.LoadCatalog(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, len(fromJSON.Dishes()), len(fromDB.Dishes()))
}
