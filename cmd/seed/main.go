package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/catalog"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/database"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/clients/postgres"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/raunelaunch/fooddiscovery/pkg/config"
	"github.com/rs/zerolog/log"
)

// seed copies the restaurant and menu datasets into PostgreSQL. The JSON
// source is CATALOG_DATA_DIR when set, else the embedded files.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	source := catalog.NewEmbeddedJSONAdapter()
	if cfg.Catalog.DataDir != "" {
		source = catalog.NewDirJSONAdapter(cfg.Catalog.DataDir)
	}

	restaurants, err := source.ListRestaurants(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read restaurants")
	}
	items, err := source.ListMenuItems(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read menu items")
	}

	target := database.NewCatalogAdapter(pgClient)
	if err := target.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE menu_items, restaurants`); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	if err := target.UpsertRestaurants(ctx, restaurants); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed restaurants")
	}
	if err := target.UpsertMenuItems(ctx, items); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed menu items")
	}

	log.Info().
		Int("restaurants", len(restaurants)).
		Int("menu_items", len(items)).
		Msg("Seeding completed")
}
