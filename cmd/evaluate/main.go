package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/raunelaunch/fooddiscovery/data"
	"github.com/raunelaunch/fooddiscovery/internal/adapters/catalog"
	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/evaluation"
	"github.com/raunelaunch/fooddiscovery/internal/infrastructure/observability"
	"github.com/raunelaunch/fooddiscovery/pkg/config"
	"github.com/rs/zerolog/log"
)

// evaluate scores the search service against a golden query set and prints
// the summary as JSON. EVAL_GOLDEN_QUERIES overrides the embedded set and
// EVAL_K the rank cut-off.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-evaluate", cfg.Environment)

	ctx := context.Background()

	catalogData, err := services.LoadCatalog(ctx, catalog.NewDirJSONAdapter(cfg.Catalog.DataDir))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}

	var queries []evaluation.GoldenQuery
	if path := os.Getenv("EVAL_GOLDEN_QUERIES"); path != "" {
		queries, err = evaluation.LoadGoldenQueriesFile(path)
	} else {
		queries, err = evaluation.LoadGoldenQueries(data.Files, data.GoldenQueries)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("Invalid golden queries")
	}

	k, _ := strconv.Atoi(os.Getenv("EVAL_K"))
	origin := entities.Coordinates{Lat: cfg.Geolocation.FallbackLat, Lng: cfg.Geolocation.FallbackLng}
	runner := evaluation.NewRunner(services.NewSearchService(catalogData, cfg.Ranking.FeaturedDishLimit), origin, k)

	summary, err := runner.Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	log.Info().
		Int("queries", summary.TotalQueries).
		Float64("avg_recall", summary.AvgRecall).
		Float64("avg_mrr", summary.AvgMRR).
		Msg("Evaluation completed")

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode summary")
	}
	fmt.Println(string(out))
}
