package evaluation

import (
	"context"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/application/services"
	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/rs/zerolog/log"
)

// DefaultK is the cut-off used when the runner is given none.
const DefaultK = 5

// SearchResultProvider is the search surface under evaluation.
type SearchResultProvider interface {
	Search(ctx context.Context, pos entities.Coordinates, params services.SearchParams) services.SearchResponse
}

// Runner runs evaluation across a set of golden queries. Every query is
// searched from origin without a radius, sorted by rating.
type Runner struct {
	searcher SearchResultProvider
	origin   entities.Coordinates
	k        int
}

func NewRunner(searcher SearchResultProvider, origin entities.Coordinates, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{searcher: searcher, origin: origin, k: k}
}

func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		K:            r.k,
		TotalQueries: len(queries),
		ByKind:       make(map[QueryKind]*KindSummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp := r.searcher.Search(ctx, r.origin, services.SearchParams{
			Query: gq.Query,
			Sort:  services.SortByRating,
			Lang:  gq.Lang,
		})
		duration := time.Since(start)

		retrieved := make([]int64, len(resp.Results))
		for i, res := range resp.Results {
			retrieved[i] = res.Restaurant.ID
		}

		result := EvalResult{
			QueryID:     gq.ID,
			Query:       gq.Query,
			Kind:        gq.Kind,
			Recall:      RecallAtK(gq.ExpectedRestaurants, retrieved, r.k),
			MRR:         MRRAtK(gq.ExpectedRestaurants, retrieved, r.k),
			ResultCount: resp.Count,
			Retrieved:   retrieved,
			Missing:     Missing(gq.ExpectedRestaurants, retrieved, r.k),
			Latency:     duration,
		}
		if len(result.Missing) > 0 {
			log.Debug().Str("query_id", gq.ID).Ints64("missing", result.Missing).Msg("Golden query missed expected restaurants")
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.Results = append(s.Results, res)
	s.AvgRecall += res.Recall
	s.AvgMRR += res.MRR
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	ks, ok := s.ByKind[res.Kind]
	if !ok {
		ks = &KindSummary{}
		s.ByKind[res.Kind] = ks
	}
	ks.Count++
	ks.AvgRecall += res.Recall
	ks.AvgMRR += res.MRR
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.AvgRecall /= n
		s.AvgMRR /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			n := float64(ks.Count)
			ks.AvgRecall /= n
			ks.AvgMRR /= n
		}
	}
}
