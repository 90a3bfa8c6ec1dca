package services

import (
	"context"
	"sync"
	"time"

	"github.com/raunelaunch/fooddiscovery/internal/domain/entities"
	"github.com/raunelaunch/fooddiscovery/internal/domain/repositories"
	"github.com/raunelaunch/fooddiscovery/pkg/utils"
	"github.com/rs/zerolog/log"
)

// trackTimeout bounds one background write
const trackTimeout = 5 * time.Second

// SearchAnalyticsService records searches off the request path.
type SearchAnalyticsService struct {
	repo repositories.SearchAnalyticsRepository
	wg   sync.WaitGroup
}

func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

// TrackSearch stores event in the background. The request context is not
// used, so the write survives the response.
func (s *SearchAnalyticsService) TrackSearch(ctx context.Context, event *entities.SearchEvent) {
	if event.NormalizedQuery == "" {
		event.NormalizedQuery = utils.RemoveVietnameseAccents(event.Query)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), trackTimeout)
		defer cancel()

		if err := s.repo.LogEvent(bgCtx, event); err != nil {
			log.Warn().Err(err).Str("query", event.Query).Msg("Failed to log search event")
		}
	}()
}

// ZeroResultQueries returns the newest searches that found nothing
func (s *SearchAnalyticsService) ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	return s.repo.ZeroResultQueries(ctx, limit)
}

// Close waits for pending writes
func (s *SearchAnalyticsService) Close() {
	s.wg.Wait()
}
